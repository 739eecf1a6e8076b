package blocks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrIndexOutOfRange is returned by Move when either index is not a valid
// position in the input sequence.
var ErrIndexOutOfRange = errors.New("block index out of range")

// --- Types ---

// Type is the kind of a protocol section.
type Type string

const (
	TypeTextQuestion    Type = "text-question"
	TypeOptionsQuestion Type = "options-question"
	TypePlateSampler    Type = "plate-sampler"
	TypePlateAddReagent Type = "plate-add-reagent"
	TypePlateSequencer  Type = "plate-sequencer"
)

var typeOrder = []Type{
	TypeTextQuestion,
	TypeOptionsQuestion,
	TypePlateSampler,
	TypePlateAddReagent,
	TypePlateSequencer,
}

var typeLabels = map[Type]string{
	TypeTextQuestion:    "Text Question",
	TypeOptionsQuestion: "Options Question",
	TypePlateSampler:    "Plate Sampler",
	TypePlateAddReagent: "Plate Add Reagent",
	TypePlateSequencer:  "Plate Sequencer",
}

// Types returns the block types in menu order.
func Types() []Type {
	return append([]Type{}, typeOrder...)
}

// ParseType resolves a wire name into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.TrimSpace(s))
	if _, ok := typeLabels[t]; !ok {
		return "", fmt.Errorf("unknown block type %q", s)
	}
	return t, nil
}

// Label is the human-readable menu entry.
func (t Type) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// --- Definition ---

// Definition is one typed section of a protocol. ID is assigned on the client
// when the block is created and never changes afterwards.
type Definition struct {
	ID     string
	Type   Type
	Fields map[string]any
}

// IDFunc produces a fresh identity token.
type IDFunc func() string

// NewID returns a random identity token.
func NewID() string {
	return uuid.NewString()
}

// New creates an empty block of the given type.
func New(t Type, gen IDFunc) Definition {
	if gen == nil {
		gen = NewID
	}
	return Definition{ID: gen(), Type: t, Fields: map[string]any{}}
}

// Clone returns a copy whose field map can be mutated independently.
func (d Definition) Clone() Definition {
	out := Definition{ID: d.ID, Type: d.Type, Fields: make(map[string]any, len(d.Fields))}
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	return out
}

// Field returns a type-specific field rendered as text.
func (d Definition) Field(name string) string {
	switch v := d.Fields[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// WithField returns a copy with one field replaced, parsed per the type schema.
func (d Definition) WithField(name, value string) Definition {
	out := d.Clone()
	spec, ok := lookupField(d.Type, name)
	if ok && spec.List {
		items := make([]string, 0)
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		out.Fields[name] = items
		return out
	}
	out.Fields[name] = value
	return out
}

// Summary is a one-line description used by list renderers.
func (d Definition) Summary() string {
	for _, spec := range Schema(d.Type) {
		if v := strings.TrimSpace(d.Field(spec.Name)); v != "" {
			return v
		}
	}
	return ""
}

// MarshalJSON flattens type-specific fields next to id and type.
func (d Definition) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+2)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	out["type"] = string(d.Type)
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat wire shape back into a Definition.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, _ := raw["id"].(string)
	typ, _ := raw["type"].(string)
	delete(raw, "id")
	delete(raw, "type")
	d.ID = id
	d.Type = Type(typ)
	d.Fields = raw
	return nil
}

// MarshalYAML mirrors the JSON shape.
func (d Definition) MarshalYAML() (any, error) {
	out := make(map[string]any, len(d.Fields)+2)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	out["type"] = string(d.Type)
	return out, nil
}

// UnmarshalYAML accepts the flat shape. A missing id gets a fresh token.
func (d *Definition) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	id, _ := raw["id"].(string)
	typ, _ := raw["type"].(string)
	delete(raw, "id")
	delete(raw, "type")
	t, err := ParseType(typ)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		id = NewID()
	}
	d.ID = id
	d.Type = t
	d.Fields = raw
	if d.Fields == nil {
		d.Fields = map[string]any{}
	}
	return nil
}
