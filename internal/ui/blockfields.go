package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/labproto/cli/internal/blocks"
	"github.com/gravitrone/labproto/cli/internal/ui/components"
)

// blockEditor edits the schema fields of one block, one field at a time.
// It never touches the editor directly; commit hands back a definition with
// the same id for the caller to apply.
type blockEditor struct {
	block blocks.Definition
	specs []blocks.FieldSpec
	focus int
	input textinput.Model
	// loaded is the input text as load left it.
	loaded string
}

func newBlockEditor(b blocks.Definition, width int) blockEditor {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 0
	in.Width = max(components.BoxContentWidth(width)-4, 20)

	be := blockEditor{block: b.Clone(), specs: blocks.Schema(b.Type), input: in}
	be.load()
	return be
}

// Focus starts the cursor blinking in the input.
func (b *blockEditor) Focus() tea.Cmd {
	return b.input.Focus()
}

func (b *blockEditor) current() (blocks.FieldSpec, bool) {
	if b.focus < 0 || b.focus >= len(b.specs) {
		return blocks.FieldSpec{}, false
	}
	return b.specs[b.focus], true
}

func (b *blockEditor) load() {
	spec, ok := b.current()
	if !ok {
		b.input.SetValue("")
		b.loaded = ""
		return
	}
	b.input.SetValue(b.block.Field(spec.Name))
	b.input.CursorEnd()
	b.loaded = b.input.Value()
}

// commit writes the input back into the focused field. changed is false when
// the user left the loaded text alone or it matches the stored value.
func (b *blockEditor) commit() (blocks.Definition, bool) {
	spec, ok := b.current()
	if !ok || b.input.Value() == b.loaded {
		return b.block, false
	}
	next := b.block.WithField(spec.Name, b.input.Value())
	if next.Field(spec.Name) == b.block.Field(spec.Name) {
		return b.block, false
	}
	b.block = next
	return b.block, true
}

// step moves focus by delta fields, wrapping around.
func (b *blockEditor) step(delta int) {
	if len(b.specs) == 0 {
		return
	}
	b.focus = (b.focus + delta + len(b.specs)) % len(b.specs)
	b.load()
}

func (b blockEditor) onLastField() bool {
	return b.focus >= len(b.specs)-1
}

func (b blockEditor) View(width int) string {
	var sb strings.Builder
	for i, spec := range b.specs {
		label := spec.Label
		if spec.List {
			label += " (comma separated)"
		}
		if i == b.focus {
			sb.WriteString(SelectedStyle.Render("> " + label + ":"))
			sb.WriteString("\n")
			sb.WriteString("  " + b.input.View())
		} else {
			sb.WriteString(MutedStyle.Render("  " + label + ":"))
			sb.WriteString("\n")
			sb.WriteString(NormalStyle.Render("  " + components.SanitizeOneLine(b.block.Field(spec.Name))))
		}
		if i < len(b.specs)-1 {
			sb.WriteString("\n\n")
		}
	}
	if len(b.specs) == 0 {
		sb.WriteString(MutedStyle.Render("This section has no editable fields."))
	}
	sb.WriteString("\n\n")
	sb.WriteString(MutedStyle.Render("tab/enter: next field | esc: done"))
	title := fmt.Sprintf("Edit %s", b.block.Type.Label())
	return components.ActiveTitledBox(title, sb.String(), width)
}
