package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/blocks"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/drag"
	"github.com/gravitrone/labproto/cli/internal/richtext"
)

var (
	// ErrMissingID means the server accepted a save but returned no id.
	ErrMissingID = errors.New("saved protocol has no id")
	// ErrSaveInFlight is returned when a save starts before the last one finished.
	ErrSaveInFlight = errors.New("save already in progress")
)

// Upserter submits a protocol and returns the server's canonical record.
type Upserter interface {
	UpsertProtocol(ctx context.Context, method, path string, p api.Protocol) (*api.Protocol, error)
}

// ClientSource hands out an authenticated Upserter on demand.
type ClientSource func(ctx context.Context) (Upserter, error)

// Request is one outgoing upsert.
type Request struct {
	Method string
	Path   string
	Record api.Protocol
}

// IsCreate reports whether the request creates a new protocol.
func (r Request) IsCreate() bool {
	return r.Method == http.MethodPost
}

// SaveState tracks the save button.
type SaveState struct {
	Saving    bool
	LastSaved *time.Time
}

// Label is the confirmation shown after a save settles.
func (s SaveState) Label() string {
	if s.LastSaved == nil {
		return ""
	}
	return "last saved at " + s.LastSaved.Format("15:04:05")
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithIDs overrides the block identity token generator.
func WithIDs(gen blocks.IDFunc) Option {
	return func(e *Editor) { e.newID = gen }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// Editor is the edit state for one protocol. A new Editor is created
// whenever a different protocol is opened, which discards pending edits.
type Editor struct {
	id      *int64
	pending Pending
	save    SaveState
	cache   cache.Store
	now     func() time.Time
	newID   blocks.IDFunc
	log     *slog.Logger
}

// New returns an editor for the protocol with the given id, or for a new
// protocol when id is nil.
func New(id *int64, store cache.Store, opts ...Option) *Editor {
	e := &Editor{
		cache: store,
		now:   time.Now,
		newID: blocks.NewID,
		log:   slog.New(slog.DiscardHandler),
	}
	if id != nil {
		v := *id
		e.id = &v
	}
	if e.cache == nil {
		e.cache = cache.NewMemory()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the protocol id, or nil before the first successful create.
func (e *Editor) ID() *int64 {
	if e.id == nil {
		return nil
	}
	v := *e.id
	return &v
}

// IsNew reports whether the protocol has not been created on the server yet.
func (e *Editor) IsNew() bool {
	return e.id == nil
}

// Pending returns a copy of the local edit overlay.
func (e *Editor) Pending() Pending {
	return e.pending
}

// Touched reports whether there are local edits.
func (e *Editor) Touched() bool {
	return e.pending.Touched()
}

// SaveState returns the current save state.
func (e *Editor) SaveState() SaveState {
	return e.save
}

// Saving reports whether an upsert is in flight.
func (e *Editor) Saving() bool {
	return e.save.Saving
}

func (e *Editor) remote() *api.Protocol {
	if e.id == nil || e.cache == nil {
		return nil
	}
	p, ok, err := e.cache.Get(context.Background(), *e.id)
	if err != nil {
		e.log.Debug("cache read failed", "id", *e.id, "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &p
}

// --- Displayed values ---

// Name is the displayed protocol name.
func (e *Editor) Name() string {
	var remote *string
	if r := e.remote(); r != nil {
		remote = &r.Name
	}
	return Resolve(e.pending.Name, remote, "")
}

// Description is the displayed description document.
func (e *Editor) Description() richtext.Document {
	var remote *richtext.Document
	if r := e.remote(); r != nil {
		doc := richtext.Deserialize(r.Description)
		remote = &doc
	}
	return Resolve(e.pending.Description, remote, richtext.Empty())
}

// Blocks is the displayed block sequence.
func (e *Editor) Blocks() []blocks.Definition {
	var remote *[]blocks.Definition
	if r := e.remote(); r != nil && r.Blocks != nil {
		remote = &r.Blocks
	}
	out := Resolve(e.pending.Blocks, remote, []blocks.Definition{})
	return append([]blocks.Definition{}, out...)
}

// --- Mutations ---

// SetName records a local name edit.
func (e *Editor) SetName(name string) {
	e.pending.Name = &name
}

// SetDescription records a local description edit.
func (e *Editor) SetDescription(doc richtext.Document) {
	e.pending.Description = &doc
}

// SetBlocks replaces the whole block sequence with a local copy of items.
func (e *Editor) SetBlocks(items []blocks.Definition) {
	out := make([]blocks.Definition, 0, len(items))
	for _, b := range items {
		out = append(out, b.Clone())
	}
	e.setBlocks(out)
}

func (e *Editor) setBlocks(items []blocks.Definition) {
	e.pending.Blocks = &items
}

// AppendBlock adds a new block of type t at the end and returns it.
func (e *Editor) AppendBlock(t blocks.Type) blocks.Definition {
	b := blocks.New(t, e.newID)
	e.setBlocks(blocks.Append(e.Blocks(), b))
	return b
}

// UpdateBlock replaces the block with the same id. Unknown ids are ignored.
func (e *Editor) UpdateBlock(updated blocks.Definition) {
	e.setBlocks(blocks.UpdateByID(e.Blocks(), updated))
}

// RemoveBlock deletes the block with the given id.
func (e *Editor) RemoveBlock(id string) {
	e.setBlocks(blocks.Remove(e.Blocks(), id))
}

// MoveBlock moves the block at from so that it lands at to.
func (e *Editor) MoveBlock(from, to int) error {
	out, err := blocks.Move(e.Blocks(), from, to)
	if err != nil {
		return err
	}
	e.setBlocks(out)
	return nil
}

// DragHover feeds one pointer position of an active gesture into the
// block order. It reports whether the blocks moved.
func (e *Editor) DragHover(g *drag.Gesture, itemIndex int, box drag.Box, pointerY float64) bool {
	from := g.Origin
	out, moved := g.Hover(e.Blocks(), itemIndex, box, pointerY)
	if moved {
		e.setBlocks(out)
		e.log.Debug("block moved", "from", from, "to", itemIndex)
	}
	return moved
}

// --- Save ---

// Snapshot builds the outgoing record from the displayed values.
func (e *Editor) Snapshot() api.Protocol {
	return api.Protocol{
		ID:          e.ID(),
		Name:        e.Name(),
		Description: richtext.Serialize(e.Description()),
		Blocks:      e.Blocks(),
	}
}

// BeginSave marks the editor as saving and returns the request to submit.
// Create goes to POST /protocol, update to PUT /protocol/{id}.
func (e *Editor) BeginSave() (Request, error) {
	if e.save.Saving {
		return Request{}, ErrSaveInFlight
	}
	e.save.Saving = true
	rec := e.Snapshot()
	req := Request{Method: http.MethodPost, Path: api.ProtocolsPath, Record: rec}
	if e.id != nil {
		req = Request{Method: http.MethodPut, Path: api.ProtocolPath(*e.id), Record: rec}
	}
	e.log.Debug("save started", "method", req.Method, "path", req.Path, "blocks", len(rec.Blocks))
	return req, nil
}

// Submit sends req and checks that the response carries an id.
func Submit(ctx context.Context, up Upserter, req Request) (*api.Protocol, error) {
	out, err := up.UpsertProtocol(ctx, req.Method, req.Path, req.Record)
	if err != nil {
		return nil, err
	}
	if out == nil || !out.HasID() {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrMissingID)
	}
	return out, nil
}

// FinishSave settles a save. It always clears the saving flag and stamps
// the last-saved time. On success the result is written to the cache under
// its id and a new protocol adopts that id. The submit error is returned
// unchanged.
func (e *Editor) FinishSave(ctx context.Context, result *api.Protocol, submitErr error) (err error) {
	defer func() {
		e.save.Saving = false
		t := e.now()
		e.save.LastSaved = &t
		e.log.Debug("save finished", "err", err)
	}()
	if submitErr != nil {
		return submitErr
	}
	if result == nil || !result.HasID() {
		return ErrMissingID
	}
	if err := e.cache.Put(ctx, *result); err != nil {
		return fmt.Errorf("cache saved protocol: %w", err)
	}
	if e.id == nil {
		id := *result.ID
		e.id = &id
	}
	return nil
}

// Save runs a full save against up. Cleanup runs on every exit path.
func (e *Editor) Save(ctx context.Context, up Upserter) (err error) {
	req, err := e.BeginSave()
	if err != nil {
		return err
	}
	var result *api.Protocol
	defer func() {
		err = e.FinishSave(ctx, result, err)
	}()
	result, err = Submit(ctx, up, req)
	return err
}
