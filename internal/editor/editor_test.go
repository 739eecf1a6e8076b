package editor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/blocks"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/drag"
	"github.com/gravitrone/labproto/cli/internal/richtext"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type fakeUpserter struct {
	calls []Request
	resp  *api.Protocol
	err   error
	panic bool
}

func (f *fakeUpserter) UpsertProtocol(_ context.Context, method, path string, p api.Protocol) (*api.Protocol, error) {
	f.calls = append(f.calls, Request{Method: method, Path: path, Record: p})
	if f.panic {
		panic("transport exploded")
	}
	return f.resp, f.err
}

func seqIDs() blocks.IDFunc {
	n := 0
	return func() string {
		n++
		return "blk-" + string(rune('0'+n))
	}
}

func newEditor(t *testing.T, id *int64, store cache.Store) *Editor {
	t.Helper()
	return New(id, store, WithClock(func() time.Time { return fixedNow }), WithIDs(seqIDs()))
}

func TestResolvePrecedence(t *testing.T) {
	p, r := "pending", "remote"
	assert.Equal(t, "pending", Resolve(&p, &r, "default"))
	assert.Equal(t, "remote", Resolve(nil, &r, "default"))
	assert.Equal(t, "default", Resolve[string](nil, nil, "default"))
}

func TestOverlayShadowsCacheUntilSave(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	require.NoError(t, store.Put(ctx, api.Protocol{ID: api.Int64(5), Name: "A", Description: "one\ntwo"}))

	e := newEditor(t, api.Int64(5), store)
	assert.Equal(t, "A", e.Name())
	assert.False(t, e.Touched())

	e.SetName("B")
	assert.Equal(t, "B", e.Name())
	cached, _, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "A", cached.Name)

	// untouched fields keep reading through to the cache
	assert.Equal(t, "one\ntwo", richtext.Serialize(e.Description()))
	require.NoError(t, store.Put(ctx, api.Protocol{ID: api.Int64(5), Name: "C", Description: "three"}))
	assert.Equal(t, "B", e.Name())
	assert.Equal(t, "three", richtext.Serialize(e.Description()))
}

func TestDefaultsWithoutRecord(t *testing.T) {
	e := newEditor(t, nil, nil)
	assert.True(t, e.IsNew())
	assert.Equal(t, "", e.Name())
	assert.True(t, e.Description().Equal(richtext.Empty()))
	assert.NotNil(t, e.Blocks())
	assert.Empty(t, e.Blocks())
}

func TestBlockEditsStayLocal(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	require.NoError(t, store.Put(ctx, api.Protocol{
		ID:   api.Int64(1),
		Name: "p",
		Blocks: []blocks.Definition{
			{ID: "x", Type: blocks.TypeTextQuestion, Fields: map[string]any{}},
			{ID: "y", Type: blocks.TypePlateSampler, Fields: map[string]any{}},
		},
	}))
	e := newEditor(t, api.Int64(1), store)

	added := e.AppendBlock(blocks.TypePlateSequencer)
	assert.Equal(t, "blk-1", added.ID)
	require.NoError(t, e.MoveBlock(2, 0))
	e.UpdateBlock(added.WithField("plateLabel", "P-7"))
	e.UpdateBlock(blocks.Definition{ID: "missing", Type: blocks.TypeTextQuestion})

	got := e.Blocks()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"blk-1", "x", "y"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "P-7", got[0].Field("plateLabel"))

	assert.ErrorIs(t, e.MoveBlock(0, 3), blocks.ErrIndexOutOfRange)

	e.RemoveBlock("x")
	assert.Len(t, e.Blocks(), 2)

	cached, _, _ := store.Get(ctx, 1)
	assert.Len(t, cached.Blocks, 2)
	assert.Equal(t, "x", cached.Blocks[0].ID)
}

func TestSetBlocksCopiesInput(t *testing.T) {
	e := newEditor(t, nil, nil)
	in := []blocks.Definition{
		{ID: "a", Type: blocks.TypeTextQuestion, Fields: map[string]any{"question": "q"}},
	}
	e.SetBlocks(in)
	in[0].Fields["question"] = "changed"

	got := e.Blocks()
	require.Len(t, got, 1)
	assert.Equal(t, "q", got[0].Field("question"))
	assert.True(t, e.Touched())
}

func TestDragHoverWritesOverlay(t *testing.T) {
	e := newEditor(t, nil, nil)
	e.AppendBlock(blocks.TypeTextQuestion)
	e.AppendBlock(blocks.TypeOptionsQuestion)
	e.AppendBlock(blocks.TypePlateSampler)

	var g drag.Gesture
	g.Begin(0, "blk-1")
	box := drag.Box{Top: 8, Bottom: 12}

	assert.False(t, e.DragHover(&g, 2, box, 9))
	assert.True(t, e.DragHover(&g, 2, box, 11))
	assert.False(t, e.DragHover(&g, 2, box, 11))

	got := e.Blocks()
	assert.Equal(t, "blk-1", got[2].ID)
	g.End()
	assert.False(t, g.Active)
}

func TestSnapshotSerializesDescription(t *testing.T) {
	e := newEditor(t, nil, nil)
	e.SetName("Transform")
	e.SetDescription(richtext.Document{Paragraphs: []richtext.Paragraph{
		{Children: []richtext.Leaf{{Text: "Heat "}, {Text: "shock", Bold: true}}},
		{Children: []richtext.Leaf{{Text: "Recover"}}},
	}})

	snap := e.Snapshot()
	assert.Nil(t, snap.ID)
	assert.Equal(t, "Heat shock\nRecover", snap.Description)
	assert.NotNil(t, snap.Blocks)
}

func TestSaveCreatePath(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	e := newEditor(t, nil, store)
	e.AppendBlock(blocks.TypeTextQuestion)

	up := &fakeUpserter{resp: &api.Protocol{ID: api.Int64(42), Name: "", Blocks: []blocks.Definition{{ID: "blk-1", Type: blocks.TypeTextQuestion}}}}
	require.NoError(t, e.Save(ctx, up))

	require.Len(t, up.calls, 1)
	assert.Equal(t, http.MethodPost, up.calls[0].Method)
	assert.Equal(t, "/protocol", up.calls[0].Path)
	require.Len(t, up.calls[0].Record.Blocks, 1)
	assert.Equal(t, blocks.TypeTextQuestion, up.calls[0].Record.Blocks[0].Type)

	cached, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), cached.IDValue())

	st := e.SaveState()
	assert.False(t, st.Saving)
	require.NotNil(t, st.LastSaved)
	assert.Equal(t, "last saved at 09:30:00", st.Label())
	assert.Equal(t, int64(42), *e.ID())
}

func TestSaveUpdatePathAfterCreate(t *testing.T) {
	ctx := context.Background()
	e := newEditor(t, nil, cache.NewMemory())
	up := &fakeUpserter{resp: &api.Protocol{ID: api.Int64(8)}}
	require.NoError(t, e.Save(ctx, up))

	e.SetName("second pass")
	require.NoError(t, e.Save(ctx, up))

	require.Len(t, up.calls, 2)
	assert.Equal(t, http.MethodPut, up.calls[1].Method)
	assert.Equal(t, "/protocol/8", up.calls[1].Path)
	assert.Equal(t, int64(8), up.calls[1].Record.IDValue())
	assert.Equal(t, "second pass", up.calls[1].Record.Name)
}

func TestSaveMissingIDStillCleansUp(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory()
	e := newEditor(t, nil, store)
	e.SetName("orphan")

	up := &fakeUpserter{resp: &api.Protocol{Name: "orphan"}}
	err := e.Save(ctx, up)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingID)
	assert.False(t, e.Saving())
	assert.NotNil(t, e.SaveState().LastSaved)
	assert.Equal(t, 0, store.Len())
	assert.True(t, e.IsNew())
	assert.Equal(t, "orphan", e.Name())
}

func TestSaveTransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	e := newEditor(t, api.Int64(3), cache.NewMemory())
	err := e.Save(context.Background(), &fakeUpserter{err: boom})

	assert.ErrorIs(t, err, boom)
	assert.False(t, e.Saving())
	assert.NotNil(t, e.SaveState().LastSaved)
}

func TestSaveCleanupRunsOnPanic(t *testing.T) {
	e := newEditor(t, nil, cache.NewMemory())
	assert.Panics(t, func() {
		_ = e.Save(context.Background(), &fakeUpserter{panic: true})
	})
	assert.False(t, e.Saving())
	assert.NotNil(t, e.SaveState().LastSaved)
}

func TestBeginSaveRejectsOverlap(t *testing.T) {
	e := newEditor(t, nil, nil)
	req, err := e.BeginSave()
	require.NoError(t, err)
	assert.True(t, req.IsCreate())
	assert.True(t, e.Saving())

	_, err = e.BeginSave()
	assert.ErrorIs(t, err, ErrSaveInFlight)

	require.Error(t, e.FinishSave(context.Background(), nil, errors.New("x")))
	_, err = e.BeginSave()
	assert.NoError(t, err)
}

func TestSaveAgainstHTTPServer(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/protocol", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		got["id"] = 42
		_ = json.NewEncoder(w).Encode(got)
	}))
	t.Cleanup(srv.Close)

	store := cache.NewMemory()
	e := newEditor(t, nil, store)
	e.SetName("ELISA")
	e.AppendBlock(blocks.TypeTextQuestion)

	require.NoError(t, e.Save(context.Background(), api.NewClient(srv.URL, "k")))

	assert.Equal(t, "ELISA", got["name"])
	assert.Equal(t, "", got["description"])
	cached, ok, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, cached.Blocks, 1)
	assert.Equal(t, "blk-1", cached.Blocks[0].ID)
}
