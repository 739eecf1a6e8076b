package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/blocks"
)

type fakeFetcher struct {
	calls int
	resp  *api.Protocol
	err   error
}

func (f *fakeFetcher) GetProtocol(_ context.Context, id int64) (*api.Protocol, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.Put(ctx, api.Protocol{Name: "draft"}), ErrNoID)

	rec := api.Protocol{
		ID:          api.Int64(42),
		Name:        "PCR setup",
		Description: "Thaw\nMix",
		Blocks: []blocks.Definition{
			{ID: "b1", Type: blocks.TypePlateAddReagent, Fields: map[string]any{"reagentLabel": "master mix"}},
		},
	}
	require.NoError(t, store.Put(ctx, rec))

	got, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "PCR setup", got.Name)
	assert.Equal(t, "Thaw\nMix", got.Description)
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, "master mix", got.Blocks[0].Field("reagentLabel"))

	rec.Name = "PCR setup v2"
	require.NoError(t, store.Put(ctx, rec))
	got, _, err = store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "PCR setup v2", got.Name)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	storeContract(t, m)
	assert.Equal(t, 1, m.Len())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	storeContract(t, s)
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.sqlite")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, api.Protocol{ID: api.Int64(7), Name: "Elution"}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, ok, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Elution", got.Name)
}

func TestLookupHitSkipsFetch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Put(ctx, api.Protocol{ID: api.Int64(1), Name: "cached"}))
	f := &fakeFetcher{}

	got, err := Lookup(ctx, m, f, 1)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Name)
	assert.Equal(t, 0, f.calls)
}

func TestLookupMissFetchesAndStores(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	f := &fakeFetcher{resp: &api.Protocol{Name: "remote"}}

	got, err := Lookup(ctx, m, f, 9)
	require.NoError(t, err)
	assert.Equal(t, "remote", got.Name)
	assert.Equal(t, int64(9), got.IDValue())

	_, err = Lookup(ctx, m, f, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
}

func TestLookupFetchError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	_, err := Lookup(context.Background(), NewMemory(), f, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch protocol 3")

	_, err = Lookup(context.Background(), NewMemory(), nil, 3)
	assert.Error(t, err)
}
