// Package cache keeps the last known server copy of each protocol, keyed by
// the server-assigned id. The editor reads from it. Completed saves, load
// misses and post-load refreshes write to it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gravitrone/labproto/cli/internal/api"
)

// ErrNoID is returned when a record without a server id is stored.
var ErrNoID = errors.New("protocol has no id")

// Store is a point-lookup record cache.
type Store interface {
	Get(ctx context.Context, id int64) (api.Protocol, bool, error)
	Put(ctx context.Context, p api.Protocol) error
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]api.Protocol
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{records: map[int64]api.Protocol{}}
}

func (m *Memory) Get(_ context.Context, id int64) (api.Protocol, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.records[id]
	return p, ok, nil
}

func (m *Memory) Put(_ context.Context, p api.Protocol) error {
	if !p.HasID() {
		return ErrNoID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[*p.ID] = p
	return nil
}

// Len returns the number of cached records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Fetcher loads a protocol from the server.
type Fetcher interface {
	GetProtocol(ctx context.Context, id int64) (*api.Protocol, error)
}

// Lookup returns the cached record for id, fetching and storing it on a miss.
func Lookup(ctx context.Context, store Store, fetch Fetcher, id int64) (api.Protocol, error) {
	if p, ok, err := store.Get(ctx, id); err != nil {
		return api.Protocol{}, fmt.Errorf("cache get %d: %w", id, err)
	} else if ok {
		return p, nil
	}
	if fetch == nil {
		return api.Protocol{}, fmt.Errorf("protocol %d not cached", id)
	}
	p, err := fetch.GetProtocol(ctx, id)
	if err != nil {
		return api.Protocol{}, fmt.Errorf("fetch protocol %d: %w", id, err)
	}
	if !p.HasID() {
		p.ID = api.Int64(id)
	}
	if err := store.Put(ctx, *p); err != nil {
		return api.Protocol{}, fmt.Errorf("cache put %d: %w", id, err)
	}
	return *p, nil
}
