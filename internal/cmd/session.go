package cmd

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/config"
)

// session is a loaded config with its client and record cache.
type session struct {
	cfg    *config.Config
	client *api.Client
	store  cache.Store
	close  func() error
}

// openSession loads the config and opens the cache it selects.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("not logged in: %w", err)
	}
	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, client: cfg.Client(), store: store, close: closeStore}, nil
}

// OpenStore returns the record cache named by cfg. A nil cfg gets the
// in-memory cache.
func OpenStore(ctx context.Context, cfg *config.Config) (cache.Store, func() error, error) {
	if cfg.CacheBackend() != config.CacheSQLite {
		return cache.NewMemory(), func() error { return nil }, nil
	}
	db, err := cache.OpenSQLite(ctx, config.CachePath())
	if err != nil {
		return nil, nil, err
	}
	return db, db.Close, nil
}

// IsInteractiveTerminal reports whether file is attached to a terminal.
func IsInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// outputWidth is the column budget for tables written to stdout.
func outputWidth() int {
	if !IsInteractiveTerminal(os.Stdout) {
		return 100
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 100
	}
	return w
}
