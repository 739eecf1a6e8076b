package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gravitrone/labproto/cli/internal/api"
)

// SQLite is a Store that survives restarts, so the last saved copy of a
// protocol can be shown before the server answers.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) the cache database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	// modernc.org/sqlite registers the "sqlite" driver name.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if path == ":memory:" {
		// Every new connection to :memory: is a fresh database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cache pragma: %w", err)
		}
	}
	const schema = `CREATE TABLE IF NOT EXISTS protocols (
		id        INTEGER PRIMARY KEY,
		body      TEXT NOT NULL,
		cached_at TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, id int64) (api.Protocol, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM protocols WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Protocol{}, false, nil
	}
	if err != nil {
		return api.Protocol{}, false, err
	}
	var p api.Protocol
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return api.Protocol{}, false, fmt.Errorf("decode cached protocol %d: %w", id, err)
	}
	return p, true, nil
}

func (s *SQLite) Put(ctx context.Context, p api.Protocol) error {
	if !p.HasID() {
		return ErrNoID
	}
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode protocol: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO protocols (id, body, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, cached_at = excluded.cached_at`,
		*p.ID, string(body), s.now().UTC().Format(time.RFC3339Nano),
	)
	return err
}
