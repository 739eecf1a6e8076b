package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/blocks"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/editor"
)

// fakeServer is an in-memory protocol server.
type fakeServer struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]map[string]any
	posts  []map[string]any
	puts   []map[string]any
	// dropID strips the id from create/update responses.
	dropID bool
	// failWith makes every write return this status.
	failWith int
}

func newFakeServer(t *testing.T) (*fakeServer, *api.Client) {
	t.Helper()
	fs := &fakeServer{nextID: 1, items: map[int64]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, api.NewClient(srv.URL, "lp_testkey")
}

func (fs *fakeServer) seed(p map[string]any) int64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	id := fs.nextID
	fs.nextID++
	p["id"] = id
	fs.items[id] = p
	return id
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.failWith != 0 && r.Method != http.MethodGet {
		w.WriteHeader(fs.failWith)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "database unavailable"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/protocol")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		out := make([]map[string]any, 0, len(fs.items))
		for id := int64(1); id < fs.nextID; id++ {
			if p, ok := fs.items[id]; ok {
				out = append(out, p)
			}
		}
		_ = json.NewEncoder(w).Encode(out)

	case rest == "" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		fs.posts = append(fs.posts, body)
		body["id"] = fs.nextID
		fs.items[fs.nextID] = body
		fs.nextID++
		fs.reply(w, body)

	case strings.HasPrefix(rest, "/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(rest, "/"), 10, 64)
		p, ok := fs.items[id]
		if err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": fmt.Sprintf("protocol %s not found", rest[1:])})
			return
		}
		if r.Method == http.MethodPut {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			fs.puts = append(fs.puts, body)
			body["id"] = id
			fs.items[id] = body
			fs.reply(w, body)
			return
		}
		_ = json.NewEncoder(w).Encode(p)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fs *fakeServer) reply(w http.ResponseWriter, body map[string]any) {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = v
	}
	if fs.dropID {
		delete(out, "id")
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (fs *fakeServer) postCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.posts)
}

func seqIDs() blocks.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("blk-%d", n)
	}
}

func clientSource(c *api.Client) editor.ClientSource {
	return func(context.Context) (editor.Upserter, error) { return c, nil }
}

func newTestEditor(t *testing.T, client *api.Client, store cache.Store, id *int64) EditorModel {
	t.Helper()
	if store == nil {
		store = cache.NewMemory()
	}
	ed := editor.New(id, store, editor.WithIDs(seqIDs()))
	return NewEditorModel(ed, client, store, clientSource(client), nil)
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// send feeds msgs through the model in order.
func send(m EditorModel, msgs ...tea.Msg) EditorModel {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

// runCmd executes cmd and requires a message back.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.NotNil(t, msg)
	return msg
}

func mouse(action tea.MouseAction, button tea.MouseButton, y int) tea.MouseMsg {
	return tea.MouseMsg{X: 10, Y: y, Action: action, Button: button}
}
