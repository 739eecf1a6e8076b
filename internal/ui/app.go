package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/editor"
	"github.com/gravitrone/labproto/cli/internal/ui/components"
)

// --- Messages ---

type errMsg struct{ err error }

var errNoClient = errors.New("not logged in: run 'labproto login' first")

type appView int

const (
	viewLibrary appView = iota
	viewEditor
)

// Option configures the App.
type Option func(*App)

// WithClientSource overrides where save requests get their client.
func WithClientSource(src editor.ClientSource) Option {
	return func(a *App) { a.clients = src }
}

// WithLogger sets the debug logger shared with every editor.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithEditorOptions passes options to every editor the App creates.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(a *App) { a.editorOpts = append(a.editorOpts, opts...) }
}

// StartInEditor opens the editor on id at startup. A nil id starts a new protocol.
func StartInEditor(id *int64) Option {
	return func(a *App) {
		a.view = viewEditor
		a.startID = id
	}
}

// --- App Model ---

// App is the root TUI model. It switches between the library and the editor.
type App struct {
	client     *api.Client
	store      cache.Store
	clients    editor.ClientSource
	editorOpts []editor.Option
	log        *slog.Logger

	view    appView
	startID *int64
	width   int
	height  int
	err     string

	quitConfirm bool

	library LibraryModel
	editor  EditorModel
}

// NewApp creates the root application model.
func NewApp(client *api.Client, store cache.Store, opts ...Option) App {
	if store == nil {
		store = cache.NewMemory()
	}
	a := App{
		client:  client,
		store:   store,
		log:     slog.New(slog.DiscardHandler),
		library: NewLibraryModel(client),
	}
	a.clients = func(context.Context) (editor.Upserter, error) {
		if client == nil {
			return nil, errNoClient
		}
		return client, nil
	}
	for _, opt := range opts {
		opt(&a)
	}
	if a.view == viewEditor {
		a.editor = a.newEditor(a.startID)
	}
	return a
}

func (a App) newEditor(id *int64) EditorModel {
	opts := append([]editor.Option{editor.WithLogger(a.log)}, a.editorOpts...)
	ed := editor.New(id, a.store, opts...)
	m := NewEditorModel(ed, a.client, a.store, a.clients, a.log)
	m.setSize(a.width, a.contentHeight())
	return m
}

func (a App) Init() tea.Cmd {
	if a.view == viewEditor {
		return a.editor.Init()
	}
	return a.library.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.library.width = msg.Width
		a.library.height = msg.Height
		if a.view == viewEditor {
			a.editor.setSize(msg.Width, a.contentHeight())
		}
		return a, nil

	case errMsg:
		a.err = msg.err.Error()
		a.log.Debug("error", "err", msg.err)
		var cmd tea.Cmd
		if a.view == viewEditor {
			a.editor, cmd = a.editor.Update(msg)
		} else {
			a.library, cmd = a.library.Update(msg)
		}
		return a, cmd

	case openEditorMsg:
		a.err = ""
		a.view = viewEditor
		a.editor = a.newEditor(msg.id)
		return a, a.editor.Init()

	case closeEditorMsg:
		a.err = ""
		a.view = viewLibrary
		a.editor = EditorModel{}
		var cmd tea.Cmd
		a.library, cmd = a.library.refresh()
		return a, cmd

	case protocolSavedMsg:
		if msg.err == nil {
			a.err = ""
			a.library.stale = true
		}

	case protocolsLoadedMsg:
		var cmd tea.Cmd
		a.library, cmd = a.library.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		if a.view != viewEditor || a.quitConfirm {
			return a, nil
		}
		msg.Y -= a.editorTop()
		var cmd tea.Cmd
		a.editor, cmd = a.editor.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if a.quitConfirm {
			switch {
			case isKey(msg, "y", "Y"), isQuit(msg):
				return a, tea.Quit
			case isKey(msg, "n", "N"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if isQuit(msg) {
			if a.view == viewEditor && (a.editor.Dirty() || a.editor.Saving()) {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		}
		if a.err != "" && !isSave(msg) {
			a.err = ""
		}
	}

	var cmd tea.Cmd
	if a.view == viewEditor {
		a.editor, cmd = a.editor.Update(msg)
	} else {
		a.library, cmd = a.library.Update(msg)
	}
	return a, cmd
}

// --- View ---

func (a App) header() string {
	if a.view == viewEditor {
		return RenderBrand()
	}
	return RenderBanner()
}

// editorTop is the screen row where the editor view starts.
func (a App) editorTop() int {
	return lipgloss.Height(a.header()) + 1
}

func (a App) statusHints() []string {
	if a.view == viewEditor {
		return a.editor.statusHints()
	}
	return a.library.statusHints()
}

// contentHeight is the rows left for the active view after the header and
// status bar.
func (a App) contentHeight() int {
	if a.height <= 0 {
		return 0
	}
	used := a.editorTop() + lipgloss.Height(components.StatusBar(a.statusHints(), a.width)) + 1
	return max(a.height-used, 1)
}

func (a App) View() string {
	var content string
	if a.view == viewEditor {
		content = a.editor.View()
	} else {
		content = a.library.View()
	}
	if a.quitConfirm {
		content = components.ConfirmDialog("Quit?", "This protocol has unsaved changes or a save in flight.")
	}
	content = centerBlockUniform(content, a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	}
	hints := components.StatusBar(a.statusHints(), a.width)

	var b strings.Builder
	b.WriteString(centerBlockUniform(a.header(), a.width))
	b.WriteString("\n\n")
	b.WriteString(content)
	b.WriteString(feedback)
	b.WriteString("\n\n")
	b.WriteString(hints)
	return b.String()
}

// centerBlockUniform shifts every line right by the same amount so the
// widest line is centered. Row positions are unchanged.
func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	widest := 0
	for _, line := range lines {
		widest = max(widest, lipgloss.Width(line))
	}
	pad := (width - widest) / 2
	if widest <= 0 || pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
