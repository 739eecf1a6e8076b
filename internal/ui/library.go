package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/ui/components"
)

// --- Messages ---

type protocolsLoadedMsg struct{ items []api.Protocol }

type openEditorMsg struct{ id *int64 }

// --- Library Model ---

// LibraryModel lists protocols and opens them in the editor.
type LibraryModel struct {
	client    *api.Client
	list      *components.List
	items     []api.Protocol
	allItems  []api.Protocol
	loading   bool
	stale     bool
	searchBuf string
	width     int
	height    int
}

// NewLibraryModel builds the protocol library.
func NewLibraryModel(client *api.Client) LibraryModel {
	return LibraryModel{
		client:  client,
		list:    components.NewList(12),
		loading: true,
	}
}

func (m LibraryModel) Init() tea.Cmd {
	return m.loadProtocols
}

func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case protocolsLoadedMsg:
		m.loading = false
		m.stale = false
		m.allItems = msg.items
		m.applySearch()
		return m, nil
	case errMsg:
		m.loading = false
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return m, nil
}

// --- Loading ---

func (m LibraryModel) loadProtocols() tea.Msg {
	if m.client == nil {
		return errMsg{errNoClient}
	}
	items, err := m.client.QueryProtocols(context.Background(), nil)
	if err != nil {
		return errMsg{err}
	}
	return protocolsLoadedMsg{items: items}
}

// refresh reloads the list if a save happened since the last load.
func (m LibraryModel) refresh() (LibraryModel, tea.Cmd) {
	if !m.stale {
		return m, nil
	}
	m.loading = true
	return m, m.loadProtocols
}

func (m *LibraryModel) applySearch() {
	query := strings.TrimSpace(strings.ToLower(m.searchBuf))
	m.items = m.items[:0:0]
	for _, item := range m.allItems {
		if query == "" || strings.Contains(strings.ToLower(item.Name), query) ||
			strconv.FormatInt(item.IDValue(), 10) == query {
			m.items = append(m.items, item)
		}
	}
	labels := make([]string, 0, len(m.items))
	for _, item := range m.items {
		labels = append(labels, components.SanitizeOneLine(item.Name))
	}
	m.list.SetItems(labels)
}

// --- Keys ---

func (m LibraryModel) handleKeys(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	switch {
	case isDown(msg):
		m.list.Down()
	case isUp(msg):
		m.list.Up()
	case isKey(msg, "ctrl+n"):
		return m, func() tea.Msg { return openEditorMsg{} }
	case isKey(msg, "ctrl+r"):
		m.loading = true
		return m, m.loadProtocols
	case isEnter(msg):
		if idx := m.list.Selected(); idx < len(m.items) && m.items[idx].HasID() {
			id := m.items[idx].IDValue()
			return m, func() tea.Msg { return openEditorMsg{id: &id} }
		}
	case isBack(msg):
		m.searchBuf = ""
		m.applySearch()
	case isKey(msg, "backspace"):
		if m.searchBuf != "" {
			r := []rune(m.searchBuf)
			m.searchBuf = string(r[:len(r)-1])
			m.applySearch()
		}
	case isTyping(msg):
		m.searchBuf += string(msg.Runes)
		m.applySearch()
	}
	return m, nil
}

// --- View ---

func (m LibraryModel) View() string {
	if m.loading {
		return components.CenterLine("Loading protocols...", m.width)
	}
	if len(m.items) == 0 {
		content := MutedStyle.Render("No protocols found. Press ctrl+n to create one.")
		if m.searchBuf != "" {
			content = MutedStyle.Render("No protocols match \"" + components.SanitizeOneLine(m.searchBuf) + "\".")
		}
		return components.TitledBox("Protocols", content, m.width)
	}

	tableWidth := components.BoxContentWidth(m.width)
	if tableWidth <= 0 {
		tableWidth = 60
	}
	cols := []components.TableColumn{
		{Header: "ID", Width: 6, Align: lipgloss.Right},
		{Header: "Sections", Width: 8, Align: lipgloss.Right},
		{Header: "Updated", Width: 16},
		{Header: "Name", Width: 20},
	}
	visible := m.list.Visible()
	rows := make([][]string, 0, len(visible))
	active := -1
	for i := range visible {
		abs := m.list.RelToAbs(i)
		p := m.items[abs]
		if m.list.IsSelected(abs) {
			active = i
		}
		updated := "-"
		if p.UpdatedOn != nil {
			updated = p.UpdatedOn.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.IDValue(), 10),
			strconv.Itoa(len(p.Blocks)),
			updated,
			p.Name,
		})
	}

	countLine := fmt.Sprintf("%d total", len(m.items))
	if q := strings.TrimSpace(m.searchBuf); q != "" {
		countLine = fmt.Sprintf("%s · search: %s", countLine, components.SanitizeOneLine(q))
	}
	content := MutedStyle.Render(countLine) + "\n\n" + components.TableGrid(cols, rows, tableWidth, active)
	return components.TitledBox("Protocols", content, m.width)
}

func (m LibraryModel) statusHints() []string {
	return []string{
		components.Hint("↑/↓", "Select"),
		components.Hint("enter", "Open"),
		components.Hint("ctrl+n", "New"),
		components.Hint("type", "Search"),
		components.Hint("ctrl+r", "Refresh"),
		components.Hint("ctrl+c", "Quit"),
	}
}
