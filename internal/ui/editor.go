package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/blocks"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/drag"
	"github.com/gravitrone/labproto/cli/internal/editor"
	"github.com/gravitrone/labproto/cli/internal/richtext"
	"github.com/gravitrone/labproto/cli/internal/ui/components"
)

// --- Messages ---

type protocolFetchedMsg struct {
	id       int64
	protocol api.Protocol
	// cached is set when the record came from the local cache and may be
	// older than the server copy.
	cached bool
}

type protocolRefreshedMsg struct {
	id       int64
	protocol api.Protocol
}

type protocolSavedMsg struct {
	result *api.Protocol
	err    error
}

type closeEditorMsg struct{}

type editorFocus int

const (
	focusName editorFocus = iota
	focusDescription
	focusBlocks
	focusCount
)

const descriptionHeight = 5

// --- Editor Model ---

// EditorModel is the edit screen for one protocol. Opening another protocol
// builds a fresh EditorModel, so pending edits never leak between records.
type EditorModel struct {
	ed      *editor.Editor
	client  *api.Client
	store   cache.Store
	clients editor.ClientSource
	log     *slog.Logger

	name  textinput.Model
	desc  textarea.Model
	focus editorFocus

	cursor      int
	blockOffset int

	menuOpen     bool
	menuCursor   int
	fieldsOpen   bool
	fields       blockEditor
	confirmLeave bool

	gesture drag.Gesture
	hover   int

	loading    bool
	dirty      bool
	saveFailed bool
	saveBegun  bool
	// edits counts local changes; saveMark is its value when the last save began.
	edits    int
	saveMark int
	width    int
	height   int
}

// NewEditorModel builds the edit screen around ed.
func NewEditorModel(ed *editor.Editor, client *api.Client, store cache.Store, clients editor.ClientSource, log *slog.Logger) EditorModel {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	name := textinput.New()
	name.Placeholder = "Untitled protocol"
	name.Prompt = ""
	name.CharLimit = 0

	desc := textarea.New()
	desc.Placeholder = "Describe the protocol. Each line is a paragraph."
	desc.ShowLineNumbers = false
	desc.CharLimit = 0
	desc.MaxHeight = 0
	desc.SetHeight(descriptionHeight)

	m := EditorModel{
		ed:      ed,
		client:  client,
		store:   store,
		clients: clients,
		log:     log,
		name:    name,
		desc:    desc,
		hover:   -1,
		loading: !ed.IsNew(),
	}
	m.name.Focus()
	m.syncInputs()
	return m
}

func (m EditorModel) Init() tea.Cmd {
	if m.ed.IsNew() {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.fetchProtocol)
}

// Saving reports whether a save is in flight.
func (m EditorModel) Saving() bool {
	return m.ed.Saving()
}

// Dirty reports whether there are edits newer than the last successful save.
func (m EditorModel) Dirty() bool {
	return m.dirty
}

func (m *EditorModel) setSize(width, height int) {
	m.width = width
	m.height = height
	inner := max(components.BoxContentWidth(width), 20)
	m.name.Width = inner
	m.desc.SetWidth(inner)
	m.scrollToCursor()
}

func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case protocolFetchedMsg:
		if id := m.ed.ID(); id == nil || *id != msg.id {
			return m, nil
		}
		m.loading = false
		m.syncInputs()
		if msg.cached && m.client != nil {
			return m, m.refreshProtocol
		}
		return m, nil

	case protocolRefreshedMsg:
		if id := m.ed.ID(); id == nil || *id != msg.id || m.saveBegun {
			return m, nil
		}
		if err := m.store.Put(context.Background(), msg.protocol); err != nil {
			return m, func() tea.Msg { return errMsg{fmt.Errorf("cache protocol %d: %w", msg.id, err)} }
		}
		m.syncInputs()
		return m, nil

	case protocolSavedMsg:
		err := m.ed.FinishSave(context.Background(), msg.result, msg.err)
		m.saveFailed = err != nil
		if err != nil {
			m.log.Debug("save failed", "err", err)
			return m, func() tea.Msg { return errMsg{err} }
		}
		m.dirty = m.edits != m.saveMark
		return m, nil

	case errMsg:
		m.loading = false
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.fieldsOpen:
		m.fields.input, cmd = m.fields.input.Update(msg)
	case m.focus == focusName:
		m.name, cmd = m.name.Update(msg)
	case m.focus == focusDescription:
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

// --- Loading ---

func (m EditorModel) fetchProtocol() tea.Msg {
	id := m.ed.ID()
	if id == nil {
		return nil
	}
	ctx := context.Background()
	if p, ok, err := m.store.Get(ctx, *id); err == nil && ok {
		return protocolFetchedMsg{id: *id, protocol: p, cached: true}
	}
	var fetch cache.Fetcher
	if m.client != nil {
		fetch = m.client
	}
	p, err := cache.Lookup(ctx, m.store, fetch, *id)
	if err != nil {
		return errMsg{fmt.Errorf("load protocol %d: %w", *id, err)}
	}
	return protocolFetchedMsg{id: *id, protocol: p}
}

// refreshProtocol fetches the server copy after a cache hit. Update stores
// it, so untouched fields stop reading the stale copy.
func (m EditorModel) refreshProtocol() tea.Msg {
	id := m.ed.ID()
	if id == nil || m.client == nil {
		return nil
	}
	p, err := m.client.GetProtocol(context.Background(), *id)
	if err != nil {
		return errMsg{fmt.Errorf("refresh protocol %d: %w", *id, err)}
	}
	if !p.HasID() {
		p.ID = api.Int64(*id)
	}
	return protocolRefreshedMsg{id: *id, protocol: *p}
}

// syncInputs copies displayed values into inputs the user has not edited.
func (m *EditorModel) syncInputs() {
	pending := m.ed.Pending()
	if pending.Name == nil {
		m.name.SetValue(m.ed.Name())
	}
	if pending.Description == nil {
		m.desc.SetValue(richtext.Serialize(m.ed.Description()))
	}
}

func (m *EditorModel) markDirty() {
	m.dirty = true
	m.edits++
}

// --- Save ---

func (m EditorModel) startSave() (EditorModel, tea.Cmd) {
	if m.ed.Saving() {
		return m, nil
	}
	req, err := m.ed.BeginSave()
	if err != nil {
		return m, nil
	}
	m.saveMark = m.edits
	m.saveBegun = true
	clients := m.clients
	return m, func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = protocolSavedMsg{err: fmt.Errorf("save %s %s: %v", req.Method, req.Path, r)}
			}
		}()
		ctx := context.Background()
		up, err := clients(ctx)
		if err != nil {
			return protocolSavedMsg{err: err}
		}
		out, err := editor.Submit(ctx, up, req)
		return protocolSavedMsg{result: out, err: err}
	}
}

// --- Keys ---

func closeEditor() tea.Msg {
	return closeEditorMsg{}
}

func (m EditorModel) handleKeys(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	if m.confirmLeave {
		switch {
		case isKey(msg, "y", "Y"):
			m.confirmLeave = false
			return m, closeEditor
		case isKey(msg, "n", "N"), isBack(msg):
			m.confirmLeave = false
		}
		return m, nil
	}
	if isSave(msg) {
		if m.fieldsOpen {
			m.commitField()
		}
		return m.startSave()
	}
	if m.menuOpen {
		return m.handleMenuKeys(msg)
	}
	if m.fieldsOpen {
		return m.handleFieldKeys(msg)
	}

	switch {
	case isBack(msg):
		if m.gesture.Active {
			m.endDrag()
			return m, nil
		}
		if m.ed.Saving() {
			return m, nil
		}
		if m.dirty {
			m.confirmLeave = true
			return m, nil
		}
		return m, closeEditor
	case isNextField(msg):
		return m.setFocus((m.focus + 1) % focusCount)
	case isPrevField(msg):
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		before := m.name.Value()
		m.name, cmd = m.name.Update(msg)
		if after := m.name.Value(); after != before {
			m.ed.SetName(after)
			m.markDirty()
		}
	case focusDescription:
		before := m.desc.Value()
		m.desc, cmd = m.desc.Update(msg)
		if after := m.desc.Value(); after != before {
			m.ed.SetDescription(richtext.Deserialize(after))
			m.markDirty()
		}
	default:
		return m.handleBlockKeys(msg)
	}
	return m, cmd
}

func (m EditorModel) setFocus(f editorFocus) (EditorModel, tea.Cmd) {
	m.focus = f
	m.name.Blur()
	m.desc.Blur()
	switch f {
	case focusName:
		return m, m.name.Focus()
	case focusDescription:
		return m, m.desc.Focus()
	}
	m.scrollToCursor()
	return m, nil
}

func (m EditorModel) handleBlockKeys(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	items := m.ed.Blocks()
	switch {
	case isMoveUp(msg):
		m.moveFocused(-1)
	case isMoveDown(msg):
		m.moveFocused(1)
	case isUp(msg):
		if m.cursor > 0 {
			m.cursor--
		}
	case isDown(msg):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case isKey(msg, "a", "+"):
		m.menuOpen = true
		m.menuCursor = 0
	case isEnter(msg):
		if m.cursor < len(items) {
			m.fields = newBlockEditor(items[m.cursor], m.width)
			m.fieldsOpen = true
			return m, m.fields.Focus()
		}
	case isKey(msg, "ctrl+d", "x", "delete"):
		if m.cursor < len(items) {
			m.ed.RemoveBlock(items[m.cursor].ID)
			m.markDirty()
			m.cursor = min(m.cursor, max(len(items)-2, 0))
		}
	}
	m.scrollToCursor()
	return m, nil
}

func (m *EditorModel) moveFocused(delta int) {
	to := m.cursor + delta
	if err := m.ed.MoveBlock(m.cursor, to); err != nil {
		return
	}
	m.cursor = to
	m.markDirty()
}

func (m EditorModel) handleMenuKeys(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	types := blocks.Types()
	switch {
	case isBack(msg):
		m.menuOpen = false
	case isUp(msg):
		m.menuCursor = (m.menuCursor - 1 + len(types)) % len(types)
	case isDown(msg):
		m.menuCursor = (m.menuCursor + 1) % len(types)
	case isEnter(msg):
		added := m.ed.AppendBlock(types[m.menuCursor])
		m.log.Debug("block added", "type", added.Type, "id", added.ID)
		m.menuOpen = false
		m.markDirty()
		m.cursor = len(m.ed.Blocks()) - 1
		m.scrollToCursor()
	}
	return m, nil
}

func (m EditorModel) handleFieldKeys(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	switch {
	case isBack(msg):
		m.commitField()
		m.fieldsOpen = false
		m.fields.input.Blur()
		return m, nil
	case isNextField(msg), isDown(msg):
		m.commitField()
		m.fields.step(1)
		return m, nil
	case isPrevField(msg), isUp(msg):
		m.commitField()
		m.fields.step(-1)
		return m, nil
	case isEnter(msg):
		m.commitField()
		if m.fields.onLastField() {
			m.fieldsOpen = false
			m.fields.input.Blur()
			return m, nil
		}
		m.fields.step(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.fields.input, cmd = m.fields.input.Update(msg)
	return m, cmd
}

func (m *EditorModel) commitField() {
	if def, changed := m.fields.commit(); changed {
		m.ed.UpdateBlock(def)
		m.markDirty()
	}
}

// --- Mouse ---

func (m EditorModel) handleMouse(msg tea.MouseMsg) (EditorModel, tea.Cmd) {
	if m.menuOpen || m.fieldsOpen || m.confirmLeave {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.blockOffset = max(m.blockOffset-1, 0)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.blockOffset = min(m.blockOffset+1, max(len(m.ed.Blocks())-1, 0))
		return m, nil
	}

	_, boxes := m.layout()
	y := float64(msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		idx, ok := drag.HitTest(boxes, y)
		if !ok {
			return m, nil
		}
		abs := m.blockOffset + idx
		items := m.ed.Blocks()
		m.cursor = abs
		m.gesture.Begin(abs, items[abs].ID)
		m.hover = abs
		return m.setFocus(focusBlocks)

	case tea.MouseActionMotion:
		if !m.gesture.Active {
			return m, nil
		}
		idx, ok := drag.HitTest(boxes, y)
		if !ok {
			return m, nil
		}
		abs := m.blockOffset + idx
		m.hover = abs
		if m.ed.DragHover(&m.gesture, abs, boxes[idx], y) {
			m.cursor = m.gesture.Origin
			m.markDirty()
		}

	case tea.MouseActionRelease:
		m.endDrag()
	}
	return m, nil
}

func (m *EditorModel) endDrag() {
	if !m.gesture.Active {
		return
	}
	m.cursor = m.gesture.Origin
	m.gesture.End()
	m.hover = -1
}

// --- Layout ---

func (m *EditorModel) scrollToCursor() {
	n := len(m.ed.Blocks())
	if n == 0 {
		m.cursor, m.blockOffset = 0, 0
		return
	}
	m.cursor = min(max(m.cursor, 0), n-1)
	m.blockOffset = min(m.blockOffset, n-1)
	if m.cursor < m.blockOffset {
		m.blockOffset = m.cursor
	}
	items := m.ed.Blocks()
	top := lipgloss.Height(m.renderTop())
	for m.blockOffset < m.cursor && m.cursor >= m.blockOffset+m.cardsFit(items, m.blockOffset, top) {
		m.blockOffset++
	}
}

// cardsFit counts the cards from offset that fit below top. At least one
// card is always shown.
func (m EditorModel) cardsFit(items []blocks.Definition, offset, top int) int {
	if m.height <= 0 {
		return len(items) - offset
	}
	n, y := 0, top
	for i := offset; i < len(items); i++ {
		h := lipgloss.Height(m.renderCard(i, items[i]))
		if n > 0 && y+h > m.height {
			break
		}
		y += h
		n++
	}
	return n
}

// layout renders the editor and returns the vertical extent of every
// visible card, relative to the first line of the view.
func (m EditorModel) layout() (string, []drag.Box) {
	top := m.renderTop()
	y := lipgloss.Height(top)
	parts := []string{top}

	items := m.ed.Blocks()
	offset := min(m.blockOffset, max(len(items)-1, 0))
	var boxes []drag.Box
	if len(items) == 0 {
		empty := MutedStyle.Render("No sections yet. Press a to add one.")
		parts = append(parts, components.CenterLine(empty, m.width))
	} else {
		n := m.cardsFit(items, offset, y)
		for i := offset; i < offset+n; i++ {
			card := m.renderCard(i, items[i])
			h := lipgloss.Height(card)
			boxes = append(boxes, drag.Box{Top: float64(y), Bottom: float64(y + h)})
			parts = append(parts, card)
			y += h
		}
		if hidden := len(items) - offset - n; hidden > 0 || offset > 0 {
			more := fmt.Sprintf("sections %d-%d of %d", offset+1, offset+n, len(items))
			parts = append(parts, MutedStyle.Render(components.CenterLine(more, m.width)))
		}
	}

	switch {
	case m.confirmLeave:
		parts = append(parts, "", components.ConfirmDialog("Discard edits?", "Unsaved changes to this protocol will be lost."))
	case m.menuOpen:
		labels := make([]string, 0, len(blocks.Types()))
		for _, t := range blocks.Types() {
			labels = append(labels, t.Label())
		}
		parts = append(parts, "", components.MenuDialog("Add section", labels, m.menuCursor))
	case m.fieldsOpen:
		parts = append(parts, "", m.fields.View(m.width))
	}
	return strings.Join(parts, "\n"), boxes
}

func (m EditorModel) View() string {
	out, _ := m.layout()
	return out
}

func (m EditorModel) renderTop() string {
	title := "New protocol"
	if id := m.ed.ID(); id != nil {
		title = fmt.Sprintf("Protocol #%d", *id)
	}
	status := m.renderSaveState()
	header := SelectedStyle.Render(title)
	if status != "" {
		header += MutedStyle.Render("  ·  ") + status
	}

	nameBox := components.TitledBox("Name", m.name.View(), m.width)
	descBox := components.TitledBox("Description", m.desc.View(), m.width)
	switch m.focus {
	case focusName:
		nameBox = components.ActiveTitledBox("Name", m.name.View(), m.width)
	case focusDescription:
		descBox = components.ActiveTitledBox("Description", m.desc.View(), m.width)
	}

	label := fmt.Sprintf("Sections (%d)", len(m.ed.Blocks()))
	if m.focus == focusBlocks {
		label = SelectedStyle.Render(label)
	} else {
		label = MetaKeyStyle.Render(label)
	}

	lines := []string{components.CenterLine(header, m.width)}
	if m.loading {
		lines = append(lines, MutedStyle.Render(components.CenterLine("Loading protocol...", m.width)))
	}
	lines = append(lines, "", nameBox, descBox, "", label)
	return strings.Join(lines, "\n")
}

func (m EditorModel) renderSaveState() string {
	st := m.ed.SaveState()
	switch {
	case st.Saving:
		return WarningStyle.Render("saving...")
	case m.saveFailed:
		return ErrorStyle.Render("save failed")
	case m.dirty:
		return AccentStyle.Render("unsaved changes")
	case st.LastSaved != nil:
		return SuccessStyle.Render(st.Label())
	}
	return ""
}

func (m EditorModel) renderCard(i int, b blocks.Definition) string {
	var body strings.Builder
	specs := blocks.Schema(b.Type)
	for j, spec := range specs {
		val := strings.TrimSpace(b.Field(spec.Name))
		if val == "" {
			val = "-"
		}
		body.WriteString(MutedStyle.Render(spec.Label+": ") + NormalStyle.Render(components.SanitizeOneLine(val)))
		if j < len(specs)-1 {
			body.WriteString("\n")
		}
	}

	state := components.CardNormal
	switch drag.StateOf(m.gesture, i, m.hover) {
	case drag.Source:
		state = components.CardGhost
	case drag.Target:
		state = components.CardFocused
	default:
		if m.focus == focusBlocks && i == m.cursor {
			state = components.CardFocused
		}
	}
	title := fmt.Sprintf("%d · %s", i+1, b.Type.Label())
	return components.Card(title, body.String(), m.width, state)
}

func (m EditorModel) statusHints() []string {
	switch {
	case m.confirmLeave:
		return []string{components.Hint("y", "Discard"), components.Hint("n", "Keep editing")}
	case m.menuOpen:
		return []string{components.Hint("↑/↓", "Choose"), components.Hint("enter", "Add"), components.Hint("esc", "Cancel")}
	case m.fieldsOpen:
		return []string{components.Hint("tab", "Next"), components.Hint("esc", "Done"), components.Hint("ctrl+s", "Save")}
	case m.focus == focusBlocks:
		return []string{
			components.Hint("↑/↓", "Select"),
			components.Hint("ctrl+↑/↓", "Move"),
			components.Hint("drag", "Reorder"),
			components.Hint("a", "Add"),
			components.Hint("enter", "Edit"),
			components.Hint("x", "Remove"),
			components.Hint("ctrl+s", "Save"),
		}
	}
	return []string{
		components.Hint("tab", "Next field"),
		components.Hint("ctrl+s", "Save"),
		components.Hint("esc", "Library"),
	}
}
