package ui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/spotus/spotus_viewer/pkg/responses"
	"github.com/spotus/spotus_viewer/pkg/tabs"
)

// inputMode is the single-line prompt currently open in the footer
type inputMode int

const (
	modeNone inputMode = iota
	modeTags
	modeSearch
	modePage
	modePageSize
)

// PageLoader fetches the page HTML again, for reloads.
type PageLoader func(ctx context.Context) ([]byte, error)

// ReloadMsg asks the model to fetch and re-parse the page.
type ReloadMsg struct{}

type pageReloadedMsg struct {
	doc *html.Node
	err error
}

// Options configures a Model.
type Options struct {
	Theme    Theme
	Location *responses.Location
	Service  responses.Service
	Recorder responses.Recorder
	PageSize int
	Delay    time.Duration
	Logger   *slog.Logger
	Loader   PageLoader
	// Copy writes text to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
}

// Model is the page viewer: one tab router over the page document, and
// a response list controller when the page carries the responses section.
type Model struct {
	opts     Options
	theme    Theme
	logger   *slog.Logger
	doc      *html.Node
	router   *tabs.Router
	location *responses.Location
	list     *responses.Controller
	send     func(tea.Msg)

	viewport viewport.Model
	rendered tabs.Rendered
	pending  tabs.Result
	linkIdx  int

	mode    inputMode
	input   textinput.Model
	inputID int64

	palette *PaletteModel
	help    HelpOverlayModel
	message *MessageFormModel

	status    string
	statusErr bool

	width  int
	height int
	ready  bool
}

// NewModel builds the viewer for a parsed page and resolves the location's
// fragment.
func NewModel(doc *html.Node, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Theme.Renderer == nil {
		opts.Theme = NewTheme("dark", nil)
	}
	if opts.Location == nil {
		opts.Location, _ = responses.ParseLocation("")
	}

	ti := textinput.New()
	ti.CharLimit = 200

	m := &Model{
		opts:     opts,
		theme:    opts.Theme,
		logger:   opts.Logger.With("component", "ui"),
		location: opts.Location,
		send:     func(tea.Msg) {},
		viewport: viewport.New(0, 0),
		linkIdx:  -1,
		input:    ti,
		help:     NewHelpOverlayModel(opts.Theme),
	}
	m.load(doc)
	return m
}

// load installs a document: a new router, and a list controller unless the
// current one already serves the same assignment.
func (m *Model) load(doc *html.Node) {
	m.doc = doc
	m.router = tabs.New(doc)
	m.pending = m.router.Initialize(m.location.Fragment())
	m.linkIdx = -1

	id, ok := tabs.AssignmentID(doc)
	if !ok || tabs.ResponsesSection(doc) == nil || m.opts.Service == nil {
		if m.list != nil {
			m.list.Close()
		}
		m.list = nil
		return
	}
	if m.list != nil && m.list.Assignment() == id {
		return
	}
	if m.list != nil {
		m.list.Close()
	}
	m.list = responses.New(m.opts.Service, id, responses.Options{
		PageSize: m.opts.PageSize,
		Delay:    m.opts.Delay,
		Logger:   m.opts.Logger,
		Recorder: m.opts.Recorder,
		Location: m.location,
		Send:     m.send,
		Style:    m.theme.GlamourStyle(),
	})
}

// SetSender routes debounced list actions into the running program.
func (m *Model) SetSender(send func(tea.Msg)) {
	if send == nil {
		return
	}
	m.send = send
	if m.list != nil {
		m.list.SetSender(send)
	}
}

// Router exposes the tab router.
func (m *Model) Router() *tabs.Router { return m.router }

// List returns the response list controller, or nil.
func (m *Model) List() *responses.Controller { return m.list }

// Location returns the current page address.
func (m *Model) Location() string { return m.location.String() }

// Close releases pending timers.
func (m *Model) Close() {
	if m.list != nil {
		m.list.Close()
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if m.list == nil {
		return nil
	}
	return m.list.Init()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.rebuild()
		return m, cmd

	case ReloadMsg:
		return m, m.reload()

	case pageReloadedMsg:
		if msg.err != nil {
			m.logger.Warn("reload failed", "error", msg.err)
			m.setStatus("Reload failed: "+msg.err.Error(), true)
			return m, nil
		}
		hadList := m.list
		m.load(msg.doc)
		m.rebuild()
		m.applyPending()
		if m.list != nil && m.list != hadList {
			return m, m.list.Init()
		}
		return m, nil

	case responses.LocationChangedMsg:
		m.logger.Debug("location synced", "location", msg.Location)
		return m, nil
	}

	var cmds []tea.Cmd
	if m.message != nil {
		form, cmd := m.message.Update(msg)
		m.message = &form
		cmds = append(cmds, cmd)
	}
	if m.list != nil {
		cmds = append(cmds, m.list.Update(msg))
		m.rebuild()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) reload() tea.Cmd {
	loader := m.opts.Loader
	if loader == nil {
		return nil
	}
	return func() tea.Msg {
		body, err := loader(context.Background())
		if err != nil {
			return pageReloadedMsg{err: err}
		}
		doc, err := tabs.Parse(bytes.NewReader(body))
		return pageReloadedMsg{doc: doc, err: err}
	}
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-headerHeight-footerHeight)
	m.input.Width = max(10, width-20)
	m.help.SetSize(width, height)
	if m.palette != nil {
		m.palette.SetSize(width, height)
	}
	if m.message != nil {
		m.message.SetSize(width)
	}
	first := !m.ready
	m.ready = true
	m.rebuild()
	if first {
		m.applyPending()
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// rebuild re-renders the active panel into the viewport.
func (m *Model) rebuild() {
	if !m.ready {
		return
	}
	root := m.doc
	if t := m.router.Active(); t != nil && t.Panel != nil {
		root = t.Panel
	}
	section := tabs.ResponsesSection(m.doc)
	m.rendered = tabs.RenderPanel(root, tabs.RenderOptions{
		Width: m.width,
		Replace: func(n *html.Node) ([]string, bool) {
			if m.list == nil || n != section {
				return nil, false
			}
			return m.list.Lines(m.width, m.theme.ListStyles()), true
		},
	})
	if m.linkIdx >= len(m.rendered.Links) {
		m.linkIdx = -1
	}
	m.viewport.SetContent(m.rendered.String())
}

// applyPending scrolls to the element the last resolve targeted.
func (m *Model) applyPending() {
	if line, ok := m.pending.ScrollLine(m.rendered); ok {
		m.viewport.SetYOffset(line)
	} else if m.pending.Changed {
		m.viewport.GotoTop()
	}
	m.pending = tabs.Result{}
}

// navigate changes the location fragment and lets the router follow it.
func (m *Model) navigate(fragment string) {
	m.location.SetFragment(fragment)
	m.pending = m.router.Resolve(fragment)
	m.linkIdx = -1
	m.rebuild()
	if !m.pending.Changed {
		m.setStatus("No tab for "+tabs.NormalizeFragment(fragment), true)
	}
	m.applyPending()
}

func (m *Model) step(delta int) {
	res := m.router.Step(delta)
	if res.Tab == nil {
		return
	}
	m.navigate(res.Tab.Key)
}

// listVisible reports whether the response list is on the active panel.
func (m *Model) listVisible() bool {
	if m.list == nil {
		return false
	}
	t := m.router.Active()
	section := tabs.ResponsesSection(m.doc)
	if t == nil {
		return section != nil
	}
	return t.Panel != nil && tabs.Contains(t.Panel, section)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if m.help.IsVisible() {
		m.help, _ = m.help.Update(msg)
		return nil
	}

	if m.palette != nil {
		m.palette.Update(key)
		switch {
		case m.palette.IsConfirmed():
			item := m.palette.SelectedItem()
			m.palette = nil
			if item != nil {
				m.navigate(item.Anchor.Fragment)
			}
		case m.palette.IsCancelled():
			m.palette = nil
		}
		return nil
	}

	if m.message != nil {
		form, cmd := m.message.Update(msg)
		m.message = &form
		switch {
		case form.Submitted():
			m.message = nil
			subject, body := form.Values()
			return m.list.SendMessage(form.ResponseID(), subject, body)
		case form.Cancelled():
			m.message = nil
			return nil
		}
		return cmd
	}

	if m.mode != modeNone {
		return m.handleInput(msg)
	}

	m.status = ""
	switch key {
	case "q", "ctrl+c":
		m.Close()
		return tea.Quit
	case "?":
		m.help.Toggle()
		return nil
	case "#":
		p := NewPaletteModel(m.router.Anchors(), m.theme)
		p.SetSize(m.width, m.height)
		m.palette = &p
		return nil
	case "tab", "right":
		m.step(1)
		return nil
	case "shift+tab", "left":
		m.step(-1)
		return nil
	case "y":
		loc := m.location.String()
		if err := m.opts.Copy(loc); err != nil {
			m.setStatus("Copy failed: "+err.Error(), true)
		} else {
			m.setStatus("Copied "+loc, false)
		}
		return nil
	case "]", "[":
		m.selectLink(key == "]")
		return nil
	case "enter":
		m.followLink()
		return nil
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		keys := m.router.Keys()
		if i := int(key[0] - '1'); i < len(keys) {
			m.navigate(keys[i])
		}
		return nil
	}

	if m.listVisible() {
		if cmd, ok := m.handleListKey(key); ok {
			return cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) handleListKey(key string) (tea.Cmd, bool) {
	l := m.list
	switch key {
	case "j":
		l.MoveCursor(1)
		m.rebuild()
		m.ensureCursorVisible()
	case "k":
		l.MoveCursor(-1)
		m.rebuild()
		m.ensureCursorVisible()
	case "f":
		return l.ToggleFlag(l.Cursor()), true
	case "g":
		return l.ToggleGallery(l.Cursor()), true
	case "F":
		return l.ToggleFlagAll(), true
	case "G":
		return l.ToggleGalleryAll(), true
	case " ":
		l.ToggleCollapse(l.Cursor())
	case "i":
		return l.ToggleInline(), true
	case "c":
		return l.CycleFilter(), true
	case "<":
		return l.FirstPage(), true
	case ",":
		return l.PrevPage(), true
	case ".":
		return l.NextPage(), true
	case ">":
		return l.FinalPage(), true
	case "r":
		return l.Refresh(), true
	case "t":
		r, ok := l.Selected()
		if !ok || !r.EditAccess() {
			m.setStatus("Tags are only editable by editors", true)
			return nil, true
		}
		m.openInput(modeTags, "tags: ", l.TagDraft(r.ID))
		m.inputID = r.ID
	case "/":
		m.openInput(modeSearch, "search: ", l.SearchText())
	case "p":
		m.openInput(modePage, fmt.Sprintf("page (1-%d): ", max(1, l.LastPage())), "")
	case "s":
		m.openInput(modePageSize, "page size (10-50): ", strconv.Itoa(l.State().PageSize))
	case "m":
		r, ok := l.Selected()
		if !ok || !r.Messageable() {
			m.setStatus("This response has no author to message", true)
			return nil, true
		}
		form := NewMessageFormModel(r.ID, r.Author(), m.theme)
		form.SetSize(m.width)
		m.message = &form
		return form.Init(), true
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) openInput(mode inputMode, prompt, value string) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeNone
	m.input.Blur()
	m.inputID = 0
}

func (m *Model) handleInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.closeInput()
		switch mode {
		case modePage:
			return m.list.SelectPage(value)
		case modePageSize:
			return m.list.SelectPageSize(value)
		}
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		switch m.mode {
		case modeTags:
			m.list.EditTags(m.inputID, v)
		case modeSearch:
			m.list.SearchInput(v)
		}
	}
	return cmd
}

// ensureCursorVisible scrolls so the selected record's header is on screen.
func (m *Model) ensureCursorVisible() {
	r, ok := m.list.Selected()
	if !ok {
		return
	}
	marker := fmt.Sprintf("▸ #%d ", r.ID)
	for i, line := range m.rendered.Lines {
		if !strings.Contains(line, marker) {
			continue
		}
		m.scrollTo(i)
		return
	}
}

func (m *Model) scrollTo(line int) {
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m *Model) selectLink(forward bool) {
	n := len(m.rendered.Links)
	if n == 0 {
		m.setStatus("No links on this tab", false)
		return
	}
	switch {
	case m.linkIdx < 0 && forward:
		m.linkIdx = 0
	case m.linkIdx < 0:
		m.linkIdx = n - 1
	case forward:
		m.linkIdx = (m.linkIdx + 1) % n
	default:
		m.linkIdx = (m.linkIdx - 1 + n) % n
	}
	l := m.rendered.Links[m.linkIdx]
	m.scrollTo(l.Line)
	m.setStatus(fmt.Sprintf("[%d] %s → %s", l.Index, l.Text, l.Href), false)
}

func (m *Model) followLink() {
	if m.linkIdx < 0 || m.linkIdx >= len(m.rendered.Links) {
		return
	}
	l := m.rendered.Links[m.linkIdx]
	if frag := l.Fragment(); frag != "" {
		m.navigate(frag)
		return
	}
	m.setStatus("External link: "+l.Href, false)
}

// View implements tea.Model
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	title := tabs.Title(m.doc)
	if title == "" {
		title = m.location.Path()
	}
	b.WriteString(m.theme.titleStyle().Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	base := b.String()

	var overlay string
	switch {
	case m.help.IsVisible():
		overlay = m.help.View()
	case m.palette != nil:
		overlay = m.palette.View()
	case m.message != nil:
		overlay = m.message.View()
	default:
		return base
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}

func (m *Model) renderTabBar() string {
	active := m.router.Active()
	var parts []string
	for i, key := range m.router.Keys() {
		label := key
		for _, t := range m.router.Tabs() {
			if t.Key == key && t.Label != "" {
				label = t.Label
				break
			}
		}
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, label)
		}
		parts = append(parts, m.theme.tabStyle(active != nil && active.Key == key).Render(label))
	}
	if len(parts) == 0 {
		return m.theme.hintStyle().Render("(no tabs)")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderStatus() string {
	text := m.location.String()
	if m.status != "" {
		style := m.theme.statusStyle()
		if m.statusErr {
			style = m.theme.errorStyle()
		}
		text += "  " + style.Render(m.status)
	}
	return m.theme.statusStyle().Render(text)
}

func (m *Model) renderFooter() string {
	if m.mode != modeNone {
		return m.input.View()
	}
	hints := "[tab] next tab  [#] go to  [[/]] links  [y] copy  [?] help  [q] quit"
	if m.listVisible() {
		hints = "[j/k] select  [f/g] flag/gallery  [t] tags  [/] search  [,/.] page  [?] help  [q] quit"
	}
	return m.theme.hintStyle().Render(hints)
}
