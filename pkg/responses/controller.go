package responses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spotus/spotus_viewer/pkg/api"
	"github.com/spotus/spotus_viewer/pkg/debounce"
	"github.com/spotus/spotus_viewer/pkg/model"
)

// NoticeTTL is how long a transient notice stays on screen.
const NoticeTTL = 5 * time.Second

// Debounce keys.
const (
	searchKey  = "search"
	tagsPrefix = "tags:"
)

// controllerIDs gives each controller the id its messages are tagged with.
var controllerIDs atomic.Uint64

// Service is the subset of the API the controller talks to.
type Service interface {
	ListResponses(ctx context.Context, q api.ListQuery) (*model.ResponsePage, error)
	UpdateResponse(ctx context.Context, id int64, patch api.Patch) error
	OEmbed(ctx context.Context, dataURL string) (string, error)
	SendMessage(ctx context.Context, m api.Message) error
}

// Recorder receives the outcome of every mutation the controller sends.
type Recorder interface {
	RecordMutation(ctx context.Context, responseID int64, field, value string, cause error) error
}

// MessageState mirrors the success/failure state of a record's message link.
type MessageState int

const (
	MessageIdle MessageState = iota
	MessagePending
	MessageSuccess
	MessageFailure
)

func (s MessageState) String() string {
	switch s {
	case MessagePending:
		return "sending"
	case MessageSuccess:
		return "success"
	case MessageFailure:
		return "failure"
	default:
		return ""
	}
}

// Options configures a Controller.
type Options struct {
	// Query is the page URL query the initial flag and search are read from.
	Query    url.Values
	PageSize int
	Delay    time.Duration
	Logger   *slog.Logger
	Recorder Recorder
	Location *Location
	// Send delivers debounced actions to the event loop, normally
	// tea.Program.Send.
	Send func(tea.Msg)
	// Style is the glamour style used for field values.
	Style string
}

// Controller owns the response list's PageState and everything rendered
// from the last accepted page. All methods must be called from the event
// loop; network work is returned as tea.Cmd.
type Controller struct {
	id         uint64
	svc        Service
	assignment int64
	logger     *slog.Logger
	recorder   Recorder
	location   *Location
	send       func(tea.Msg)
	debouncer  *debounce.Debouncer

	state   PageState
	count   int
	hasNext bool
	hasPrev bool
	records []model.ResponseRecord
	loaded  bool
	loading bool
	seq     int

	cursor    int
	collapsed map[int64]bool
	tagDrafts map[int64]string
	messages  map[int64]MessageState

	inline bool
	embeds map[string]string

	flagAll    bool
	galleryAll bool
	search     string

	notice    string
	noticeErr bool
	noticeSeq int

	style  string
	render *markdown
}

// New creates a controller for one assignment. Call Init to issue the
// first fetch.
func New(svc Service, assignment int64, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	q := opts.Query
	if q == nil && opts.Location != nil {
		q = opts.Location.Query()
	}
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	send := opts.Send
	if send == nil {
		send = func(tea.Msg) {}
	}
	state := NewPageState(q, pageSize)
	return &Controller{
		id:         controllerIDs.Add(1),
		svc:        svc,
		assignment: assignment,
		logger:     logger.With("component", "responses", "assignment", assignment),
		recorder:   opts.Recorder,
		location:   opts.Location,
		send:       send,
		debouncer:  debounce.New(opts.Delay),
		state:      state,
		search:     state.Search,
		collapsed:  make(map[int64]bool),
		tagDrafts:  make(map[int64]string),
		messages:   make(map[int64]MessageState),
		embeds:     make(map[string]string),
		style:      opts.Style,
	}
}

// SetSender replaces the function debounced actions are delivered through.
func (c *Controller) SetSender(send func(tea.Msg)) {
	if send != nil {
		c.send = send
	}
}

// Init issues the first fetch.
func (c *Controller) Init() tea.Cmd {
	return c.fetch()
}

// Close drops every pending debounced action.
func (c *Controller) Close() {
	c.debouncer.CancelAll()
}

// envelope tags a message with the controller it belongs to.
type envelope struct {
	owner uint64
}

func (e envelope) ownerID() uint64 { return e.owner }

type ownedMsg interface {
	ownerID() uint64
}

func (c *Controller) tag() envelope { return envelope{owner: c.id} }

// Messages exchanged between commands, timers and Update.
type (
	pageLoadedMsg struct {
		envelope
		seq   int
		state PageState
		page  *model.ResponsePage
		err   error
	}
	patchDoneMsg struct {
		envelope
		id    int64
		field string
		value string
		err   error
	}
	tagsDueMsg struct {
		envelope
		id   int64
		text string
	}
	searchDueMsg struct {
		envelope
		text string
	}
	embedLoadedMsg struct {
		envelope
		url  string
		html string
		err  error
	}
	messageSentMsg struct {
		envelope
		id  int64
		err error
	}
	noticeExpiredMsg struct {
		envelope
		seq int
	}
)

// LocationChangedMsg is emitted when URL sync rewrote the location query.
type LocationChangedMsg struct {
	Location string
}

// fetch issues a read for the current state, tagged with a fresh sequence
// number.
func (c *Controller) fetch() tea.Cmd {
	c.seq++
	c.loading = true
	seq, state, env := c.seq, c.state, c.tag()
	q := api.ListQuery{
		Assignment: c.assignment,
		Page:       state.Page,
		PageSize:   state.PageSize,
		Flag:       state.Flag,
		Search:     state.Search,
	}
	svc := c.svc
	c.logger.Debug("fetch page", "seq", seq, "page", state.Page, "page_size", state.PageSize, "flag", state.Flag.String())

	cmds := []tea.Cmd{func() tea.Msg {
		page, err := svc.ListResponses(context.Background(), q)
		return pageLoadedMsg{envelope: env, seq: seq, state: state, page: page, err: err}
	}}
	if c.location != nil && c.location.Sync(state) {
		loc := c.location.String()
		cmds = append(cmds, func() tea.Msg { return LocationChangedMsg{Location: loc} })
	}
	return tea.Batch(cmds...)
}

// Update handles the controller's own messages. Messages it does not know
// are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if m, ok := msg.(ownedMsg); ok && m.ownerID() != c.id {
		c.logger.Debug("discard message from another controller", "type", fmt.Sprintf("%T", msg))
		return nil
	}
	switch msg := msg.(type) {
	case pageLoadedMsg:
		return c.handlePage(msg)

	case patchDoneMsg:
		c.record(msg.id, msg.field, msg.value, msg.err)
		if msg.err != nil {
			c.logger.Warn("update failed", "response", msg.id, "field", msg.field, "error", msg.err)
			return c.setNotice(fmt.Sprintf("Could not update %s on response #%d: %v", msg.field, msg.id, msg.err), true)
		}
		return nil

	case tagsDueMsg:
		return c.patch(msg.id, model.MutationFieldTags, api.TagsPatch(model.ParseTags(msg.text)), msg.text)

	case searchDueMsg:
		if msg.text == c.state.Search {
			return nil
		}
		c.state.Search = msg.text
		c.state.Page = 1
		return c.fetch()

	case embedLoadedMsg:
		if msg.err != nil {
			c.logger.Warn("embed failed", "url", msg.url, "error", msg.err)
			return nil
		}
		c.embeds[msg.url] = msg.html
		return nil

	case messageSentMsg:
		value := "sent"
		if msg.err != nil {
			c.messages[msg.id] = MessageFailure
			value = "failed"
		} else {
			c.messages[msg.id] = MessageSuccess
		}
		c.record(msg.id, model.MutationFieldMessage, value, msg.err)
		if msg.err != nil {
			return c.setNotice(fmt.Sprintf("Message to response #%d failed: %v", msg.id, msg.err), true)
		}
		return c.setNotice(fmt.Sprintf("Message sent to the author of response #%d", msg.id), false)

	case noticeExpiredMsg:
		if msg.seq == c.noticeSeq {
			c.notice = ""
			c.noticeErr = false
		}
	}
	return nil
}

func (c *Controller) handlePage(msg pageLoadedMsg) tea.Cmd {
	if msg.seq != c.seq || msg.state != c.state {
		c.logger.Debug("discard stale page", "seq", msg.seq, "latest", c.seq)
		return nil
	}
	c.loading = false
	if msg.err != nil {
		var se *api.StatusError
		if errors.As(msg.err, &se) && se.StatusCode == http.StatusNotFound && c.state.Page > 1 {
			c.logger.Debug("page out of range, back to first page", "page", c.state.Page)
			c.state.Page = 1
			return c.fetch()
		}
		c.logger.Warn("fetch failed", "error", msg.err)
		return c.setNotice(fmt.Sprintf("Could not load responses: %v", msg.err), true)
	}

	c.count = msg.page.Count
	if last := max(1, LastPage(c.count, c.state.PageSize)); c.state.Page > last {
		c.logger.Debug("page out of range, clamping", "page", c.state.Page, "last", last)
		c.state.Page = last
		return c.fetch()
	}

	// Every render starts from scratch: controls are rebuilt, never merged.
	c.loaded = true
	c.hasNext = msg.page.HasNext()
	c.hasPrev = msg.page.HasPrevious()
	c.records = make([]model.ResponseRecord, len(msg.page.Results))
	for i, r := range msg.page.Results {
		c.records[i] = r.Clone()
	}
	c.tagDrafts = make(map[int64]string, len(c.records))
	for _, r := range c.records {
		if r.EditAccess() {
			c.tagDrafts[r.ID] = r.TagText()
		}
	}
	c.flagAll, c.galleryAll = false, false
	c.cursor = min(c.cursor, max(0, len(c.records)-1))
	if c.inline {
		return c.loadEmbeds()
	}
	return nil
}

// patch sends one partial update and reports the outcome back to Update.
func (c *Controller) patch(id int64, field string, p api.Patch, value string) tea.Cmd {
	svc, env := c.svc, c.tag()
	return func() tea.Msg {
		err := svc.UpdateResponse(context.Background(), id, p)
		return patchDoneMsg{envelope: env, id: id, field: field, value: value, err: err}
	}
}

func (c *Controller) record(id int64, field, value string, cause error) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordMutation(context.Background(), id, field, value, cause); err != nil {
		c.logger.Warn("audit record failed", "response", id, "error", err)
	}
}

func (c *Controller) setNotice(text string, isErr bool) tea.Cmd {
	c.noticeSeq++
	c.notice = text
	c.noticeErr = isErr
	seq, env := c.noticeSeq, c.tag()
	return tea.Tick(NoticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{envelope: env, seq: seq} })
}

// --- Pagination ---

// LastPage is derived from the last accepted page.
func (c *Controller) LastPage() int { return LastPage(c.count, c.state.PageSize) }

func (c *Controller) gotoPage(page int) tea.Cmd {
	c.state.Page = ClampPage(page, c.LastPage())
	return c.fetch()
}

// FirstPage moves to page 1.
func (c *Controller) FirstPage() tea.Cmd { return c.gotoPage(1) }

// PrevPage moves back one page.
func (c *Controller) PrevPage() tea.Cmd { return c.gotoPage(c.state.Page - 1) }

// NextPage moves forward one page.
func (c *Controller) NextPage() tea.Cmd { return c.gotoPage(c.state.Page + 1) }

// FinalPage moves to the last page.
func (c *Controller) FinalPage() tea.Cmd { return c.gotoPage(c.LastPage()) }

// SelectPage applies page-selector input.
func (c *Controller) SelectPage(input string) tea.Cmd {
	c.state.Page = ParsePageSelect(input, c.LastPage())
	return c.fetch()
}

// SelectPageSize applies page-size selector input and returns to page 1.
func (c *Controller) SelectPageSize(input string) tea.Cmd {
	c.state.PageSize = ParsePageSize(input)
	c.state.Page = 1
	return c.fetch()
}

// SelectFilter applies a filter selector value ("flag", "no-flag", other).
func (c *Controller) SelectFilter(value string) tea.Cmd {
	c.state.Flag = model.ParseFilterValue(value)
	c.state.Page = 1
	return c.fetch()
}

// CycleFilter steps any -> flagged -> unflagged.
func (c *Controller) CycleFilter() tea.Cmd {
	return c.SelectFilter(c.state.Flag.Next().SelectorValue())
}

// Refresh refetches the current state.
func (c *Controller) Refresh() tea.Cmd { return c.fetch() }

// SearchInput records search box text. The refetch happens once the box
// has been idle for the debounce delay.
func (c *Controller) SearchInput(text string) {
	c.search = text
	send, env := c.send, c.tag()
	c.debouncer.Debounce(searchKey, func() { send(searchDueMsg{envelope: env, text: text}) })
}

// --- Mutations ---

func (c *Controller) editable(i int) (*model.ResponseRecord, bool) {
	if i < 0 || i >= len(c.records) || !c.records[i].EditAccess() {
		return nil, false
	}
	return &c.records[i], true
}

// ToggleFlag flips the flag of record i and sends it immediately.
func (c *Controller) ToggleFlag(i int) tea.Cmd {
	r, ok := c.editable(i)
	if !ok {
		return nil
	}
	return c.setFlag(r, !r.Flagged())
}

// ToggleGallery flips the gallery state of record i and sends it immediately.
func (c *Controller) ToggleGallery(i int) tea.Cmd {
	r, ok := c.editable(i)
	if !ok {
		return nil
	}
	return c.setGallery(r, !r.InGallery())
}

func (c *Controller) setFlag(r *model.ResponseRecord, v bool) tea.Cmd {
	r.Flag = &v
	return c.patch(r.ID, model.MutationFieldFlag, api.FlagPatch(v), strconv.FormatBool(v))
}

func (c *Controller) setGallery(r *model.ResponseRecord, v bool) tea.Cmd {
	r.Gallery = &v
	return c.patch(r.ID, model.MutationFieldGallery, api.GalleryPatch(v), strconv.FormatBool(v))
}

// SetFlagAll sets every visible editable record's flag to v, one request
// per record. Only the rendered page is affected.
func (c *Controller) SetFlagAll(v bool) tea.Cmd {
	c.flagAll = v
	var cmds []tea.Cmd
	for i := range c.records {
		if r, ok := c.editable(i); ok {
			cmds = append(cmds, c.setFlag(r, v))
		}
	}
	return tea.Batch(cmds...)
}

// SetGalleryAll is SetFlagAll for the gallery field.
func (c *Controller) SetGalleryAll(v bool) tea.Cmd {
	c.galleryAll = v
	var cmds []tea.Cmd
	for i := range c.records {
		if r, ok := c.editable(i); ok {
			cmds = append(cmds, c.setGallery(r, v))
		}
	}
	return tea.Batch(cmds...)
}

// ToggleFlagAll flips the "flag all" master control.
func (c *Controller) ToggleFlagAll() tea.Cmd { return c.SetFlagAll(!c.flagAll) }

// ToggleGalleryAll flips the "gallery all" master control.
func (c *Controller) ToggleGalleryAll() tea.Cmd { return c.SetGalleryAll(!c.galleryAll) }

// EditTags records tag box text for a record. Only the final text after the
// debounce delay is sent.
func (c *Controller) EditTags(id int64, text string) {
	if _, ok := c.tagDrafts[id]; !ok {
		return
	}
	c.tagDrafts[id] = text
	send, env := c.send, c.tag()
	c.debouncer.Debounce(tagsPrefix+strconv.FormatInt(id, 10), func() {
		send(tagsDueMsg{envelope: env, id: id, text: text})
	})
}

// TagDraft returns the tag box text for a record.
func (c *Controller) TagDraft(id int64) string { return c.tagDrafts[id] }

// ToggleInline switches embedded content on or off. Turning it on fetches
// an embed for every rendered record with a data URL.
func (c *Controller) ToggleInline() tea.Cmd {
	c.inline = !c.inline
	if !c.inline {
		return nil
	}
	return c.loadEmbeds()
}

func (c *Controller) loadEmbeds() tea.Cmd {
	var cmds []tea.Cmd
	seen := make(map[string]bool)
	svc, env := c.svc, c.tag()
	for _, r := range c.records {
		u := r.Data
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		if _, ok := c.embeds[u]; ok {
			continue
		}
		cmds = append(cmds, func() tea.Msg {
			frag, err := svc.OEmbed(context.Background(), u)
			return embedLoadedMsg{envelope: env, url: u, html: frag, err: err}
		})
	}
	return tea.Batch(cmds...)
}

// SendMessage messages the author of record id.
func (c *Controller) SendMessage(id int64, subject, body string) tea.Cmd {
	idx := c.indexOf(id)
	if idx < 0 || !c.records[idx].Messageable() {
		return c.setNotice(fmt.Sprintf("Response #%d cannot be messaged", id), true)
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return c.setNotice("Subject and body are required", true)
	}
	c.messages[id] = MessagePending
	svc := c.svc
	m := api.Message{ResponseID: id, Subject: subject, Body: body}
	env := c.tag()
	return func() tea.Msg {
		return messageSentMsg{envelope: env, id: id, err: svc.SendMessage(context.Background(), m)}
	}
}

func (c *Controller) indexOf(id int64) int {
	for i, r := range c.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// --- Selection ---

// MoveCursor moves the selected record by delta, clamped to the list.
func (c *Controller) MoveCursor(delta int) {
	if len(c.records) == 0 {
		c.cursor = 0
		return
	}
	c.cursor = max(0, min(len(c.records)-1, c.cursor+delta))
}

// Cursor returns the index of the selected record.
func (c *Controller) Cursor() int { return c.cursor }

// Selected returns the selected record.
func (c *Controller) Selected() (model.ResponseRecord, bool) {
	if c.cursor < 0 || c.cursor >= len(c.records) {
		return model.ResponseRecord{}, false
	}
	return c.records[c.cursor], true
}

// ToggleCollapse folds or unfolds record i.
func (c *Controller) ToggleCollapse(i int) {
	if i < 0 || i >= len(c.records) {
		return
	}
	id := c.records[i].ID
	c.collapsed[id] = !c.collapsed[id]
}

// --- Accessors ---

func (c *Controller) State() PageState                   { return c.state }
func (c *Controller) Assignment() int64                  { return c.assignment }
func (c *Controller) Records() []model.ResponseRecord    { return c.records }
func (c *Controller) Summary() Summary                   { return Summarize(c.state, c.count) }
func (c *Controller) PageOptions() []int                 { return PageOptions(c.LastPage()) }
func (c *Controller) HasNext() bool                      { return c.hasNext }
func (c *Controller) HasPrevious() bool                  { return c.hasPrev }
func (c *Controller) Loading() bool                      { return c.loading }
func (c *Controller) Loaded() bool                       { return c.loaded }
func (c *Controller) Inline() bool                       { return c.inline }
func (c *Controller) SearchText() string                 { return c.search }
func (c *Controller) FlagAll() bool                      { return c.flagAll }
func (c *Controller) GalleryAll() bool                   { return c.galleryAll }
func (c *Controller) Collapsed(id int64) bool            { return c.collapsed[id] }
func (c *Controller) MessageState(id int64) MessageState { return c.messages[id] }

// Embed returns the fetched embed fragment for a data URL.
func (c *Controller) Embed(dataURL string) (string, bool) {
	h, ok := c.embeds[dataURL]
	return h, ok
}

// Notice returns the transient notice and whether it reports an error.
func (c *Controller) Notice() (string, bool) { return c.notice, c.noticeErr }
