package responses

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"

	"github.com/spotus/spotus_viewer/pkg/model"
)

// Styles used by the list view.
type Styles struct {
	Summary  lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Flagged  lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultStyles returns the list view's default palette.
func DefaultStyles() Styles {
	return Styles{
		Summary:  lipgloss.NewStyle().Bold(true),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"}),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}),
		Flagged:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#50FA7B"}),
		Failure:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}),
		Notice:   lipgloss.NewStyle().Italic(true),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}),
	}
}

// markdown renders field values, cached per width.
type markdown struct {
	style string
	width int
	r     *glamour.TermRenderer
}

func newMarkdown(style string, width int) *markdown {
	if style == "" {
		style = "dark"
	}
	m := &markdown{style: style, width: width}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(20, width)),
	)
	if err == nil {
		m.r = r
	}
	return m
}

func (m *markdown) render(src string) string {
	if m == nil || m.r == nil {
		return src
	}
	out, err := m.r.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}

var embedPolicy = bluemonday.StrictPolicy()

// EmbedText reduces an oEmbed HTML fragment to displayable text. Fragments
// with no text (an iframe, say) fall back to the data URL.
func EmbedText(fragment, dataURL string) string {
	text := strings.Join(strings.Fields(html.UnescapeString(embedPolicy.Sanitize(fragment))), " ")
	if text == "" {
		return "[embedded content] " + dataURL
	}
	return text
}

// SummaryLine formats the pagination summary.
func SummaryLine(s Summary) string {
	if s.Empty() {
		return "No responses"
	}
	return fmt.Sprintf("Showing %d - %d of %d responses (page %d of %d)", s.First, s.Last, s.Total, s.Page, s.Pages)
}

func check(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}

// Lines renders the list at the given width.
func (c *Controller) Lines(width int, st Styles) []string {
	if c.render == nil || c.render.width != width {
		c.render = newMarkdown(c.style, width)
	}
	var out []string
	add := func(s string) { out = append(out, strings.Split(s, "\n")...) }

	summary := SummaryLine(c.Summary())
	if c.loading {
		summary += st.Muted.Render("  loading…")
	}
	add(st.Summary.Render(summary))

	var nav []string
	if c.hasPrev {
		nav = append(nav, "[‹ prev]")
	}
	if c.hasNext {
		nav = append(nav, "[next ›]")
	}
	search := c.search
	if search == "" {
		search = "—"
	}
	add(st.Muted.Render(fmt.Sprintf("Filter: %s · Search: %s · Page size: %d · Inline data: %s %s",
		c.state.Flag, search, c.state.PageSize, onOff(c.inline), strings.Join(nav, " "))))

	if c.anyEditable() {
		add(fmt.Sprintf("%s Flag all  %s Gallery all", check(c.flagAll), check(c.galleryAll)))
	}
	if text, isErr := c.Notice(); text != "" {
		if isErr {
			add(st.Error.Render(text))
		} else {
			add(st.Notice.Render(text))
		}
	}
	add(st.Muted.Render(strings.Repeat("─", max(10, min(width, 80)))))

	for i, r := range c.records {
		out = append(out, c.recordLines(i, r, st)...)
		out = append(out, "")
	}
	return out
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (c *Controller) anyEditable() bool {
	for _, r := range c.records {
		if r.EditAccess() {
			return true
		}
	}
	return false
}

func (c *Controller) recordLines(i int, r model.ResponseRecord, st Styles) []string {
	var out []string
	add := func(s string) { out = append(out, strings.Split(s, "\n")...) }

	marker := "  "
	head := st.Header
	if i == c.cursor {
		marker = "▸ "
		head = st.Selected
	}
	header := fmt.Sprintf("%s#%d  From: %s  %s", marker, r.ID, r.Author(), r.Datetime)
	if r.Flagged() {
		header += st.Flagged.Render("  ⚑ flagged")
	}
	add(head.Render(header))
	if c.collapsed[r.ID] {
		return out
	}

	links := []string{"edit " + r.EditPath()}
	if r.Messageable() {
		msg := "✉ message author"
		switch c.messages[r.ID] {
		case MessageSuccess:
			msg = st.Success.Render(msg + " (success)")
		case MessageFailure:
			msg = st.Failure.Render(msg + " (failure)")
		case MessagePending:
			msg += " (sending)"
		}
		links = append(links, msg)
	}
	add("    " + st.Muted.Render(strings.Join(links, " · ")))
	if r.Data != "" {
		add("    Data: " + r.Data)
	}

	for _, v := range r.Values {
		add("    " + st.Muted.Render(v.Field+":"))
		for _, l := range strings.Split(c.render.render(v.Value), "\n") {
			add("    " + l)
		}
	}

	if r.Edited() {
		note := fmt.Sprintf("    edited by %s at %s", r.EditUser, r.EditDatetime)
		if r.EditAccess() {
			note += " · revert " + r.RevertPath()
		}
		add(st.Muted.Render(note))
	}

	if r.EditAccess() {
		add(fmt.Sprintf("    %s flag  %s gallery  tags: %s", check(r.Flagged()), check(r.InGallery()), c.tagDrafts[r.ID]))
	}

	if c.inline && r.Data != "" {
		if frag, ok := c.embeds[r.Data]; ok {
			add("    " + EmbedText(frag, r.Data))
		} else {
			add("    " + st.Muted.Render("loading embed…"))
		}
	}
	return out
}
