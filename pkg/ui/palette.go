package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/spotus/spotus_viewer/pkg/tabs"
)

// PaletteModel is the goto-fragment overlay: a fuzzy search over every tab
// and every id'd element inside the panels.
type PaletteModel struct {
	allItems      []AnchorItem
	filteredItems []AnchorItem

	searchInput   textinput.Model
	selectedIndex int

	width  int
	height int
	theme  Theme

	confirmed    bool
	cancelled    bool
	selectedItem *AnchorItem
}

// NewPaletteModel creates a palette over the router's anchors
func NewPaletteModel(anchors []tabs.Anchor, theme Theme) PaletteModel {
	ti := textinput.New()
	ti.Placeholder = "Jump to #fragment..."
	ti.Prompt = "# "
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	items := make([]AnchorItem, len(anchors))
	for i, a := range anchors {
		items[i] = AnchorItem{Anchor: a}
	}
	return PaletteModel{
		allItems:      items,
		filteredItems: items,
		searchInput:   ti,
		theme:         theme,
	}
}

// SetSize updates the palette dimensions
func (m *PaletteModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = max(20, min(50, width-20))
}

// Update handles a key and reports whether it was consumed
func (m *PaletteModel) Update(key string) (handled bool) {
	switch key {
	case "up", "ctrl+p":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
		return true
	case "down", "ctrl+n":
		if m.selectedIndex < len(m.filteredItems)-1 {
			m.selectedIndex++
		}
		return true
	case "enter":
		if m.selectedIndex < len(m.filteredItems) {
			item := m.filteredItems[m.selectedIndex]
			m.selectedItem = &item
			m.confirmed = true
		} else if q := strings.TrimSpace(m.searchInput.Value()); q != "" {
			// Unknown fragments are still navigable; the router decides.
			item := AnchorItem{Anchor: tabs.Anchor{Fragment: tabs.NormalizeFragment(q)}}
			m.selectedItem = &item
			m.confirmed = true
		}
		return true
	case "esc":
		m.cancelled = true
		m.selectedItem = nil
		return true
	case "backspace":
		if v := []rune(m.searchInput.Value()); len(v) > 0 {
			m.searchInput.SetValue(string(v[:len(v)-1]))
			m.filterItems()
		}
		return true
	default:
		if len([]rune(key)) == 1 {
			m.searchInput.SetValue(m.searchInput.Value() + key)
			m.filterItems()
			return true
		}
	}
	return false
}

func (m *PaletteModel) filterItems() {
	query := strings.TrimPrefix(strings.TrimSpace(m.searchInput.Value()), "#")
	m.selectedIndex = 0
	if query == "" {
		m.filteredItems = m.allItems
		return
	}
	matches := fuzzy.FindFrom(query, anchorSource(m.allItems))
	m.filteredItems = make([]AnchorItem, 0, len(matches))
	for _, match := range matches {
		m.filteredItems = append(m.filteredItems, m.allItems[match.Index])
	}
}

// IsConfirmed returns true if the user picked an anchor
func (m PaletteModel) IsConfirmed() bool { return m.confirmed }

// IsCancelled returns true if the user closed the palette
func (m PaletteModel) IsCancelled() bool { return m.cancelled }

// SelectedItem returns the chosen anchor, or nil
func (m PaletteModel) SelectedItem() *AnchorItem { return m.selectedItem }

// ItemCount returns the number of visible matches
func (m PaletteModel) ItemCount() int { return len(m.filteredItems) }

// View renders the palette overlay
func (m PaletteModel) View() string {
	t := m.theme
	boxWidth := max(35, min(70, m.width-10))
	contentWidth := boxWidth - 4

	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Go to fragment"))
	b.WriteString("\n\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	maxRows := max(3, m.height-12)
	start := 0
	if m.selectedIndex >= maxRows {
		start = m.selectedIndex - maxRows + 1
	}
	d := AnchorDelegate{Theme: t, Width: contentWidth}
	if len(m.filteredItems) == 0 {
		b.WriteString(t.hintStyle().Render("No matching anchors. Enter jumps anyway."))
		b.WriteString("\n")
	}
	for i := start; i < len(m.filteredItems) && i < start+maxRows; i++ {
		d.Render(&b, m.filteredItems[i], i == m.selectedIndex)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.hintStyle().Render("[↑/↓] Move  [Enter] Go  [Esc] Cancel"))

	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(b.String())
}
