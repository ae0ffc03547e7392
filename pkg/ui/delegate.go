package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// AnchorDelegate renders palette rows: fragment, label and owning tab
type AnchorDelegate struct {
	Theme Theme
	Width int
}

func (d AnchorDelegate) Height() int {
	return 1
}

func (d AnchorDelegate) Render(w io.Writer, item AnchorItem, selected bool) {
	fragWidth := 24
	descWidth := 16
	// Fixed widths: marker(2) + fragment + gaps(2) + description
	available := d.Width - 2 - fragWidth - descWidth - 4
	if available < 10 {
		available = 10
	}

	marker := "  "
	base := d.Theme.Renderer.NewStyle().Foreground(d.Theme.Subtext)
	if selected {
		marker = "▸ "
		base = base.Foreground(d.Theme.Primary).Bold(true)
	}

	frag := runewidth.FillRight(runewidth.Truncate(item.Anchor.Fragment, fragWidth, "…"), fragWidth)
	label := runewidth.Truncate(item.Anchor.Label, available, "…")
	desc := d.Theme.Renderer.NewStyle().Foreground(d.Theme.Secondary).
		Render(runewidth.Truncate(item.Description(), descWidth, "…"))

	row := lipgloss.JoinHorizontal(lipgloss.Left, base.Render(marker+frag), "  ", base.Render(label), "  ", desc)
	fmt.Fprint(w, row)
}
