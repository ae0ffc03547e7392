package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/spotus/spotus_viewer/pkg/responses"
)

// ══════════════════════════════════════════════════════════════════════════════
// DESIGN TOKENS - Consistent spacing, colors, and visual language
// ══════════════════════════════════════════════════════════════════════════════

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// Chrome heights around the panel viewport
const (
	headerHeight = 2 // title + tab bar
	footerHeight = 2 // status + key hints
)

// ══════════════════════════════════════════════════════════════════════════════
// THEME - Dracula-inspired, with light-terminal fallbacks
// ══════════════════════════════════════════════════════════════════════════════

// Theme carries the palette and the renderer styles are built with
type Theme struct {
	Renderer *lipgloss.Renderer
	Name     string

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
}

// NewTheme builds the theme for a config name ("dark", "light", "notty").
func NewTheme(name string, r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	switch name {
	case "light":
		r.SetHasDarkBackground(false)
	case "dark":
		r.SetHasDarkBackground(true)
	}
	return Theme{
		Renderer:  r,
		Name:      name,
		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#444444", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#44475A"},
		Success:   lipgloss.AdaptiveColor{Light: "#008000", Dark: "#50FA7B"},
		Warning:   lipgloss.AdaptiveColor{Light: "#B35900", Dark: "#FFB86C"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Info:      lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
	}
}

// GlamourStyle maps the theme to a glamour standard style.
func (t Theme) GlamourStyle() string {
	switch t.Name {
	case "light", "notty":
		return t.Name
	default:
		return "dark"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CHROME STYLES - Title, tab bar and status line
// ══════════════════════════════════════════════════════════════════════════════

func (t Theme) titleStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
}

func (t Theme) tabStyle(active bool) lipgloss.Style {
	s := t.Renderer.NewStyle().Padding(0, SpaceXS)
	if active {
		return s.Bold(true).Foreground(t.Primary).Background(t.Highlight).Underline(true)
	}
	return s.Foreground(t.Subtext)
}

func (t Theme) statusStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Secondary)
}

func (t Theme) hintStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Faint(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Bold(true).Foreground(t.Danger)
}

// ListStyles derives the response list palette from the theme.
func (t Theme) ListStyles() responses.Styles {
	n := t.Renderer.NewStyle
	return responses.Styles{
		Summary:  n().Bold(true),
		Header:   n().Bold(true).Foreground(t.Info),
		Selected: n().Bold(true).Foreground(t.Primary),
		Muted:    n().Foreground(t.Secondary),
		Flagged:  n().Foreground(t.Danger),
		Success:  n().Foreground(t.Success),
		Failure:  n().Foreground(t.Danger),
		Notice:   n().Italic(true).Foreground(t.Warning),
		Error:    n().Bold(true).Foreground(t.Danger),
	}
}
