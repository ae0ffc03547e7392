package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// messageFields is shared by pointer so huh can write into it while the
// form model is copied around by value.
type messageFields struct {
	subject string
	body    string
}

// MessageFormModel is the modal for messaging a response's author
type MessageFormModel struct {
	form       *huh.Form
	fields     *messageFields
	responseID int64
	author     string
	width      int
	theme      Theme
}

// NewMessageFormModel creates the modal for one response
func NewMessageFormModel(responseID int64, author string, theme Theme) MessageFormModel {
	fields := &messageFields{}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subject").
				CharLimit(255).
				Validate(required("subject")).
				Value(&fields.subject),
			huh.NewText().
				Title("Body").
				CharLimit(2000).
				Validate(required("body")).
				Value(&fields.body),
		),
	).WithShowHelp(true)
	if theme.Name == "notty" {
		form = form.WithTheme(huh.ThemeBase())
	} else {
		form = form.WithTheme(huh.ThemeDracula())
	}

	return MessageFormModel{
		form:       form,
		fields:     fields,
		responseID: responseID,
		author:     author,
		theme:      theme,
	}
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// Init implements tea.Model
func (m MessageFormModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m MessageFormModel) Update(msg tea.Msg) (MessageFormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.form.State = huh.StateAborted
		return m, nil
	}
	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}
	return m, cmd
}

// Submitted reports whether the form completed
func (m MessageFormModel) Submitted() bool {
	return m.form.State == huh.StateCompleted
}

// Cancelled reports whether the user aborted the form
func (m MessageFormModel) Cancelled() bool {
	return m.form.State == huh.StateAborted
}

// ResponseID is the response whose author is being messaged
func (m MessageFormModel) ResponseID() int64 { return m.responseID }

// Values returns the subject and body entered
func (m MessageFormModel) Values() (subject, body string) {
	return m.fields.subject, m.fields.body
}

// SetSize sets the modal width
func (m *MessageFormModel) SetSize(width int) {
	m.width = width
	m.form = m.form.WithWidth(m.boxWidth() - 6)
}

func (m MessageFormModel) boxWidth() int {
	width := 64
	if m.width > 0 && m.width < 74 {
		width = m.width - 10
	}
	return width
}

// View implements tea.Model
func (m MessageFormModel) View() string {
	var b strings.Builder
	width := m.boxWidth()

	titleStyle := m.theme.Renderer.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary).
		Width(width - 4).
		Align(lipgloss.Center)
	b.WriteString(titleStyle.Render(fmt.Sprintf("Message %s (response #%d)", m.author, m.responseID)))
	b.WriteString("\n\n")
	b.WriteString(m.form.View())
	b.WriteString("\n")

	hintStyle := m.theme.Renderer.NewStyle().Faint(true)
	b.WriteString(hintStyle.Render("[Enter] Next/Send  [Esc] Cancel"))

	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 2).
		Width(width)

	return boxStyle.Render(b.String())
}
