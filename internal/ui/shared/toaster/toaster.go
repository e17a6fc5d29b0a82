// Package toaster renders transient notifications above the active view.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// Style selects the toast appearance.
type Style int

const (
	StyleInfo Style = iota
	StyleSuccess
	StyleError
)

// DefaultDuration is how long a toast stays visible. Error toasts persist
// until dismissed or replaced, so a failed save cannot scroll away unseen.
const DefaultDuration = 3 * time.Second

// HideMsg expires a toast. Stale generations are ignored so a newer toast
// is not cut short by an older timer.
type HideMsg struct{ Gen int }

// Model is the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	gen     int
	width   int
}

// New creates an empty toaster.
func New() Model {
	return Model{}
}

// SetWidth sets the render width.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// Show displays a toast. Non-error toasts auto-hide after DefaultDuration.
func (m Model) Show(message string, style Style) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.gen++

	if style == StyleError {
		return m, nil
	}
	gen := m.gen
	return m, tea.Tick(DefaultDuration, func(time.Time) tea.Msg {
		return HideMsg{Gen: gen}
	})
}

// Dismiss hides the toast immediately.
func (m Model) Dismiss() Model {
	m.visible = false
	return m
}

// Update handles expiry messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if hide, ok := msg.(HideMsg); ok && hide.Gen == m.gen {
		m.visible = false
	}
	return m, nil
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool { return m.visible }

// Message returns the current toast text.
func (m Model) Message() string { return m.message }

// View renders the toast line, or an empty string when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	var base lipgloss.Style
	switch m.style {
	case StyleSuccess:
		base = lipgloss.NewStyle().Foreground(styles.SuccessColor)
	case StyleError:
		base = lipgloss.NewStyle().Foreground(styles.ErrorColor).Bold(true)
	default:
		base = lipgloss.NewStyle().Foreground(styles.HighlightColor)
	}

	text := m.message
	if m.style == StyleError {
		text += "  [esc to dismiss]"
	}
	if m.width > 0 {
		base = base.MaxWidth(m.width)
	}
	return base.Render(text)
}
