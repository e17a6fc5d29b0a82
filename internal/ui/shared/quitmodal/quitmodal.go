// Package quitmodal provides the quit confirmation modal shown when the
// operator tries to leave with uncommitted edits still pending.
package quitmodal

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// Result indicates the outcome of modal interaction.
type Result int

const (
	ResultNone   Result = iota // modal still open or not visible
	ResultQuit                 // user confirmed quit
	ResultCancel               // user dismissed
)

// Config controls the modal text.
type Config struct {
	Title   string
	Message string
}

// Model is the quit confirmation state.
type Model struct {
	cfg     Config
	visible bool
	// confirm tracks which button has focus; cancel is the safe default.
	confirm bool
	width   int
	height  int
}

// New creates a hidden quit modal.
func New(cfg Config) Model {
	if cfg.Title == "" {
		cfg.Title = "Quit?"
	}
	return Model{cfg: cfg}
}

// Show displays the modal with cancel focused.
func (m *Model) Show() {
	m.visible = true
	m.confirm = false
}

// Hide dismisses the modal.
func (m *Model) Hide() {
	m.visible = false
}

// IsVisible reports whether the modal is displayed.
func (m Model) IsVisible() bool { return m.visible }

// SetSize updates viewport dimensions for overlay centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update processes key input while the modal is visible.
func (m Model) Update(msg tea.Msg) (Model, Result) {
	if !m.visible {
		return m, ResultNone
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, ResultNone
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC:
		m.visible = false
		return m, ResultQuit
	case tea.KeyEscape:
		m.visible = false
		return m, ResultCancel
	case tea.KeyTab, tea.KeyLeft, tea.KeyRight:
		m.confirm = !m.confirm
		return m, ResultNone
	case tea.KeyEnter:
		m.visible = false
		if m.confirm {
			return m, ResultQuit
		}
		return m, ResultCancel
	}

	switch keyMsg.String() {
	case "y":
		m.visible = false
		return m, ResultQuit
	case "n", "q":
		m.visible = false
		return m, ResultCancel
	}
	return m, ResultNone
}

// Overlay renders the modal centered over the given background.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}

	confirmBtn := "[ quit ]"
	cancelBtn := "[ keep editing ]"
	if m.confirm {
		confirmBtn = styles.SelectedRowStyle.Render(confirmBtn)
		cancelBtn = styles.DimStyle.Render(cancelBtn)
	} else {
		confirmBtn = styles.DimStyle.Render(confirmBtn)
		cancelBtn = styles.SelectedRowStyle.Render(cancelBtn)
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(m.cfg.Title))
	b.WriteString("\n\n")
	b.WriteString(m.cfg.Message)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cancelBtn, "  ", confirmBtn))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.HighlightColor).
		Padding(1, 2).
		Render(b.String())

	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
