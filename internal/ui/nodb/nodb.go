// Package nodb provides the empty state view shown when no workshop
// database exists yet.
package nodb

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// Model holds the view state.
type Model struct {
	path   string
	width  int
	height int
}

// New creates the view; path is where the database was expected.
func New(path string) Model {
	return Model{path: path}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the empty state.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var content strings.Builder
	content.WriteString(styles.TitleStyle.Render("No workshop database found"))
	content.WriteString("\n\n")
	content.WriteString("Expected a database at " + m.path + ".")
	content.WriteString("\n\n")
	content.WriteString("Try one of these options:")
	content.WriteString("\n\n")
	content.WriteString("  1. Run cwf from the directory that holds .cwf/")
	content.WriteString("\n")
	content.WriteString("  2. Pass the database location: cwf --db /path/to/cwf.db")
	content.WriteString("\n")
	content.WriteString("  3. Run 'cwf init' to create a fresh database and config")
	content.WriteString("\n\n")
	content.WriteString(styles.DimStyle.Render("Press q to quit"))

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content.String())
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}
