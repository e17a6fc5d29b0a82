// Package outdated provides the view shown when the database schema is
// newer than this build supports.
package outdated

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// Model holds the view state.
type Model struct {
	width     int
	height    int
	found     int
	supported int
}

// New creates the view with the schema versions involved.
func New(found, supported int) Model {
	return Model{found: found, supported: supported}
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

// View renders the outdated state.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	versionStyle := lipgloss.NewStyle().Foreground(styles.WarningColor).Bold(true)

	versionMsg := "The database schema version (" +
		versionStyle.Render(strconv.Itoa(m.found)) +
		") is newer than this build supports (" +
		versionStyle.Render(strconv.Itoa(m.supported)) + ")."

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		styles.TitleStyle.Render("This copy of cwf is out of date"),
		"",
		versionMsg,
		"",
		"Another client has migrated the shared database. Upgrade cwf to keep editing.",
		"",
		styles.DimStyle.Render("Press q to quit"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}
