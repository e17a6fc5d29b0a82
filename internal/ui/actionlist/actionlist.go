// Package actionlist renders the browsable list of actions with debounced
// search and a cycling status filter.
package actionlist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/keys"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// SearchDebounce is the quiet period before a search keystroke triggers a
// refetch. Much shorter than the field autosave delay; a list query is cheap.
const SearchDebounce = 250 * time.Millisecond

// QueryChangedMsg asks the parent to refetch with the new filter.
type QueryChangedMsg struct {
	Filter store.Filter
}

type searchDebouncedMsg struct {
	gen int
}

// statusCycle is the f-key rotation. Empty status means no filter.
var statusCycle = []store.Status{"", store.StatusTodo, store.StatusInProgress, store.StatusDone}

// Model is the action list state.
type Model struct {
	actions []store.Action
	assets  map[string]store.Asset

	cursor    int
	filter    store.Filter
	search    textinput.Model
	searching bool
	searchGen int

	width  int
	height int
}

// New creates an empty list.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "search title and fields"
	ti.Prompt = "/ "
	ti.CharLimit = 128
	return Model{search: ti, assets: make(map[string]store.Asset)}
}

// SetActions replaces the rows, keeping the cursor on the previously
// selected action when it survives the refresh.
func (m Model) SetActions(actions []store.Action) Model {
	var selectedID string
	if a, ok := m.Selected(); ok {
		selectedID = a.ID
	}

	m.actions = actions
	m.cursor = 0
	for i, a := range actions {
		if a.ID == selectedID {
			m.cursor = i
			break
		}
	}
	return m
}

// SetAssets indexes assets by ID for row display.
func (m Model) SetAssets(assets []store.Asset) Model {
	idx := make(map[string]store.Asset, len(assets))
	for _, a := range assets {
		idx[a.ID] = a
	}
	m.assets = idx
	return m
}

// Selected returns the action under the cursor.
func (m Model) Selected() (store.Action, bool) {
	if m.cursor < 0 || m.cursor >= len(m.actions) {
		return store.Action{}, false
	}
	return m.actions[m.cursor], true
}

// Filter returns the active query filter.
func (m Model) Filter() store.Filter { return m.filter }

// Searching reports whether the search input owns the keyboard.
func (m Model) Searching() bool { return m.searching }

// SetSize resizes the list.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.search.Width = width - 4
	return m
}

// Update handles navigation, search input, and filter cycling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, keys.Browse.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Browse.Down):
			if m.cursor < len(m.actions)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Browse.Search):
			m.searching = true
			return m, m.search.Focus()
		case key.Matches(msg, keys.Browse.Filter):
			return m.cycleStatus()
		}

	case searchDebouncedMsg:
		if msg.gen != m.searchGen {
			return m, nil
		}
		m.filter.Search = strings.TrimSpace(m.search.Value())
		filter := m.filter
		return m, func() tea.Msg { return QueryChangedMsg{Filter: filter} }
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		if m.filter.Search != "" {
			m.filter.Search = ""
			filter := m.filter
			return m, func() tea.Msg { return QueryChangedMsg{Filter: filter} }
		}
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.searchGen++
		gen := m.searchGen
		return m, func() tea.Msg { return searchDebouncedMsg{gen: gen} }
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}

	// Re-arm the query debounce on every effective keystroke.
	m.searchGen++
	gen := m.searchGen
	return m, tea.Batch(cmd, tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
		return searchDebouncedMsg{gen: gen}
	}))
}

func (m Model) cycleStatus() (Model, tea.Cmd) {
	for i, s := range statusCycle {
		if m.filter.Status == s {
			m.filter.Status = statusCycle[(i+1)%len(statusCycle)]
			break
		}
	}
	filter := m.filter
	return m, func() tea.Msg { return QueryChangedMsg{Filter: filter} }
}

// View renders the search bar, filter line, and rows.
func (m Model) View() string {
	var b strings.Builder

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString(styles.DimStyle.Render(m.filterLabel()))
	b.WriteString("\n\n")

	if len(m.actions) == 0 {
		b.WriteString(styles.DimStyle.Render("no actions match"))
		return b.String()
	}

	visible := m.visibleRange()
	for i := visible[0]; i < visible[1]; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) filterLabel() string {
	status := "all"
	if m.filter.Status != "" {
		status = string(m.filter.Status)
	}
	label := fmt.Sprintf("status: %s", status)
	if m.filter.Search != "" {
		label += fmt.Sprintf("  search: %q", m.filter.Search)
	}
	return label
}

func (m Model) visibleRange() [2]int {
	rows := m.height - 4
	if rows < 1 || rows >= len(m.actions) {
		return [2]int{0, len(m.actions)}
	}
	start := m.cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > len(m.actions) {
		start = len(m.actions) - rows
	}
	return [2]int{start, start + rows}
}

func (m Model) renderRow(i int) string {
	a := m.actions[i]

	assetName := ""
	if asset, ok := m.assets[a.AssetID]; ok {
		assetName = asset.Name
	}

	marker := "  "
	if i == m.cursor {
		marker = "> "
	}
	line := fmt.Sprintf("%s%-12s %-40s %s", marker, statusTag(a.Status), truncate(a.Title, 40), assetName)
	if a.Assignee != "" {
		line += "  @" + a.Assignee
	}

	if i == m.cursor {
		return styles.SelectedRowStyle.Render(line)
	}
	return line
}

func statusTag(s store.Status) string {
	switch s {
	case store.StatusInProgress:
		return "in_progress"
	case store.StatusDone:
		return "done"
	default:
		return "todo"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
