// Package details renders a single action with its editable rich-text
// fields. Each field runs its own autosave machine; this model routes
// keystrokes, timer callbacks, and commit results to the right one.
package details

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/autosave"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/keys"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/log"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// BackMsg asks the parent to leave the details surface.
type BackMsg struct{}

// ActionRefreshedMsg carries a freshly loaded action, either after our own
// commit or after another client wrote the database.
type ActionRefreshedMsg struct {
	Action store.Action
}

var fieldLabels = map[string]string{
	store.FieldPolicy:       "Policy",
	store.FieldPlan:         "Plan",
	store.FieldObservations: "Observations",
}

// Model is the details surface.
type Model struct {
	persister Persister
	username  string
	cfg       autosave.Config

	action  store.Action
	editors []fieldEditor
	focus   int

	width  int
	height int
}

// New builds a details surface for the given action with the first field
// focused for immediate typing.
func New(p Persister, username string, cfg autosave.Config, action store.Action) Model {
	m := Model{
		persister: p,
		username:  username,
		cfg:       cfg,
		action:    action,
		focus:     0,
	}
	for _, f := range store.EditableFields() {
		id := autosave.FieldID{ItemID: action.ID, Field: f}
		m.editors = append(m.editors, newFieldEditor(id, fieldLabels[f], action.Field(f), cfg))
	}
	m.editors[0].machine.Apply(autosave.FocusGained{})
	m.editors[0].input.Focus()
	return m
}

// Init starts the focused textarea's cursor blink.
func (m Model) Init() tea.Cmd {
	if m.focus >= 0 {
		return m.editors[m.focus].input.Focus()
	}
	return nil
}

// Action returns the action the surface is showing.
func (m Model) Action() store.Action { return m.action }

// Dirty reports whether any field holds uncommitted edits.
func (m Model) Dirty() bool {
	for i := range m.editors {
		if m.editors[i].machine.Dirty() {
			return true
		}
	}
	return false
}

// FieldState exposes a field's save state, used by tests and the status bar.
func (m Model) FieldState(field string) autosave.SaveState {
	for i := range m.editors {
		if m.editors[i].machine.ID().Field == field {
			return m.editors[i].machine.State()
		}
	}
	return autosave.Idle
}

// FieldBuffer exposes a field's buffer contents.
func (m Model) FieldBuffer(field string) string {
	for i := range m.editors {
		if m.editors[i].machine.ID().Field == field {
			return m.editors[i].machine.Buffer()
		}
	}
	return ""
}

// SetSize resizes the surface and its textareas.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	fieldHeight := (height - 6) / len(m.editors)
	if fieldHeight < 3 {
		fieldHeight = 3
	}
	for i := range m.editors {
		m.editors[i].input.SetWidth(width - 2)
		m.editors[i].input.SetHeight(fieldHeight - 2)
	}
	return m
}

// Update handles key input, timer callbacks, and commit results.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case debounceFiredMsg:
		if fe := m.editor(msg.id); fe != nil {
			return m, m.dispatch(fe, fe.machine.Apply(autosave.TimerFired{Gen: msg.gen}))
		}

	case blurElapsedMsg:
		if fe := m.editor(msg.id); fe != nil {
			return m, m.dispatch(fe, fe.machine.Apply(autosave.BlurElapsed{Gen: msg.gen}))
		}

	case savedElapsedMsg:
		if fe := m.editor(msg.id); fe != nil {
			return m, m.dispatch(fe, fe.machine.Apply(autosave.SavedElapsed{Gen: msg.gen}))
		}

	case commitDoneMsg:
		fe := m.editor(msg.id)
		if fe == nil {
			return m, nil
		}
		cmd := m.dispatch(fe, fe.machine.Apply(autosave.CommitDone{Gen: msg.gen, Err: msg.err}))
		if msg.err == nil {
			// A commit can bump status or assign the action server-side.
			// Reload so the header and later patches see the new row.
			return m, tea.Batch(cmd, reloadCmd(m.persister, m.action.ID))
		}
		return m, cmd

	case ActionRefreshedMsg:
		return m.applyRefresh(msg.Action)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Details.Back):
		if m.focus >= 0 {
			fe := &m.editors[m.focus]
			fe.input.Blur()
			cmd := m.dispatch(fe, fe.machine.Apply(autosave.FocusLost{}))
			m.focus = -1
			return m, cmd
		}
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, keys.Details.NextField):
		return m.moveFocus(1)

	case key.Matches(msg, keys.Details.PrevField):
		return m.moveFocus(-1)

	case key.Matches(msg, keys.Details.Save):
		var cmds []tea.Cmd
		for i := range m.editors {
			fe := &m.editors[i]
			cmds = append(cmds, m.dispatch(fe, fe.machine.Apply(autosave.ManualSave{})))
		}
		return m, tea.Batch(cmds...)
	}

	if m.focus < 0 {
		return m, nil
	}

	fe := &m.editors[m.focus]
	before := fe.input.Value()
	var taCmd tea.Cmd
	fe.input, taCmd = fe.input.Update(msg)

	if after := fe.input.Value(); after != before {
		return m, tea.Batch(taCmd, m.dispatch(fe, fe.machine.Apply(autosave.Edit{Value: after})))
	}
	return m, taCmd
}

func (m Model) moveFocus(delta int) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.focus >= 0 {
		fe := &m.editors[m.focus]
		fe.input.Blur()
		cmds = append(cmds, m.dispatch(fe, fe.machine.Apply(autosave.FocusLost{})))
		m.focus = (m.focus + delta + len(m.editors)) % len(m.editors)
	} else {
		m.focus = 0
	}

	fe := &m.editors[m.focus]
	cmds = append(cmds, fe.input.Focus())
	cmds = append(cmds, m.dispatch(fe, fe.machine.Apply(autosave.FocusGained{})))
	return m, tea.Batch(cmds...)
}

// applyRefresh reconciles a reloaded action into the editors. Focused
// fields keep the operator's buffer; unfocused fields adopt the new value.
func (m Model) applyRefresh(action store.Action) (Model, tea.Cmd) {
	if action.ID != m.action.ID {
		log.Debug(log.CatUI, "refresh for different action ignored",
			"want", m.action.ID, "got", action.ID)
		return m, nil
	}
	m.action = action

	var cmds []tea.Cmd
	for i := range m.editors {
		fe := &m.editors[i]
		field := fe.machine.ID().Field
		value := action.Field(field)
		cmds = append(cmds, m.dispatch(fe, fe.machine.Apply(autosave.ExternalUpdate{Value: value})))
		if !fe.machine.Focused() {
			fe.input.SetValue(fe.machine.Buffer())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) editor(id autosave.FieldID) *fieldEditor {
	for i := range m.editors {
		if m.editors[i].machine.ID() == id {
			return &m.editors[i]
		}
	}
	return nil
}

// View renders the header and the three field editors.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(m.action.Title))
	b.WriteString("\n")
	meta := fmt.Sprintf("%s  %s", statusBadge(m.action.Status), assigneeLabel(m.action.Assignee))
	b.WriteString(styles.DimStyle.Render(meta))
	b.WriteString("\n\n")

	for i := range m.editors {
		fe := &m.editors[i]
		label := styles.FieldLabelStyle
		if i == m.focus {
			label = styles.FieldLabelFocusedStyle
		}
		line := label.Render(fe.label)
		if ind := indicator(fe.machine); ind != "" {
			line = lipgloss.JoinHorizontal(lipgloss.Top, line, "  ", ind)
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(fe.input.View())
		b.WriteString("\n")
	}
	return b.String()
}

func statusBadge(s store.Status) string {
	switch s {
	case store.StatusInProgress:
		return lipgloss.NewStyle().Foreground(styles.StatusInProgressColor).Render("[in progress]")
	case store.StatusDone:
		return lipgloss.NewStyle().Foreground(styles.StatusDoneColor).Render("[done]")
	default:
		return lipgloss.NewStyle().Foreground(styles.StatusTodoColor).Render("[todo]")
	}
}

func assigneeLabel(assignee string) string {
	if assignee == "" {
		return "unassigned"
	}
	return "@" + assignee
}

func reloadCmd(p Persister, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()
		action, err := p.GetAction(ctx, id)
		if err != nil {
			log.Warn(log.CatUI, "reload after commit failed", "id", id, "error", err)
			return nil
		}
		return ActionRefreshedMsg{Action: action}
	}
}
