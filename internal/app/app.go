// Package app is the top-level Bubble Tea program: it hosts the active
// mode, pumps database change notifications in from the watcher, renders
// the status bar and toasts, and guards quitting against unsaved edits.
package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/log"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/mode"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/pubsub"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/shared/quitmodal"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/shared/toaster"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/watcher"
)

type dbChangedMsg struct{}

type watchErrMsg struct{ err error }

type watchClosedMsg struct{}

// dirtier is implemented by modes that can hold uncommitted edits.
type dirtier interface {
	Dirty() bool
}

// Model is the application shell.
type Model struct {
	svc     mode.Services
	current mode.Mode
	toast   toaster.Model
	quit    quitmodal.Model
	events  <-chan pubsub.Event[watcher.WatcherEvent]

	width  int
	height int
}

// New creates the shell around the given mode. events may be nil when no
// watcher is running.
func New(svc mode.Services, current mode.Mode, events <-chan pubsub.Event[watcher.WatcherEvent]) Model {
	return Model{
		svc:     svc,
		current: current,
		toast:   toaster.New(),
		quit: quitmodal.New(quitmodal.Config{
			Title:   "Unsaved changes",
			Message: "A field still has uncommitted edits. Quit anyway?",
		}),
		events: events,
	}
}

// Init starts the mode and the watcher pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.current.Init(), listen(m.events))
}

// Update routes shell-level messages and delegates the rest to the mode.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.current = m.current.SetSize(msg.Width, msg.Height-1)
		m.toast = m.toast.SetWidth(msg.Width)
		m.quit.SetSize(msg.Width, msg.Height)
		return m, nil

	case dbChangedMsg:
		log.Debug(log.CatUI, "database changed externally")
		var cmd tea.Cmd
		m.current, cmd = m.current.Update(mode.DBChangedMsg{})
		return m, tea.Batch(cmd, listen(m.events))

	case watchErrMsg:
		log.Warn(log.CatWatcher, "watch error", "error", msg.err)
		var cmd tea.Cmd
		m.toast, cmd = m.toast.Show("watcher: "+msg.err.Error(), toaster.StyleError)
		return m, tea.Batch(cmd, listen(m.events))

	case watchClosedMsg:
		return m, nil

	case mode.ShowToastMsg:
		var cmd tea.Cmd
		m.toast, cmd = m.toast.Show(msg.Message, msg.Style)
		return m, cmd

	case toaster.HideMsg:
		m.toast, _ = m.toast.Update(msg)
		return m, nil

	case mode.QuitRequestMsg:
		return m.requestQuit()

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.quit.IsVisible() {
		var result quitmodal.Result
		m.quit, result = m.quit.Update(msg)
		if result == quitmodal.ResultQuit {
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.Type == tea.KeyCtrlC {
		return m.requestQuit()
	}

	// Esc first dismisses a lingering error toast.
	if msg.Type == tea.KeyEscape && m.toast.Visible() {
		m.toast = m.toast.Dismiss()
		return m, nil
	}

	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return m, cmd
}

func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if d, ok := m.current.(dirtier); ok && d.Dirty() {
		m.quit.Show()
		return m, nil
	}
	return m, tea.Quit
}

// View renders the mode, the status line, and any overlays.
func (m Model) View() string {
	body := m.current.View()
	if toast := m.toast.View(); toast != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, toast, body)
	}

	out := lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar())
	return m.quit.Overlay(out)
}

func (m Model) statusBar() string {
	left := fmt.Sprintf(" cwf · %s · @%s ", m.svc.Store.Path(), m.svc.Username)
	bar := styles.StatusBarStyle
	if m.width > 0 {
		bar = bar.Width(m.width)
	}
	return bar.Render(left)
}

// listen waits for the next watcher event. Re-armed after each delivery.
func listen(events <-chan pubsub.Event[watcher.WatcherEvent]) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		if ev.Payload.Type == watcher.WatcherError {
			return watchErrMsg{err: ev.Payload.Error}
		}
		return dbChangedMsg{}
	}
}
