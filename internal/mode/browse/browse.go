// Package browse is the main mode: the action list with a drill-down into
// the per-action details editor.
package browse

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/autosave"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/keys"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/log"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/mode"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/actionlist"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/details"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/modals/newaction"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/shared/toaster"
)

const queryTimeout = 10 * time.Second

type view int

const (
	viewList view = iota
	viewDetails
)

type actionCreatedMsg struct {
	action store.Action
	err    error
}

type actionsLoadedMsg struct {
	actions []store.Action
	err     error
}

type assetsLoadedMsg struct {
	assets []store.Asset
	err    error
}

// Mode is the browse controller.
type Mode struct {
	svc mode.Services

	view    view
	list    actionlist.Model
	details details.Model
	create  newaction.Model

	width  int
	height int
}

// New creates the browse mode.
func New(svc mode.Services) Mode {
	return Mode{
		svc:    svc,
		list:   actionlist.New(),
		create: newaction.New(nil),
	}
}

// Init loads the initial rows.
func (m Mode) Init() tea.Cmd {
	return tea.Batch(
		fetchActions(m.svc.Store, m.list.Filter()),
		fetchAssets(m.svc.Store),
	)
}

// SetSize resizes whichever surface is active.
func (m Mode) SetSize(width, height int) mode.Mode {
	m.width = width
	m.height = height
	m.list = m.list.SetSize(width, height)
	m.create.SetSize(width, height)
	if m.view == viewDetails {
		m.details = m.details.SetSize(width, height)
	}
	return m
}

// Update routes messages to the active surface.
func (m Mode) Update(msg tea.Msg) (mode.Mode, tea.Cmd) {
	switch msg := msg.(type) {
	case actionsLoadedMsg:
		if msg.err != nil {
			log.Error(log.CatUI, "loading actions failed", "error", msg.err)
			return m, toastCmd("loading actions failed: "+msg.err.Error(), toaster.StyleError)
		}
		m.list = m.list.SetActions(msg.actions)
		return m, nil

	case assetsLoadedMsg:
		if msg.err != nil {
			log.Error(log.CatUI, "loading assets failed", "error", msg.err)
			return m, nil
		}
		m.list = m.list.SetAssets(msg.assets)
		m.create = m.create.SetAssets(msg.assets)
		return m, nil

	case actionCreatedMsg:
		if msg.err != nil {
			log.Error(log.CatUI, "creating action failed", "error", msg.err)
			return m, toastCmd("creating action failed: "+msg.err.Error(), toaster.StyleError)
		}
		return m, tea.Batch(
			fetchActions(m.svc.Store, m.list.Filter()),
			toastCmd("created "+msg.action.Title, toaster.StyleSuccess),
		)

	case actionlist.QueryChangedMsg:
		return m, fetchActions(m.svc.Store, msg.Filter)

	case mode.DBChangedMsg:
		// Another client wrote the database. Refetch the list, and when the
		// details surface is open reload its action so the editors can
		// reconcile without clobbering focused buffers.
		cmds := []tea.Cmd{
			fetchActions(m.svc.Store, m.list.Filter()),
			fetchAssets(m.svc.Store),
		}
		if m.view == viewDetails {
			cmds = append(cmds, fetchAction(m.svc.Store, m.details.Action().ID))
		}
		return m, tea.Batch(cmds...)

	case details.ActionRefreshedMsg:
		if m.view == viewDetails {
			var cmd tea.Cmd
			m.details, cmd = m.details.Update(msg)
			return m, cmd
		}
		return m, nil

	case details.BackMsg:
		m.view = viewList
		// Pick up whatever the editors committed while we were away.
		return m, fetchActions(m.svc.Store, m.list.Filter())

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.delegate(msg)
}

func (m Mode) updateKey(msg tea.KeyMsg) (mode.Mode, tea.Cmd) {
	if m.create.IsVisible() {
		var cmd tea.Cmd
		var result newaction.Result
		m.create, cmd, result = m.create.Update(msg)
		if result == newaction.ResultSubmit {
			return m, createAction(m.svc.Store, store.Action{
				Title:   m.create.Title(),
				AssetID: m.create.AssetID(),
				Status:  store.StatusTodo,
			})
		}
		return m, cmd
	}

	if m.view == viewList && !m.list.Searching() {
		switch {
		case key.Matches(msg, keys.Browse.Quit):
			return m, func() tea.Msg { return mode.QuitRequestMsg{} }
		case key.Matches(msg, keys.Browse.Refresh):
			return m, tea.Batch(
				fetchActions(m.svc.Store, m.list.Filter()),
				fetchAssets(m.svc.Store),
			)
		case key.Matches(msg, keys.Browse.Open):
			return m.openDetails()
		case key.Matches(msg, keys.Browse.New):
			m.create.SetSize(m.width, m.height)
			return m, m.create.Show()
		}
	}
	return m.delegate(msg)
}

func (m Mode) delegate(msg tea.Msg) (mode.Mode, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == viewDetails {
		m.details, cmd = m.details.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Mode) openDetails() (mode.Mode, tea.Cmd) {
	action, ok := m.list.Selected()
	if !ok {
		return m, nil
	}

	cfg := autosave.Config{
		Delay:       m.svc.Config.Autosave.Delay(),
		BlurGrace:   m.svc.Config.Autosave.BlurGrace(),
		SavedLinger: m.svc.Config.Autosave.SavedLinger(),
	}
	m.view = viewDetails
	m.details = details.New(m.svc.Store, m.svc.Username, cfg, action).SetSize(m.width, m.height)
	return m, m.details.Init()
}

// Dirty reports whether the open details surface holds uncommitted edits.
func (m Mode) Dirty() bool {
	return m.view == viewDetails && m.details.Dirty()
}

// View renders the active surface, with the create modal on top when open.
func (m Mode) View() string {
	bg := m.list.View()
	if m.view == viewDetails {
		bg = m.details.View()
	}
	return m.create.Overlay(bg)
}

func toastCmd(message string, style toaster.Style) tea.Cmd {
	return func() tea.Msg {
		return mode.ShowToastMsg{Message: message, Style: style}
	}
}

func fetchActions(s *store.Store, f store.Filter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		actions, err := s.ListActions(ctx, f)
		return actionsLoadedMsg{actions: actions, err: err}
	}
}

func fetchAssets(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		assets, err := s.ListAssets(ctx)
		return assetsLoadedMsg{assets: assets, err: err}
	}
}

func createAction(s *store.Store, a store.Action) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		created, err := s.CreateAction(ctx, a)
		return actionCreatedMsg{action: created, err: err}
	}
}

func fetchAction(s *store.Store, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		action, err := s.GetAction(ctx, id)
		if err != nil {
			log.Warn(log.CatUI, "reloading action failed", "id", id, "error", err)
			return nil
		}
		return details.ActionRefreshedMsg{Action: action}
	}
}
