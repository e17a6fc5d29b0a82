package browse

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/config"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/mode"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/actionlist"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/details"
)

func testServices(t *testing.T) (mode.Services, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cwf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return mode.Services{
		Store:    s,
		Config:   config.Default(),
		Username: "mara",
	}, s
}

func seedAction(t *testing.T, s *store.Store, title string) store.Action {
	t.Helper()
	asset, err := s.CreateAsset(context.Background(), store.Asset{Name: "Bandsaw", Kind: store.KindTool})
	require.NoError(t, err)
	action, err := s.CreateAction(context.Background(), store.Action{
		AssetID: asset.ID,
		Title:   title,
		Status:  store.StatusTodo,
	})
	require.NoError(t, err)
	return action
}

// exec runs a command, dropping slow timer ticks so tests stay fast.
func exec(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

func flatten(msg tea.Msg) []tea.Msg {
	if msg == nil {
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, flatten(exec(c))...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func drive(t *testing.T, m Mode, cmd tea.Cmd) Mode {
	t.Helper()
	queue := flatten(exec(cmd))
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case tea.QuitMsg, mode.ShowToastMsg, mode.QuitRequestMsg:
			continue
		}
		next, cmd := m.Update(msg)
		m = next.(Mode)
		queue = append(queue, flatten(exec(cmd))...)
	}
	return m
}

func TestInitLoadsRows(t *testing.T) {
	svc, s := testServices(t)
	seedAction(t, s, "Sharpen blade")

	m := New(svc).SetSize(100, 30).(Mode)
	m = drive(t, m, m.Init())

	sel, ok := m.list.Selected()
	require.True(t, ok)
	require.Equal(t, "Sharpen blade", sel.Title)
	require.Contains(t, m.View(), "Sharpen blade")
	require.Contains(t, m.View(), "Bandsaw")
}

func TestOpenDetailsAndBack(t *testing.T) {
	svc, s := testServices(t)
	seedAction(t, s, "Sharpen blade")

	m := New(svc).SetSize(100, 30).(Mode)
	m = drive(t, m, m.Init())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, next.(Mode), cmd)
	require.Equal(t, viewDetails, m.view)
	require.Contains(t, m.View(), "Sharpen blade")
	require.Contains(t, m.View(), "Policy")

	next, cmd = m.Update(details.BackMsg{})
	m = drive(t, next.(Mode), cmd)
	require.Equal(t, viewList, m.view)
}

func TestDBChangedRefreshesList(t *testing.T) {
	svc, s := testServices(t)
	seedAction(t, s, "Sharpen blade")

	m := New(svc).SetSize(100, 30).(Mode)
	m = drive(t, m, m.Init())

	// A second client adds a row behind our back.
	writer, err := store.Open(s.Path())
	require.NoError(t, err)
	defer writer.Close()
	_, err = writer.CreateAction(context.Background(), store.Action{Title: "Order filters", Status: store.StatusTodo})
	require.NoError(t, err)

	next, cmd := m.Update(mode.DBChangedMsg{})
	m = drive(t, next.(Mode), cmd)
	require.Contains(t, m.View(), "Order filters")
}

func TestDBChangedReloadsOpenAction(t *testing.T) {
	svc, s := testServices(t)
	action := seedAction(t, s, "Sharpen blade")

	m := New(svc).SetSize(100, 30).(Mode)
	m = drive(t, m, m.Init())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, next.(Mode), cmd)

	// Another client fills in the plan while we look at the details.
	writer, err := store.Open(s.Path())
	require.NoError(t, err)
	defer writer.Close()
	err = writer.UpdateField(context.Background(), action.ID,
		store.TextPatch{Field: store.FieldPlan, Value: "replace with carbide"})
	require.NoError(t, err)

	next, cmd = m.Update(mode.DBChangedMsg{})
	m = drive(t, next.(Mode), cmd)

	// The plan field is unfocused, so it adopts the external value.
	require.Equal(t, "replace with carbide", m.details.FieldBuffer(store.FieldPlan))
}

func TestQueryChangeFiltersRows(t *testing.T) {
	svc, s := testServices(t)
	seedAction(t, s, "Sharpen blade")
	_, err := s.CreateAction(context.Background(), store.Action{Title: "Done thing", Status: store.StatusDone})
	require.NoError(t, err)

	m := New(svc).SetSize(100, 30).(Mode)
	m = drive(t, m, m.Init())

	next, cmd := m.Update(actionlist.QueryChangedMsg{Filter: store.Filter{Status: store.StatusDone}})
	m = drive(t, next.(Mode), cmd)

	view := m.View()
	require.Contains(t, view, "Done thing")
	require.NotContains(t, view, "Sharpen blade")
}

func TestCreateActionViaModal(t *testing.T) {
	svc, s := testServices(t)
	seedAction(t, s, "Sharpen blade")

	m := New(svc).SetSize(100, 30).(Mode)
	m = drive(t, m, m.Init())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = drive(t, next.(Mode), cmd)
	require.Contains(t, m.View(), "New action")

	for _, r := range "Order oil" {
		next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = drive(t, next.(Mode), cmd)
	}
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, next.(Mode), cmd)

	require.Contains(t, m.View(), "Order oil")

	actions, err := s.ListActions(context.Background(), store.Filter{Search: "order"})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, store.StatusTodo, actions[0].Status)
}

func TestQuitKey(t *testing.T) {
	svc, _ := testServices(t)
	m := New(svc).SetSize(100, 30).(Mode)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, mode.QuitRequestMsg{}, cmd())
}
