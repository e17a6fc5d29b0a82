package app

import (
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/config"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/mode"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/pubsub"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/shared/toaster"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/watcher"
)

// stubMode records every message it receives.
type stubMode struct {
	dirty bool
	msgs  []tea.Msg
}

func (s *stubMode) Init() tea.Cmd { return nil }

func (s *stubMode) Update(msg tea.Msg) (mode.Mode, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}

func (s *stubMode) View() string { return "stub view" }

func (s *stubMode) SetSize(width, height int) mode.Mode { return s }

func (s *stubMode) Dirty() bool { return s.dirty }

func testModel(t *testing.T, current mode.Mode, events <-chan pubsub.Event[watcher.WatcherEvent]) Model {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cwf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	svc := mode.Services{Store: s, Config: config.Default(), Username: "mara"}
	return New(svc, current, events)
}

func TestViewIncludesStatusBar(t *testing.T) {
	m := testModel(t, &stubMode{}, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)

	view := m.View()
	require.Contains(t, view, "stub view")
	require.Contains(t, view, "@mara")
	require.Contains(t, view, "cwf.db")
}

func TestQuitRequestQuitsWhenClean(t *testing.T) {
	m := testModel(t, &stubMode{dirty: false}, nil)
	next, cmd := m.Update(mode.QuitRequestMsg{})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.False(t, m.quit.IsVisible())
}

func TestQuitRequestGuardsWhenDirty(t *testing.T) {
	m := testModel(t, &stubMode{dirty: true}, nil)
	next, cmd := m.Update(mode.QuitRequestMsg{})
	m = next.(Model)
	require.Nil(t, cmd)
	require.True(t, m.quit.IsVisible())

	// Cancelling keeps the app alive.
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = next.(Model)
	require.Nil(t, cmd)
	require.False(t, m.quit.IsVisible())

	// Confirming quits despite the dirty buffer.
	next, _ = m.Update(mode.QuitRequestMsg{})
	m = next.(Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCtrlCGoesThroughQuitGuard(t *testing.T) {
	m := testModel(t, &stubMode{dirty: true}, nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	require.Nil(t, cmd)
	require.True(t, m.quit.IsVisible())
}

func TestToastShowAndEscDismiss(t *testing.T) {
	m := testModel(t, &stubMode{}, nil)
	next, _ := m.Update(mode.ShowToastMsg{Message: "save failed", Style: toaster.StyleError})
	m = next.(Model)
	require.Contains(t, m.View(), "save failed")

	// Esc consumes the toast before reaching the mode.
	stub := &stubMode{}
	m.current = stub
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	m = next.(Model)
	require.NotContains(t, m.View(), "save failed")
	require.Empty(t, stub.msgs)
}

func TestWatcherEventForwardsDBChanged(t *testing.T) {
	events := make(chan pubsub.Event[watcher.WatcherEvent], 1)
	stub := &stubMode{}
	m := testModel(t, stub, events)

	events <- pubsub.Event[watcher.WatcherEvent]{
		Type:    pubsub.UpdatedEvent,
		Payload: watcher.WatcherEvent{Type: watcher.DBChanged},
	}

	msg := listen(events)()
	require.IsType(t, dbChangedMsg{}, msg)

	next, _ := m.Update(msg)
	m = next.(Model)
	require.Len(t, stub.msgs, 1)
	require.IsType(t, mode.DBChangedMsg{}, stub.msgs[0])
}

func TestWatcherErrorBecomesToast(t *testing.T) {
	events := make(chan pubsub.Event[watcher.WatcherEvent], 1)
	m := testModel(t, &stubMode{}, events)

	events <- pubsub.Event[watcher.WatcherEvent]{
		Type:    pubsub.UpdatedEvent,
		Payload: watcher.WatcherEvent{Type: watcher.WatcherError, Error: errors.New("inotify limit")},
	}

	msg := listen(events)()
	next, _ := m.Update(msg)
	m = next.(Model)
	require.Contains(t, m.View(), "inotify limit")
}

func TestClosedChannelStopsPump(t *testing.T) {
	events := make(chan pubsub.Event[watcher.WatcherEvent])
	close(events)
	require.IsType(t, watchClosedMsg{}, listen(events)())
	require.Nil(t, listen(nil))
}
