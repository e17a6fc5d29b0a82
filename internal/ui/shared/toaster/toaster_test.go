package toaster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShowAndView(t *testing.T) {
	m := New()
	require.False(t, m.Visible())
	require.Empty(t, m.View())

	m, cmd := m.Show("Saved", StyleSuccess)
	require.True(t, m.Visible())
	require.NotNil(t, cmd, "non-error toasts schedule auto-hide")
	require.Contains(t, m.View(), "Saved")
}

func TestErrorToastPersists(t *testing.T) {
	m := New()
	m, cmd := m.Show("policy: save failed, changes kept", StyleError)
	require.Nil(t, cmd, "error toasts do not auto-hide")
	require.Contains(t, m.View(), "save failed")
	require.Contains(t, m.View(), "dismiss")

	m = m.Dismiss()
	require.False(t, m.Visible())
}

func TestStaleHideIgnored(t *testing.T) {
	m := New()
	m, _ = m.Show("first", StyleInfo)
	m, _ = m.Show("second", StyleInfo)

	// The first toast's timer must not hide the second toast.
	m, _ = m.Update(HideMsg{Gen: 1})
	require.True(t, m.Visible())

	m, _ = m.Update(HideMsg{Gen: 2})
	require.False(t, m.Visible())
}
