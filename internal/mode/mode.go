// Package mode defines the contract between the app shell and its mode
// controllers, plus the shared service container injected into them.
package mode

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/config"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/shared/toaster"
)

// Services carries every dependency a mode needs. Modes receive it
// explicitly instead of importing singletons, so tests can substitute any
// collaborator.
type Services struct {
	Store      *store.Store
	Config     config.Config
	ConfigPath string
	// Username is the current operator, used for first-touch assignment.
	Username string
}

// DBChangedMsg reports that another client wrote the shared database. The
// app shell pumps these in from the watcher; modes refetch and reconcile.
type DBChangedMsg struct{}

// QuitRequestMsg asks the app shell to exit. Modes emit this instead of
// tea.Quit so the shell can confirm when unsaved edits are pending.
type QuitRequestMsg struct{}

// ShowToastMsg asks the app shell to surface a notification.
type ShowToastMsg struct {
	Message string
	Style   toaster.Style
}

// Mode is a full-screen controller the app shell can host.
type Mode interface {
	Init() tea.Cmd
	Update(tea.Msg) (Mode, tea.Cmd)
	View() string
	SetSize(width, height int) Mode
}
