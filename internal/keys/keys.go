// Package keys defines the keybindings for every surface.
package keys

import "github.com/charmbracelet/bubbles/key"

// BrowseKeyMap covers the combined actions/assets list.
type BrowseKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	New     key.Binding
	Search  key.Binding
	Filter  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// Browse is the list-surface keymap.
var Browse = BrowseKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open details"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new action"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "cycle status filter"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// DetailsKeyMap covers the item detail editing surface.
type DetailsKeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	Save      key.Binding
	Back      key.Binding
}

// Details is the detail-surface keymap. Esc leaves the field first, then
// the surface; ctrl+s is the manual save shortcut.
var Details = DetailsKeyMap{
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save now"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}
