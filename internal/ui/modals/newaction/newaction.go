// Package newaction provides the modal for creating an action, optionally
// attached to an asset.
package newaction

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// Result indicates the outcome of modal interaction.
type Result int

const (
	ResultNone Result = iota
	ResultSubmit
	ResultCancel
)

// Model is the create-action modal state.
type Model struct {
	title  textinput.Model
	assets []store.Asset
	// assetIdx indexes into assets plus a leading "none" slot.
	assetIdx int
	// onAsset is true when the asset row has focus instead of the title.
	onAsset bool
	visible bool
	width   int
	height  int
}

// New creates a hidden modal over the given assets.
func New(assets []store.Asset) Model {
	ti := textinput.New()
	ti.Placeholder = "action title"
	ti.CharLimit = 200
	return Model{title: ti, assets: assets}
}

// SetAssets replaces the selectable assets.
func (m Model) SetAssets(assets []store.Asset) Model {
	m.assets = assets
	if m.assetIdx > len(assets) {
		m.assetIdx = 0
	}
	return m
}

// Show opens the modal with a cleared title.
func (m *Model) Show() tea.Cmd {
	m.visible = true
	m.onAsset = false
	m.assetIdx = 0
	m.title.SetValue("")
	return m.title.Focus()
}

// Hide dismisses the modal.
func (m *Model) Hide() {
	m.visible = false
	m.title.Blur()
}

// IsVisible reports whether the modal is displayed.
func (m Model) IsVisible() bool { return m.visible }

// SetSize updates viewport dimensions for overlay centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Title returns the entered title, trimmed.
func (m Model) Title() string { return strings.TrimSpace(m.title.Value()) }

// AssetID returns the selected asset ID, empty for none.
func (m Model) AssetID() string {
	if m.assetIdx == 0 || m.assetIdx > len(m.assets) {
		return ""
	}
	return m.assets[m.assetIdx-1].ID
}

// Update processes input while visible. On ResultSubmit the caller reads
// Title and AssetID before the next Show resets them.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd, Result) {
	if !m.visible {
		return m, nil, ResultNone
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, ResultNone
	}

	switch keyMsg.Type {
	case tea.KeyEscape:
		m.Hide()
		return m, nil, ResultCancel
	case tea.KeyEnter:
		if m.Title() == "" {
			return m, nil, ResultNone
		}
		m.visible = false
		m.title.Blur()
		return m, nil, ResultSubmit
	case tea.KeyTab, tea.KeyShiftTab:
		m.onAsset = !m.onAsset
		if m.onAsset {
			m.title.Blur()
			return m, nil, ResultNone
		}
		return m, m.title.Focus(), ResultNone
	case tea.KeyLeft, tea.KeyRight:
		if m.onAsset {
			delta := 1
			if keyMsg.Type == tea.KeyLeft {
				delta = len(m.assets)
			}
			m.assetIdx = (m.assetIdx + delta) % (len(m.assets) + 1)
			return m, nil, ResultNone
		}
	}

	if m.onAsset {
		return m, nil, ResultNone
	}
	var cmd tea.Cmd
	m.title, cmd = m.title.Update(msg)
	return m, cmd, ResultNone
}

// Overlay renders the modal centered over the background.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}

	assetLabel := "(none)"
	if m.assetIdx > 0 && m.assetIdx <= len(m.assets) {
		assetLabel = m.assets[m.assetIdx-1].Name
	}

	titleRow := styles.FieldLabelStyle.Render("Title ") + m.title.View()
	assetStyle := styles.FieldLabelStyle
	if m.onAsset {
		assetStyle = styles.FieldLabelFocusedStyle
	}
	assetRow := assetStyle.Render("Asset ") + "< " + assetLabel + " >"

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("New action"))
	b.WriteString("\n\n")
	b.WriteString(titleRow)
	b.WriteString("\n")
	b.WriteString(assetRow)
	b.WriteString("\n\n")
	b.WriteString(styles.DimStyle.Render("enter create · tab switch row · esc cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.HighlightColor).
		Padding(1, 2).
		Render(b.String())

	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
