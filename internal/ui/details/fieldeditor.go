package details

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/autosave"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/mode"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/store"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/shared/toaster"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/ui/styles"
)

// Persister is the slice of the store the editors need. *store.Store
// satisfies it; tests substitute fakes.
type Persister interface {
	GetAction(ctx context.Context, id string) (store.Action, error)
	UpdateField(ctx context.Context, id string, patches ...store.Patch) error
}

const commitTimeout = 10 * time.Second

// Timer and commit callbacks carry the field identity plus the machine's
// generation, so stale callbacks route to the right editor and die there.
type debounceFiredMsg struct {
	id  autosave.FieldID
	gen uint64
}

type blurElapsedMsg struct {
	id  autosave.FieldID
	gen uint64
}

type savedElapsedMsg struct {
	id  autosave.FieldID
	gen uint64
}

type commitDoneMsg struct {
	id  autosave.FieldID
	gen uint64
	err *autosave.CommitError
}

// fieldEditor pairs one autosave machine with its textarea.
type fieldEditor struct {
	machine *autosave.Editor
	input   textarea.Model
	label   string
}

func newFieldEditor(id autosave.FieldID, label, committed string, cfg autosave.Config) fieldEditor {
	ta := textarea.New()
	ta.Placeholder = "Start typing..."
	ta.SetValue(committed)
	ta.ShowLineNumbers = false
	ta.Blur()

	return fieldEditor{
		machine: autosave.NewEditor(id, committed, cfg),
		input:   ta,
		label:   label,
	}
}

// dispatch turns machine commands into Bubble Tea commands. The commit
// command captures the action's assignee at issue time so first-touch
// auto-assignment rides in the same update as the content.
func (m Model) dispatch(fe *fieldEditor, cmds []autosave.Command) tea.Cmd {
	if len(cmds) == 0 {
		return nil
	}

	id := fe.machine.ID()
	out := make([]tea.Cmd, 0, len(cmds))
	for _, c := range cmds {
		switch c := c.(type) {
		case autosave.StartTimer:
			gen := c.Gen
			out = append(out, tea.Tick(c.Delay, func(time.Time) tea.Msg {
				return debounceFiredMsg{id: id, gen: gen}
			}))
		case autosave.StartBlurTimer:
			gen := c.Gen
			out = append(out, tea.Tick(c.Delay, func(time.Time) tea.Msg {
				return blurElapsedMsg{id: id, gen: gen}
			}))
		case autosave.StartSavedTimer:
			gen := c.Gen
			out = append(out, tea.Tick(c.Delay, func(time.Time) tea.Msg {
				return savedElapsedMsg{id: id, gen: gen}
			}))
		case autosave.IssueCommit:
			out = append(out, commitCmd(m.persister, m.username, m.action, id, c.Gen, c.Value))
		case autosave.Notify:
			msg := c.Message
			style := toaster.StyleError
			if c.Kind == autosave.NotifySuccess {
				style = toaster.StyleSuccess
			}
			out = append(out, func() tea.Msg {
				return mode.ShowToastMsg{Message: msg, Style: style}
			})
		}
	}
	return tea.Batch(out...)
}

func commitCmd(p Persister, username string, act store.Action, id autosave.FieldID, gen uint64, value string) tea.Cmd {
	return func() tea.Msg {
		patches := []store.Patch{store.TextPatch{Field: id.Field, Value: value}}
		if act.Assignee == "" && username != "" && autosave.HasContent(value) {
			patches = append(patches, store.AssignPatch{Assignee: username})
		}

		ctx, cancel := context.WithTimeout(context.Background(), commitTimeout)
		defer cancel()

		if err := p.UpdateField(ctx, id.ItemID, patches...); err != nil {
			if errors.Is(err, store.ErrValidation) {
				return commitDoneMsg{id: id, gen: gen, err: autosave.NewRejectedError(err)}
			}
			return commitDoneMsg{id: id, gen: gen, err: autosave.NewTransportError(err)}
		}
		return commitDoneMsg{id: id, gen: gen}
	}
}

// indicator renders the per-field save state label.
func indicator(e *autosave.Editor) string {
	switch e.State() {
	case autosave.PendingDebounce:
		return styles.IndicatorUnsavedStyle.Render("● unsaved")
	case autosave.Saving:
		return styles.IndicatorSavingStyle.Render("… saving")
	case autosave.Saved:
		return styles.IndicatorSavedStyle.Render("✓ saved")
	case autosave.Failed:
		return styles.IndicatorFailedStyle.Render("! save failed")
	default:
		if e.Dirty() {
			return styles.IndicatorUnsavedStyle.Render("● unsaved")
		}
		return ""
	}
}
