// Package autosave implements the per-field auto-save state machine behind
// the item detail editors.
//
// Every editable rich-text field gets its own Editor. Keystrokes mark the
// buffer dirty and re-arm a fixed-delay debounce timer; when the timer
// expires uninterrupted the buffer is committed to the store. Focus state
// arbitrates conflicts with externally-arrived updates: while the user is
// typing, a concurrent refetch may move the committed baseline but must
// never clobber the buffer.
//
// The machine is purely event-driven (see events.go). It owns no timers and
// performs no I/O; instead it returns Command values that the hosting UI
// executes via tea.Cmd. Timer and commit commands carry generation counters
// so stale callbacks are discarded rather than raced against.
package autosave

import (
	"time"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/log"
)

// SaveState is the user-visible lifecycle of a field's unsaved content.
type SaveState int

const (
	// Idle: buffer matches the committed value, nothing scheduled.
	Idle SaveState = iota
	// PendingDebounce: an edit happened and the debounce timer is armed.
	PendingDebounce
	// Saving: a commit is in flight. At most one per field, ever.
	Saving
	// Saved: a commit just succeeded; lingers briefly before Idle.
	Saved
	// Failed: the last commit failed; the buffer is preserved and the
	// machine waits for another edit or a manual retry.
	Failed
)

// String returns the indicator label for the state.
func (s SaveState) String() string {
	switch s {
	case PendingDebounce:
		return "unsaved"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Default timings. Both are configuration, not invariants.
const (
	DefaultDelay       = 5 * time.Second
	DefaultBlurGrace   = 100 * time.Millisecond
	DefaultSavedLinger = 1500 * time.Millisecond
)

// Config carries the editor timings.
type Config struct {
	// Delay is the debounce quiet period before a commit fires.
	Delay time.Duration
	// BlurGrace is how long after losing focus the field still counts as
	// focused, tolerating focus moving between controls of one editor.
	BlurGrace time.Duration
	// SavedLinger is how long the Saved indicator shows before Idle.
	SavedLinger time.Duration
}

func (c *Config) defaults() {
	if c.Delay <= 0 {
		c.Delay = DefaultDelay
	}
	if c.BlurGrace <= 0 {
		c.BlurGrace = DefaultBlurGrace
	}
	if c.SavedLinger <= 0 {
		c.SavedLinger = DefaultSavedLinger
	}
}

// FieldID identifies one editable field of one item.
type FieldID struct {
	ItemID string
	Field  string
}

// Editor is the state machine for a single field. Not safe for concurrent
// use; it is designed to be driven from a single UI loop.
type Editor struct {
	cfg Config
	id  FieldID

	committed string
	buffer    string
	focused   bool
	state     SaveState

	// Generation counters invalidate outstanding timer/commit callbacks.
	timerGen  uint64
	blurGen   uint64
	savedGen  uint64
	commitGen uint64

	inflight bool
	// inflightRaw is the buffer snapshot taken when the commit was issued;
	// on success it becomes the new committed baseline even if the buffer
	// moved on during the flight.
	inflightRaw string
}

// NewEditor seeds an editor from the committed store value.
func NewEditor(id FieldID, committed string, cfg Config) *Editor {
	cfg.defaults()
	return &Editor{
		cfg:       cfg,
		id:        id,
		committed: committed,
		buffer:    committed,
		state:     Idle,
	}
}

// ID returns the field identity.
func (e *Editor) ID() FieldID { return e.id }

// Buffer returns the current edit buffer.
func (e *Editor) Buffer() string { return e.buffer }

// Committed returns the last known persisted value.
func (e *Editor) Committed() string { return e.committed }

// Dirty reports whether the buffer diverges from the committed baseline.
func (e *Editor) Dirty() bool { return e.buffer != e.committed }

// Focused reports whether the field counts as focused, including the blur
// grace window.
func (e *Editor) Focused() bool { return e.focused }

// State returns the save lifecycle state.
func (e *Editor) State() SaveState { return e.state }

// Saving reports whether a commit is in flight.
func (e *Editor) Saving() bool { return e.inflight }

// Apply advances the machine by one event and returns the effects the
// caller must execute. Unknown or stale events return no commands.
func (e *Editor) Apply(ev Event) []Command {
	switch ev := ev.(type) {
	case Edit:
		return e.onEdit(ev.Value)
	case FocusGained:
		e.focused = true
		e.blurGen++ // cancel any pending blur grace timer
		return nil
	case FocusLost:
		e.blurGen++
		return []Command{StartBlurTimer{Gen: e.blurGen, Delay: e.cfg.BlurGrace}}
	case BlurElapsed:
		if ev.Gen != e.blurGen {
			return nil
		}
		e.focused = false
		return nil
	case TimerFired:
		if ev.Gen != e.timerGen {
			return nil
		}
		return e.fire(false)
	case SavedElapsed:
		if ev.Gen != e.savedGen {
			return nil
		}
		if e.state == Saved {
			e.state = Idle
		}
		return nil
	case ManualSave:
		return e.fire(true)
	case CommitDone:
		return e.onCommitDone(ev)
	case ExternalUpdate:
		return e.onExternalUpdate(ev.Value)
	}
	return nil
}

func (e *Editor) onEdit(value string) []Command {
	e.buffer = value

	if e.inflight {
		// Queued implicitly in the buffer; the follow-up commit is armed
		// when the in-flight one resolves.
		return nil
	}

	// Every buffer mutation before the deadline cancels and reschedules.
	e.timerGen++
	e.state = PendingDebounce
	return []Command{StartTimer{Gen: e.timerGen, Delay: e.cfg.Delay}}
}

// fire attempts to issue a commit, from either the debounce deadline or a
// manual trigger. Commits for a field are serialized: if one is already in
// flight this is a no-op and CommitDone re-arms as needed.
func (e *Editor) fire(manual bool) []Command {
	if e.inflight {
		return nil
	}
	if manual {
		e.timerGen++ // manual save cancels the pending debounce
	}

	// An edit that was undone, or that only differs in non-semantic empty
	// markup, skips the network call entirely.
	value := Normalize(e.buffer)
	if !e.Dirty() || value == Normalize(e.committed) {
		e.committed = e.buffer
		e.state = Idle
		return nil
	}

	e.inflight = true
	e.inflightRaw = e.buffer
	e.commitGen++
	e.state = Saving
	log.Debug(log.CatAutosave, "commit issued",
		"itemID", e.id.ItemID, "field", e.id.Field, "manual", manual, "gen", e.commitGen)
	return []Command{IssueCommit{Gen: e.commitGen, Value: value}}
}

func (e *Editor) onCommitDone(ev CommitDone) []Command {
	if ev.Gen != e.commitGen || !e.inflight {
		return nil
	}
	e.inflight = false

	if ev.Err != nil {
		log.Warn(log.CatAutosave, "commit failed",
			"itemID", e.id.ItemID, "field", e.id.Field, "kind", ev.Err.Kind.String(), "error", ev.Err.Err)
		notify := Notify{Kind: NotifyError, Message: e.id.Field + ": save failed, changes kept"}

		if e.buffer != e.inflightRaw {
			// The buffer moved during the flight, so the follow-up carries
			// new content and still gets its quiet-period commit. Only the
			// identical failed commit is never retried automatically.
			e.timerGen++
			e.state = PendingDebounce
			return []Command{notify, StartTimer{Gen: e.timerGen, Delay: e.cfg.Delay}}
		}

		// The buffer is preserved exactly; the user retries by editing or
		// saving manually.
		e.state = Failed
		return []Command{notify}
	}

	// The snapshot we sent is now the authoritative baseline.
	e.committed = e.inflightRaw

	if e.Dirty() {
		// The buffer moved during the flight; exactly one follow-up commit
		// after the usual quiet period.
		e.timerGen++
		e.state = PendingDebounce
		return []Command{StartTimer{Gen: e.timerGen, Delay: e.cfg.Delay}}
	}

	e.state = Saved
	e.savedGen++
	return []Command{StartSavedTimer{Gen: e.savedGen, Delay: e.cfg.SavedLinger}}
}

func (e *Editor) onExternalUpdate(value string) []Command {
	if e.focused {
		// Rebase only: the committed baseline moves, the in-progress edit
		// survives, and Dirty() is recomputed against the new baseline.
		e.committed = value
		return nil
	}

	// Unfocused: the external writer wins. Any pending debounce is moot,
	// and a failed edit it replaces has nothing left to retry.
	e.committed = value
	e.buffer = value
	e.timerGen++
	if !e.inflight {
		e.state = Idle
	}
	return nil
}

// Reset re-seeds the editor when the target item changes identity. A focused
// field keeps its buffer; per the lifecycle rules the reseed only applies
// while unfocused.
func (e *Editor) Reset(id FieldID, committed string) {
	if e.focused && e.id == id {
		return
	}
	e.id = id
	e.committed = committed
	e.buffer = committed
	e.state = Idle
	e.timerGen++
	e.blurGen++
	e.savedGen++
	e.inflight = false
	e.inflightRaw = ""
}
