package autosave

import "time"

// Event is an input to the editor state machine. Events are applied one at a
// time on the UI loop; the machine never blocks and never owns a real timer.
type Event interface{ isEvent() }

// Edit carries a new buffer value from a keystroke.
type Edit struct{ Value string }

// FocusGained reports that the field received input focus.
type FocusGained struct{}

// FocusLost reports that the field lost input focus. The machine keeps
// treating the field as focused until the blur grace period elapses, so
// focus hopping between controls of the same logical editor does not open a
// window for external overwrites.
type FocusLost struct{}

// BlurElapsed fires when the blur grace timer requested by FocusLost
// expires. Stale generations are ignored.
type BlurElapsed struct{ Gen uint64 }

// TimerFired fires when the debounce timer requested by an Edit expires.
// Stale generations are ignored.
type TimerFired struct{ Gen uint64 }

// SavedElapsed fires when the post-save linger timer expires, moving the
// indicator from Saved back to Idle.
type SavedElapsed struct{ Gen uint64 }

// ManualSave requests an immediate commit, bypassing the debounce timer.
type ManualSave struct{}

// CommitDone reports the result of an IssueCommit command. Err is nil on
// success.
type CommitDone struct {
	Gen uint64
	Err *CommitError
}

// ExternalUpdate carries a committed value that arrived from outside this
// editor instance: another client's write, or a refetch.
type ExternalUpdate struct{ Value string }

func (Edit) isEvent()           {}
func (FocusGained) isEvent()    {}
func (FocusLost) isEvent()      {}
func (BlurElapsed) isEvent()    {}
func (TimerFired) isEvent()     {}
func (SavedElapsed) isEvent()   {}
func (ManualSave) isEvent()     {}
func (CommitDone) isEvent()     {}
func (ExternalUpdate) isEvent() {}

// Command is an effect the caller must carry out on behalf of the machine:
// start a timer, issue the actual write, or surface a notification. Keeping
// effects outside the machine is what makes it testable without a clock.
type Command interface{ isCommand() }

// StartTimer asks the caller to deliver TimerFired{Gen} after Delay.
type StartTimer struct {
	Gen   uint64
	Delay time.Duration
}

// StartBlurTimer asks the caller to deliver BlurElapsed{Gen} after Delay.
type StartBlurTimer struct {
	Gen   uint64
	Delay time.Duration
}

// StartSavedTimer asks the caller to deliver SavedElapsed{Gen} after Delay.
type StartSavedTimer struct {
	Gen   uint64
	Delay time.Duration
}

// IssueCommit asks the caller to persist Value for the editor's field and
// report back with CommitDone{Gen}.
type IssueCommit struct {
	Gen   uint64
	Value string
}

// NotifyKind selects the toast style for a Notify command.
type NotifyKind int

const (
	NotifyError NotifyKind = iota
	NotifySuccess
)

// Notify asks the caller to surface a user-visible notification.
type Notify struct {
	Kind    NotifyKind
	Message string
}

func (StartTimer) isCommand()      {}
func (StartBlurTimer) isCommand()  {}
func (StartSavedTimer) isCommand() {}
func (IssueCommit) isCommand()     {}
func (Notify) isCommand()          {}
