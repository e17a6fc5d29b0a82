package autosave

import "fmt"

// ErrorKind classifies a failed commit.
type ErrorKind int

const (
	// ErrTransport means the store was unreachable or the write failed in
	// transit. Retrying the same content may succeed.
	ErrTransport ErrorKind = iota
	// ErrRejected means the store refused the content. The user has to
	// change the field before a retry can succeed.
	ErrRejected
)

// String returns a short label for the kind.
func (k ErrorKind) String() string {
	if k == ErrRejected {
		return "rejected"
	}
	return "transport"
}

// CommitError is the failure result of a commit attempt. It is always caught
// at the commit boundary and converted into Failed state plus a
// notification, never propagated into the render path.
type CommitError struct {
	Kind ErrorKind
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s error: %v", e.Kind, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// NewTransportError wraps err as a retryable transport failure.
func NewTransportError(err error) *CommitError {
	return &CommitError{Kind: ErrTransport, Err: err}
}

// NewRejectedError wraps err as a backend validation rejection.
func NewRejectedError(err error) *CommitError {
	return &CommitError{Kind: ErrRejected, Err: err}
}
