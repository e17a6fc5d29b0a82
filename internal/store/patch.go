package store

import (
	"errors"
	"fmt"
)

// ErrValidation marks an update the store refused. Callers classify it as a
// rejected commit (user must change the content), as opposed to transport
// failures which are retryable as-is.
var ErrValidation = errors.New("validation failed")

// Patch is one typed mutation of an action. Updates are built from a list
// of patches instead of ad hoc field maps so every write is validated
// before it reaches the database.
type Patch interface {
	validate() error
	isPatch()
}

// TextPatch sets one editable rich-text field.
type TextPatch struct {
	Field string
	Value string
}

// AssignPatch sets the action's assignee. Used by the commit pipeline's
// first-touch auto-assignment: the first editor to put content into an
// unassigned action claims it in the same update.
type AssignPatch struct {
	Assignee string
}

// StatusPatch sets the action's status explicitly.
type StatusPatch struct {
	Status Status
}

func (TextPatch) isPatch()   {}
func (AssignPatch) isPatch() {}
func (StatusPatch) isPatch() {}

func (p TextPatch) validate() error {
	if !ValidField(p.Field) {
		return fmt.Errorf("%w: unknown field %q", ErrValidation, p.Field)
	}
	if len(p.Value) > maxFieldLen {
		return fmt.Errorf("%w: field %q exceeds %d bytes", ErrValidation, p.Field, maxFieldLen)
	}
	return nil
}

func (p AssignPatch) validate() error {
	if p.Assignee == "" {
		return fmt.Errorf("%w: empty assignee", ErrValidation)
	}
	return nil
}

func (p StatusPatch) validate() error {
	if !ValidStatus(p.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	return nil
}

// Backend limit on rich-text payloads.
const maxFieldLen = 64 * 1024

// ValidatePatches checks every patch and rejects an empty set.
func ValidatePatches(patches []Patch) error {
	if len(patches) == 0 {
		return fmt.Errorf("%w: no patches", ErrValidation)
	}
	for _, p := range patches {
		if err := p.validate(); err != nil {
			return err
		}
	}
	return nil
}
