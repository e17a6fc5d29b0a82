package store

import "time"

// Status is the lifecycle of an action. The first-content transition
// (todo -> in_progress) is applied by the store inside the same update that
// carries the content, never inferred client-side.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// AssetKind distinguishes tools from stock items.
type AssetKind string

const (
	KindTool  AssetKind = "tool"
	KindStock AssetKind = "stock"
)

// Action is a remediation task attached to an asset. Policy, Plan and
// Observations are the rich-text fields driven by the autosave editors.
type Action struct {
	ID           string
	AssetID      string
	Title        string
	Status       Status
	Assignee     string
	Policy       string
	Plan         string
	Observations string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Field returns the named rich-text field value.
func (a Action) Field(name string) string {
	switch name {
	case FieldPolicy:
		return a.Policy
	case FieldPlan:
		return a.Plan
	case FieldObservations:
		return a.Observations
	}
	return ""
}

// Asset is a tracked tool or stock item.
type Asset struct {
	ID        string
	Name      string
	Kind      AssetKind
	Location  string
	Quantity  int
	Notes     string
	UpdatedAt time.Time
}

// Editable rich-text field names on an action.
const (
	FieldPolicy       = "policy"
	FieldPlan         = "plan"
	FieldObservations = "observations"
)

// EditableFields lists the autosave-backed fields in display order.
func EditableFields() []string {
	return []string{FieldPolicy, FieldPlan, FieldObservations}
}

// ValidField reports whether name is an editable rich-text field.
func ValidField(name string) bool {
	switch name {
	case FieldPolicy, FieldPlan, FieldObservations:
		return true
	}
	return false
}

// Filter narrows ListActions results. Zero values match everything.
type Filter struct {
	Status   Status
	Assignee string
	AssetID  string
	// Search matches title and rich-text fields, case-insensitive.
	Search string
}
