package domain

// Action is the disposition for one bookmark.
type Action string

const (
	// ActionKeep leaves the bookmark where it is.
	ActionKeep Action = "KEEP"

	// ActionDelete removes the bookmark from the remote source.
	ActionDelete Action = "DELETE"

	// ActionArchive moves the bookmark to the configured archive collection.
	ActionArchive Action = "ARCHIVE"

	// ActionMove moves the bookmark to another named collection.
	ActionMove Action = "MOVE"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// IsValid returns true if the action is a recognized disposition.
func (a Action) IsValid() bool {
	switch a {
	case ActionKeep, ActionDelete, ActionArchive, ActionMove:
		return true
	default:
		return false
	}
}

// Mutates returns true if the action requires a call to the mutation executor.
// KEEP is a no-op against the remote source.
func (a Action) Mutates() bool {
	return a == ActionDelete || a == ActionArchive || a == ActionMove
}
