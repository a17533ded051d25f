package domain

// Suggestion is the advisory service's recommended disposition for one bookmark.
// A suggestion may be absent or malformed for any given bookmark; the resolver
// substitutes a safe KEEP default in that case.
type Suggestion struct {
	BookmarkID int64

	Action Action

	// TargetCollection names the destination collection. Meaningful only when
	// Action is ActionMove.
	TargetCollection string

	// Reasoning is the advisory's free-text justification.
	Reasoning string

	// Confidence is an optional derived score in [0,1]. Nil when the advisory
	// did not report one.
	Confidence *float64
}

// WellFormed reports whether the suggestion can be used as-is by the resolver:
// a recognized action, and a target collection present iff the action is MOVE.
func (s Suggestion) WellFormed() bool {
	if !s.Action.IsValid() {
		return false
	}
	if s.Action == ActionMove {
		return s.TargetCollection != ""
	}
	return true
}

// Override is a human decision for one bookmark collected by the review
// surface. It replaces the advisory suggestion outright.
type Override struct {
	Action           Action
	TargetCollection string
	Reasoning        string
}
