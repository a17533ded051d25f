package domain

// DecisionSource records which path produced a finalized decision.
type DecisionSource string

const (
	// SourceAdvisory means the advisory suggestion was accepted (possibly
	// after self-move coercion).
	SourceAdvisory DecisionSource = "advisory"

	// SourceHuman means a human override replaced the suggestion.
	SourceHuman DecisionSource = "human-override"

	// SourceFallback means the suggestion was missing or malformed and the
	// resolver substituted the safe KEEP default. Fallback decisions increment
	// the errors counter when committed.
	SourceFallback DecisionSource = "fallback"
)

// String returns the string representation of the source.
func (s DecisionSource) String() string {
	return string(s)
}

// Decision is the finalized disposition for one bookmark after review.
// Exactly one Decision exists per bookmark per session.
type Decision struct {
	BookmarkID int64

	Action Action

	// TargetCollection is set only for MOVE decisions.
	TargetCollection string

	Reasoning string

	Source DecisionSource

	// Seq is the logical sequence position of the decision within the batch.
	// It preserves fetch order so reasoning logs are reproducible.
	Seq int
}
