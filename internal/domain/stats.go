package domain

// Stats holds the running session counters. All counters are monotonically
// non-decreasing within a session and are summed across resumptions.
//
// Counting convention: every processed bookmark lands in exactly one outcome
// bucket (kept, deleted, archived, moved, skipped) unless its mutation failed,
// in which case it counts toward errors instead of its action bucket. Fallback
// decisions (missing or malformed advisory suggestion) additionally increment
// errors while the resulting KEEP still counts as kept, so errors can exceed
// the number of failed mutations.
type Stats struct {
	Processed int `json:"processed"`
	Kept      int `json:"kept"`
	Deleted   int `json:"deleted"`
	Archived  int `json:"archived"`
	Moved     int `json:"moved"`
	Errors    int `json:"errors"`
	Skipped   int `json:"skipped"`
}

// RecordOutcome updates the counters for one finalized decision. applyErr is
// the mutation executor's result (nil for success, for KEEP, and for dry runs).
func (s *Stats) RecordOutcome(d Decision, applyErr error) {
	s.Processed++

	if d.Source == SourceFallback {
		s.Errors++
	}

	if applyErr != nil {
		s.Errors++
		return
	}

	switch d.Action {
	case ActionKeep:
		s.Kept++
	case ActionDelete:
		s.Deleted++
	case ActionArchive:
		s.Archived++
	case ActionMove:
		s.Moved++
	}
}

// RecordSkipped counts bookmarks that were marked processed without any action
// (the reviewer skipped the whole batch).
func (s *Stats) RecordSkipped(n int) {
	s.Processed += n
	s.Skipped += n
}

// Outcomes returns the sum of the outcome buckets. For a consistent Stats this
// equals Processed minus the number of failed mutations.
func (s Stats) Outcomes() int {
	return s.Kept + s.Deleted + s.Archived + s.Moved + s.Skipped
}

// Add returns the element-wise sum of two stats. Used when summing a resumed
// session's counters with persisted ones.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Processed: s.Processed + o.Processed,
		Kept:      s.Kept + o.Kept,
		Deleted:   s.Deleted + o.Deleted,
		Archived:  s.Archived + o.Archived,
		Moved:     s.Moved + o.Moved,
		Errors:    s.Errors + o.Errors,
		Skipped:   s.Skipped + o.Skipped,
	}
}
