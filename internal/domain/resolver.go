package domain

import "strings"

// Reasoning text used on the fallback path when the advisory produced nothing
// usable for a bookmark.
const fallbackReasoning = "advisory unavailable"

// Resolve merges an advisory suggestion with an optional human override into
// the final decision for one bookmark. It is a pure function: no side effects,
// total over every combination of (suggestion present / absent / malformed) x
// (override present / absent).
//
// Priority order:
//  1. A human override wins outright.
//  2. A well-formed suggestion is used, except that a MOVE targeting the
//     collection the bookmark is already in is coerced to KEEP (a self-move is
//     a no-op and never reaches the executor).
//  3. Otherwise the safe default is KEEP with fallback reasoning.
func Resolve(b Bookmark, suggestion *Suggestion, override *Override, current CollectionRef) Decision {
	if override != nil {
		return Decision{
			BookmarkID:       b.ID,
			Action:           override.Action,
			TargetCollection: override.TargetCollection,
			Reasoning:        override.Reasoning,
			Source:           SourceHuman,
		}
	}

	if suggestion != nil && suggestion.WellFormed() {
		if suggestion.Action == ActionMove && isSelfMove(suggestion.TargetCollection, current) {
			return Decision{
				BookmarkID: b.ID,
				Action:     ActionKeep,
				Reasoning:  "already in " + current.Name,
				Source:     SourceAdvisory,
			}
		}
		return Decision{
			BookmarkID:       b.ID,
			Action:           suggestion.Action,
			TargetCollection: suggestion.TargetCollection,
			Reasoning:        suggestion.Reasoning,
			Source:           SourceAdvisory,
		}
	}

	return Decision{
		BookmarkID: b.ID,
		Action:     ActionKeep,
		Reasoning:  fallbackReasoning,
		Source:     SourceFallback,
	}
}

// ResolveBatch resolves every bookmark of a batch in input order and assigns
// sequence positions. Suggestions and overrides are keyed by bookmark id;
// missing entries fall through to the fallback / accept-suggestion paths.
func ResolveBatch(batch []Bookmark, suggestions map[int64]Suggestion, overrides map[int64]Override, current CollectionRef) []Decision {
	decisions := make([]Decision, 0, len(batch))
	for i, b := range batch {
		var sug *Suggestion
		if s, ok := suggestions[b.ID]; ok {
			sug = &s
		}
		var ovr *Override
		if o, ok := overrides[b.ID]; ok {
			ovr = &o
		}
		d := Resolve(b, sug, ovr, current)
		d.Seq = i
		decisions = append(decisions, d)
	}
	return decisions
}

// isSelfMove reports whether a MOVE target names the current collection.
// The advisory replies with collection names, so the comparison is
// case-insensitive on the trimmed name.
func isSelfMove(target string, current CollectionRef) bool {
	return strings.EqualFold(strings.TrimSpace(target), strings.TrimSpace(current.Name))
}
