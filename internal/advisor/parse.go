package advisor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"riptide/internal/domain"
	"riptide/internal/log"
)

// rawSuggestion is the JSON shape the prompt asks the model for.
type rawSuggestion struct {
	Index     int    `json:"index"`
	Action    string `json:"action"`
	Target    string `json:"target"`
	Reasoning string `json:"reasoning"`
}

// Parse extracts suggestions from a model response. Three layers, most strict
// first: the JSON array the prompt asked for, that JSON run through repair
// (models like to emit trailing commas and unquoted keys), and finally the
// legacy numbered-text format ("1. DELETE - reason").
//
// Indices are 1-based positions into the batch. Entries that cannot be mapped
// to a batch position are dropped; absent entries become fallback decisions
// downstream, so Parse never invents output.
func Parse(text string, batch []domain.Bookmark) map[int64]domain.Suggestion {
	if raws, ok := parseJSON(text); ok {
		return assign(raws, batch)
	}
	if raws, ok := parseNumberedText(text); ok {
		log.Debug(log.CatAdvisor, "response was not JSON, used numbered-text parser")
		return assign(raws, batch)
	}
	log.Warn(log.CatAdvisor, "unparseable advisory response", "len", len(text))
	return map[int64]domain.Suggestion{}
}

// assign maps 1-based indices onto batch bookmark ids and normalizes actions.
func assign(raws []rawSuggestion, batch []domain.Bookmark) map[int64]domain.Suggestion {
	out := make(map[int64]domain.Suggestion, len(raws))
	for _, raw := range raws {
		if raw.Index < 1 || raw.Index > len(batch) {
			continue
		}
		b := batch[raw.Index-1]

		action := domain.Action(strings.ToUpper(strings.TrimSpace(raw.Action)))
		reasoning := strings.TrimSpace(raw.Reasoning)
		if !action.IsValid() {
			// Mirror the advisory's intent as closely as possible: an
			// unrecognized verb still reads as "leave it alone".
			reasoning = "unclear recommendation: " + string(action)
			action = domain.ActionKeep
		}

		out[b.ID] = domain.Suggestion{
			BookmarkID:       b.ID,
			Action:           action,
			TargetCollection: strings.TrimSpace(raw.Target),
			Reasoning:        reasoning,
		}
	}
	return out
}

// parseJSON finds the first JSON array in the text and decodes it, repairing
// the JSON if a strict decode fails.
func parseJSON(text string) ([]rawSuggestion, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := text[start : end+1]

	var raws []rawSuggestion
	if err := json.Unmarshal([]byte(candidate), &raws); err == nil {
		return raws, true
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal([]byte(repaired), &raws); err != nil {
		return nil, false
	}
	return raws, true
}

// parseNumberedText handles the plain-text format:
//
//	1. DELETE - dead link
//	2. MOVE: Reading List - long article
//	3. KEEP
//	   Reasoning: still handy
//
// Reasoning may trail on the same line after " - " or span following
// unnumbered lines.
func parseNumberedText(text string) ([]rawSuggestion, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var raws []rawSuggestion

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		index, rest, ok := splitNumbered(line)
		if !ok {
			i++
			continue
		}

		actionPart := rest
		reasoning := ""
		if before, after, found := strings.Cut(rest, " - "); found {
			actionPart = strings.TrimSpace(before)
			reasoning = strings.TrimSpace(after)
			i++
		} else {
			// Collect reasoning from following lines until the next numbered
			// item or a summary section.
			var parts []string
			j := i + 1
			for j < len(lines) {
				next := strings.TrimSpace(lines[j])
				if _, _, isNext := splitNumbered(next); isNext {
					break
				}
				lower := strings.ToLower(next)
				if strings.HasPrefix(lower, "summary:") || strings.HasPrefix(lower, "reasoning summary:") {
					break
				}
				for _, prefix := range []string{"Reasoning:", "Reason:", "-"} {
					if strings.HasPrefix(strings.ToLower(next), strings.ToLower(prefix)) {
						next = strings.TrimSpace(next[len(prefix):])
						break
					}
				}
				if next != "" {
					parts = append(parts, next)
				}
				j++
			}
			reasoning = strings.Join(parts, " ")
			i = j
		}

		raw := rawSuggestion{Index: index, Reasoning: reasoning}
		upper := strings.ToUpper(actionPart)
		if strings.HasPrefix(upper, "MOVE:") {
			raw.Action = "MOVE"
			raw.Target = strings.TrimSpace(actionPart[len("MOVE:"):])
		} else {
			raw.Action = upper
		}
		raws = append(raws, raw)
	}

	return raws, len(raws) > 0
}

// splitNumbered parses a "3. DELETE ..." line into its index and remainder.
func splitNumbered(line string) (int, string, bool) {
	if line == "" || line[0] < '0' || line[0] > '9' {
		return 0, "", false
	}
	numPart, rest, found := strings.Cut(line, ". ")
	if !found {
		return 0, "", false
	}
	index, err := strconv.Atoi(strings.TrimSpace(numPart))
	if err != nil {
		return 0, "", false
	}
	return index, strings.TrimSpace(rest), true
}
