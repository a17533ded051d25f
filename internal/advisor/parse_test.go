package advisor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"riptide/internal/domain"
)

var parseBatch = []domain.Bookmark{
	{ID: 101, Title: "Go blog"},
	{ID: 102, Title: "Old tutorial"},
	{ID: 103, Title: "Long read"},
}

func TestParse_StrictJSON(t *testing.T) {
	text := `Here are my recommendations:
[
  {"index": 1, "action": "KEEP", "target": "", "reasoning": "canonical reference"},
  {"index": 2, "action": "DELETE", "target": "", "reasoning": "superseded"},
  {"index": 3, "action": "MOVE", "target": "Reading List", "reasoning": "long article"}
]`

	got := Parse(text, parseBatch)

	require.Len(t, got, 3)
	require.Equal(t, domain.ActionKeep, got[101].Action)
	require.Equal(t, domain.ActionDelete, got[102].Action)
	require.Equal(t, domain.ActionMove, got[103].Action)
	require.Equal(t, "Reading List", got[103].TargetCollection)
	require.Equal(t, "long article", got[103].Reasoning)
}

func TestParse_RepairsSloppyJSON(t *testing.T) {
	// Trailing comma and unquoted keys, typical model output.
	text := `[
  {index: 1, action: "DELETE", reasoning: "dead link",},
  {index: 2, action: "KEEP", reasoning: "still good",},
]`

	got := Parse(text, parseBatch)

	require.Len(t, got, 2)
	require.Equal(t, domain.ActionDelete, got[101].Action)
	require.Equal(t, domain.ActionKeep, got[102].Action)
}

func TestParse_NumberedTextInlineReasoning(t *testing.T) {
	text := `1. DELETE - dead link
2. MOVE: Reading List - worth a slower read
3. KEEP - reference material`

	got := Parse(text, parseBatch)

	require.Len(t, got, 3)
	require.Equal(t, domain.ActionDelete, got[101].Action)
	require.Equal(t, "dead link", got[101].Reasoning)
	require.Equal(t, domain.ActionMove, got[102].Action)
	require.Equal(t, "Reading List", got[102].TargetCollection)
	require.Equal(t, domain.ActionKeep, got[103].Action)
}

func TestParse_NumberedTextMultilineReasoning(t *testing.T) {
	text := `1. ARCHIVE
   Reasoning: finished reading it
   - but may want it again
2. KEEP - quick reference

Summary: one archive, one keep`

	got := Parse(text, parseBatch)

	require.Len(t, got, 2)
	require.Equal(t, domain.ActionArchive, got[101].Action)
	require.Equal(t, "finished reading it but may want it again", got[101].Reasoning)
	require.Equal(t, domain.ActionKeep, got[102].Action)
}

func TestParse_UnknownActionBecomesKeep(t *testing.T) {
	text := `[{"index": 1, "action": "PURGE", "reasoning": "meh"}]`

	got := Parse(text, parseBatch)

	require.Len(t, got, 1)
	require.Equal(t, domain.ActionKeep, got[101].Action)
	require.Contains(t, got[101].Reasoning, "unclear recommendation")
}

func TestParse_DropsOutOfRangeIndices(t *testing.T) {
	text := `[
  {"index": 0, "action": "DELETE", "reasoning": "bad index"},
  {"index": 2, "action": "DELETE", "reasoning": "fine"},
  {"index": 9, "action": "DELETE", "reasoning": "bad index"}
]`

	got := Parse(text, parseBatch)

	require.Len(t, got, 1)
	require.Equal(t, domain.ActionDelete, got[102].Action)
}

func TestParse_OmittedEntriesStayAbsent(t *testing.T) {
	text := `[{"index": 2, "action": "DELETE", "reasoning": "only this one"}]`

	got := Parse(text, parseBatch)

	require.Len(t, got, 1)
	_, has101 := got[101]
	require.False(t, has101, "missing entries are left to the fallback path")
}

func TestParse_GarbageReturnsEmpty(t *testing.T) {
	got := Parse("I could not analyze these bookmarks, sorry.", parseBatch)

	require.Empty(t, got)
}

func TestParse_EmptyResponse(t *testing.T) {
	require.Empty(t, Parse("", parseBatch))
}
