package advisor

import (
	"fmt"
	"os"
	"strings"

	"riptide/internal/domain"
)

// PromptFileEnv names an environment variable pointing at a custom prompt
// template. The template receives the batch block via %s substitution.
const PromptFileEnv = "RIPTIDE_PROMPT_FILE"

const maxExcerptLen = 150

const defaultTemplate = `You are helping clean up a raindrop.io bookmark collection.
For each numbered bookmark below, recommend exactly one action:
- KEEP: still valuable, leave it where it is
- DELETE: dead, outdated, or no longer interesting
- ARCHIVE: worth keeping but not in an active collection
- MOVE: belongs in a different collection (name the target)

%s
Respond with a JSON array only, one object per bookmark, in the same order:
[{"index": 1, "action": "KEEP", "target": "", "reasoning": "short reason"}]
The "target" field is required for MOVE and must name one of the available collections.`

// buildPrompt renders the advisory prompt for one batch.
func buildPrompt(batch []domain.Bookmark, collections []domain.Collection, current domain.CollectionRef) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CURRENT COLLECTION: %s (%d bookmarks in this batch)\n\nBOOKMARKS:\n", current.Name, len(batch)))
	for i, b := range batch {
		title := b.Title
		if title == "" {
			title = "Untitled"
		}
		sb.WriteString(fmt.Sprintf("%d. [%s] - %s", i+1, title, b.Domain))
		if !b.CreatedAt.IsZero() {
			sb.WriteString(" - " + b.CreatedAt.Format("2006-01-02"))
		}
		sb.WriteString(fmt.Sprintf("\n   URL: %s\n", b.URL))
		if excerpt := strings.TrimSpace(b.Excerpt); excerpt != "" {
			if len(excerpt) > maxExcerptLen {
				excerpt = excerpt[:maxExcerptLen]
			}
			sb.WriteString(fmt.Sprintf("   Content: %s\n", excerpt))
		}
	}

	if len(collections) > 0 {
		sb.WriteString("\nAVAILABLE COLLECTIONS:\n")
		for _, col := range collections {
			marker := ""
			if col.Title == current.Name {
				marker = " (current)"
			}
			sb.WriteString(fmt.Sprintf("- %s (%d items)%s\n", col.Title, col.Count, marker))
		}
	}

	return fmt.Sprintf(template(), sb.String())
}

func template() string {
	if path := os.Getenv(PromptFileEnv); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return string(data)
		}
	}
	return defaultTemplate
}
