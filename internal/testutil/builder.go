// Package testutil provides fluent builders for bookmarks, suggestions, and
// session files used across riptide's tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"riptide/internal/domain"
	"riptide/internal/state"
)

// Bookmark builds a bookmark with sensible defaults and optional overrides.
func Bookmark(id int64, opts ...BookmarkOption) domain.Bookmark {
	b := domain.Bookmark{
		ID:        id,
		Title:     "Bookmark",
		URL:       "https://example.com/page",
		Domain:    "example.com",
		CreatedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// BookmarkOption configures a bookmark during builder setup.
type BookmarkOption func(*domain.Bookmark)

// Title sets the bookmark title.
func Title(title string) BookmarkOption {
	return func(b *domain.Bookmark) { b.Title = title }
}

// URL sets the bookmark URL.
func URL(url string) BookmarkOption {
	return func(b *domain.Bookmark) { b.URL = url }
}

// Domain sets the bookmark domain.
func Domain(d string) BookmarkOption {
	return func(b *domain.Bookmark) { b.Domain = d }
}

// Excerpt sets the bookmark excerpt.
func Excerpt(text string) BookmarkOption {
	return func(b *domain.Bookmark) { b.Excerpt = text }
}

// Batch builds n bookmarks with consecutive ids starting at startID.
func Batch(startID int64, n int) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Bookmark(startID+int64(i)))
	}
	return out
}

// Suggest builds a suggestion for a bookmark.
func Suggest(bookmarkID int64, action domain.Action, opts ...SuggestOption) domain.Suggestion {
	s := domain.Suggestion{
		BookmarkID: bookmarkID,
		Action:     action,
		Reasoning:  "test reasoning",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SuggestOption configures a suggestion during builder setup.
type SuggestOption func(*domain.Suggestion)

// Target sets the move target collection.
func Target(name string) SuggestOption {
	return func(s *domain.Suggestion) { s.TargetCollection = name }
}

// Reasoning sets the suggestion reasoning.
func Reasoning(text string) SuggestOption {
	return func(s *domain.Suggestion) { s.Reasoning = text }
}

// SessionFile builds a session, applies options, and commits it through the
// store so tests start from a realistic on-disk checkpoint.
func SessionFile(t *testing.T, store *state.Store, collectionID int64, name string, opts ...SessionOption) *state.Session {
	t.Helper()

	s := state.NewSession(collectionID, name)
	for _, opt := range opts {
		opt(s)
	}
	require.NoError(t, store.Commit(s))
	return s
}

// SessionOption configures a session during builder setup.
type SessionOption func(*state.Session)

// Processed marks ids processed and counts them as kept, keeping the snapshot
// internally consistent.
func Processed(ids ...int64) SessionOption {
	return func(s *state.Session) {
		for _, id := range ids {
			if s.IsProcessed(id) {
				continue
			}
			s.MarkProcessed(id)
			s.Stats.Processed++
			s.Stats.Kept++
		}
	}
}

// Cursor sets the resume page.
func Cursor(page int) SessionOption {
	return func(s *state.Session) { s.Cursor = page }
}

// Stats replaces the session counters wholesale. The caller is responsible
// for keeping them consistent with Processed.
func Stats(stats domain.Stats) SessionOption {
	return func(s *state.Session) { s.Stats = stats }
}
