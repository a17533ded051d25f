// Package domain provides the pure domain layer for bookmark cleanup with no
// infrastructure dependencies: the bookmark and collection models, disposition
// actions, advisory suggestions, finalized decisions, session statistics, and
// the decision resolver.
package domain

import "time"

// Bookmark is one processable item fetched from the remote source.
// Immutable once fetched; the engine owns it for the duration of one batch.
type Bookmark struct {
	ID        int64
	Title     string
	URL       string
	Domain    string
	Excerpt   string
	CreatedAt time.Time
}

// Collection is a named grouping of bookmarks in the remote source.
type Collection struct {
	ID    int64
	Title string
	Count int
}

// CollectionRef identifies the collection a session is processing.
type CollectionRef struct {
	ID   int64
	Name string
}
