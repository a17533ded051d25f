// Package state persists resumable cleanup sessions as JSON snapshots on disk.
//
// One session file exists per collection. A snapshot is the full session
// state: cursor, processed bookmark ids, and counters. Snapshots are written
// atomically (temp file plus rename) so a crash mid-write leaves either the
// previous snapshot or the new one, never a torn file.
package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"riptide/internal/domain"
)

// SchemaVersion is written into every snapshot. Files with a newer version
// than this are treated as corrupt rather than silently misread.
const SchemaVersion = 1

// Session is the in-memory working copy of one collection's cleanup progress.
type Session struct {
	Version        int          `json:"version"`
	GUID           string       `json:"session_guid"`
	CollectionID   int64        `json:"collection_id"`
	CollectionName string       `json:"collection_name"`
	Cursor         int          `json:"cursor"`
	ProcessedIDs   []int64      `json:"processed_ids"`
	Stats          domain.Stats `json:"stats"`
	ActiveSeconds  int64        `json:"active_seconds"`
	CreatedAt      time.Time    `json:"created_at"`
	LastSavedAt    time.Time    `json:"last_saved_at"`

	processed map[int64]struct{}
}

// NewSession creates a fresh session for a collection with a new GUID.
func NewSession(collectionID int64, collectionName string) *Session {
	return &Session{
		Version:        SchemaVersion,
		GUID:           uuid.NewString(),
		CollectionID:   collectionID,
		CollectionName: collectionName,
		CreatedAt:      time.Now().UTC(),
		processed:      make(map[int64]struct{}),
	}
}

// index builds the processed-id set from the slice. Called after load and
// lazily by accessors so a zero-value Session still works.
func (s *Session) index() map[int64]struct{} {
	if s.processed == nil {
		s.processed = make(map[int64]struct{}, len(s.ProcessedIDs))
		for _, id := range s.ProcessedIDs {
			s.processed[id] = struct{}{}
		}
	}
	return s.processed
}

// IsProcessed reports whether a bookmark id was already handled in a prior
// batch or a prior run of this session.
func (s *Session) IsProcessed(id int64) bool {
	_, ok := s.index()[id]
	return ok
}

// MarkProcessed records bookmark ids as handled. Duplicates are ignored so
// replaying a batch after resumption cannot inflate the set.
func (s *Session) MarkProcessed(ids ...int64) {
	idx := s.index()
	for _, id := range ids {
		if _, ok := idx[id]; ok {
			continue
		}
		idx[id] = struct{}{}
		s.ProcessedIDs = append(s.ProcessedIDs, id)
	}
}

// FilterUnprocessed returns the bookmarks of a page that have not been
// processed yet, preserving input order.
func (s *Session) FilterUnprocessed(bookmarks []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if !s.IsProcessed(b.ID) {
			out = append(out, b)
		}
	}
	return out
}

// prepare normalizes the snapshot before it is written: ids sorted for stable
// files and the save timestamp refreshed.
func (s *Session) prepare(now time.Time) {
	sort.Slice(s.ProcessedIDs, func(i, j int) bool { return s.ProcessedIDs[i] < s.ProcessedIDs[j] })
	s.Version = SchemaVersion
	s.LastSavedAt = now.UTC()
}

// validate checks the internal consistency a loaded snapshot must satisfy.
func (s *Session) validate() error {
	if s.Version > SchemaVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", s.Version, SchemaVersion)
	}
	if s.GUID == "" {
		return fmt.Errorf("missing session_guid")
	}
	if s.CollectionID == 0 {
		return fmt.Errorf("missing collection_id")
	}
	if s.Cursor < 0 {
		return fmt.Errorf("negative cursor %d", s.Cursor)
	}
	seen := make(map[int64]struct{}, len(s.ProcessedIDs))
	for _, id := range s.ProcessedIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate processed id %d", id)
		}
		seen[id] = struct{}{}
	}
	if s.Stats.Processed != len(s.ProcessedIDs) {
		return fmt.Errorf("stats.processed %d does not match %d processed ids", s.Stats.Processed, len(s.ProcessedIDs))
	}
	return nil
}
