package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"riptide/internal/log"
)

// ErrNotFound is returned by Find when no session file exists for a collection.
var ErrNotFound = errors.New("no session found")

// CorruptError reports a session file that exists but cannot be trusted:
// unreadable JSON, an unsupported schema version, or inconsistent contents.
// The caller decides whether to start fresh or abort.
type CorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt session file %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt session file %s: %s", e.Path, e.Reason)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Store reads and writes session snapshots under a single state directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on the
// first commit, not here, so listing an absent directory is not an error.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory the store operates on.
func (st *Store) Dir() string { return st.dir }

var unsafeNameChars = regexp.MustCompile(`[^\w\-]`)

// Path returns the snapshot path for a collection. The collection name is
// embedded for human readability; the id is what Find matches on.
func (st *Store) Path(collectionID int64, collectionName string) string {
	safe := unsafeNameChars.ReplaceAllString(collectionName, "_")
	return filepath.Join(st.dir, fmt.Sprintf("collection_%d_%s.json", collectionID, safe))
}

// Find locates the existing session file for a collection id, regardless of
// what the collection was named when the session started. Returns ErrNotFound
// when there is none.
func (st *Store) Find(collectionID int64) (string, error) {
	matches, err := filepath.Glob(filepath.Join(st.dir, fmt.Sprintf("collection_%d_*.json", collectionID)))
	if err != nil {
		return "", fmt.Errorf("globbing state dir: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNotFound
	}
	sort.Strings(matches)
	return matches[0], nil
}

// Load reads and validates a snapshot. A missing file is returned as-is via
// os.IsNotExist; anything unparseable or inconsistent is a *CorruptError.
func (st *Store) Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &CorruptError{Path: path, Reason: "invalid JSON", Err: err}
	}
	if err := s.validate(); err != nil {
		return nil, &CorruptError{Path: path, Reason: err.Error()}
	}

	s.processed = nil
	s.index()
	log.Debug(log.CatState, "loaded session", "path", path, "guid", s.GUID, "processed", len(s.ProcessedIDs))
	return &s, nil
}

// Commit writes the session snapshot atomically: marshal to a temp file in
// the state directory, then rename over the target. Readers never observe a
// partially written snapshot.
func (st *Store) Commit(s *Session) error {
	s.prepare(time.Now())

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := os.MkdirAll(st.dir, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	path := st.Path(s.CollectionID, s.CollectionName)
	temp, err := os.CreateTemp(st.dir, ".session.json.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	log.Debug(log.CatState, "committed session", "path", path, "processed", len(s.ProcessedIDs), "cursor", s.Cursor)
	return nil
}

// Delete removes a session file. Deleting a file that is already gone is not
// an error, so cleanup after exhaustion is idempotent.
func (st *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Entry is one session file found by List. Corrupt files are listed with Err
// set instead of being hidden, so the picker can surface them.
type Entry struct {
	Path    string
	Session *Session
	Err     error
}

// List returns every session file in the state directory, newest save first.
// Corrupt entries sort last.
func (st *Store) List() ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(st.dir, "collection_*.json"))
	if err != nil {
		return nil, fmt.Errorf("globbing state dir: %w", err)
	}

	entries := make([]Entry, 0, len(matches))
	for _, path := range matches {
		if strings.HasPrefix(filepath.Base(path), ".") {
			continue
		}
		s, err := st.Load(path)
		if err != nil {
			entries = append(entries, Entry{Path: path, Err: err})
			continue
		}
		entries = append(entries, Entry{Path: path, Session: s})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Session == nil:
			return false
		case b.Session == nil:
			return true
		default:
			return a.Session.LastSavedAt.After(b.Session.LastSavedAt)
		}
	})
	return entries, nil
}
