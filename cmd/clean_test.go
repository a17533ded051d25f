package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"riptide/internal/domain"
	"riptide/internal/state"
	"riptide/internal/testutil"
	"riptide/internal/ui/sessionpicker"
)

var cleanCollection = domain.Collection{ID: 42, Title: "dev", Count: 9}

func TestSessionFor_FreshWithoutState(t *testing.T) {
	store := state.NewStore(t.TempDir())

	s, err := sessionFor(store, sessionpicker.Item{Collection: cleanCollection}, true)

	require.NoError(t, err)
	require.Equal(t, int64(42), s.CollectionID)
	require.Equal(t, 0, s.Cursor)
	require.NotEmpty(t, s.GUID)
}

func TestSessionFor_FreshDiscardsExistingCheckpoint(t *testing.T) {
	store := state.NewStore(t.TempDir())
	old := testutil.SessionFile(t, store, 42, "dev", testutil.Processed(1, 2, 3))
	path, err := store.Find(42)
	require.NoError(t, err)

	s, err := sessionFor(store, sessionpicker.Item{Collection: cleanCollection, Resume: old, Path: path}, true)

	require.NoError(t, err)
	require.NotEqual(t, old.GUID, s.GUID)
	require.Equal(t, 0, s.Stats.Processed)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "old checkpoint should be gone")
}

func TestSessionFor_ResumeKeepsCheckpoint(t *testing.T) {
	store := state.NewStore(t.TempDir())
	old := testutil.SessionFile(t, store, 42, "dev", testutil.Processed(1, 2, 3), testutil.Cursor(2))

	s, err := sessionFor(store, sessionpicker.Item{Collection: cleanCollection, Resume: old}, false)

	require.NoError(t, err)
	require.Equal(t, old.GUID, s.GUID)
	require.Equal(t, 2, s.Cursor)
	require.True(t, s.IsProcessed(2))
}

func TestFormatSessionEntry(t *testing.T) {
	store := state.NewStore(t.TempDir())
	s := testutil.SessionFile(t, store, 7, "reading", testutil.Processed(10, 11))

	line := formatSessionEntry(state.Entry{Path: "x", Session: s})

	require.Contains(t, line, "7")
	require.Contains(t, line, "reading")
	require.Contains(t, line, "2 processed")
}

func TestFormatSessionEntry_Corrupt(t *testing.T) {
	entry := state.Entry{
		Path: "/state/collection_9_x.json",
		Err:  &state.CorruptError{Path: "/state/collection_9_x.json", Reason: "invalid JSON"},
	}

	line := formatSessionEntry(entry)

	require.Contains(t, line, "corrupt")
	require.Contains(t, line, "collection_9_x.json")
}

func TestEnsureStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")

	require.NoError(t, ensureStateDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
