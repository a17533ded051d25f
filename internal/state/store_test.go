package state

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"riptide/internal/domain"
)

func TestStore_CommitAndLoadRoundtrip(t *testing.T) {
	st := NewStore(t.TempDir())

	s := NewSession(42, "dev")
	s.MarkProcessed(30, 10, 20)
	s.Stats = domain.Stats{Processed: 3, Kept: 2, Deleted: 1}
	s.Cursor = 3
	s.ActiveSeconds = 17

	require.NoError(t, st.Commit(s))

	loaded, err := st.Load(st.Path(42, "dev"))
	require.NoError(t, err)
	require.Equal(t, s.GUID, loaded.GUID)
	require.Equal(t, int64(42), loaded.CollectionID)
	require.Equal(t, "dev", loaded.CollectionName)
	require.Equal(t, 3, loaded.Cursor)
	require.Equal(t, int64(17), loaded.ActiveSeconds)
	require.Equal(t, s.Stats, loaded.Stats)
	require.Equal(t, []int64{10, 20, 30}, loaded.ProcessedIDs, "ids are sorted on commit")
	require.True(t, loaded.IsProcessed(20))
	require.False(t, loaded.LastSavedAt.IsZero())
}

func TestStore_PathSanitizesCollectionName(t *testing.T) {
	st := NewStore("/state")

	path := st.Path(7, "My Dev/Stuff!")

	require.Equal(t, "/state/collection_7_My_Dev_Stuff_.json", path)
}

func TestStore_LoadMissingFile(t *testing.T) {
	st := NewStore(t.TempDir())

	_, err := st.Load(st.Path(1, "gone"))

	require.True(t, os.IsNotExist(err))
}

func TestStore_LoadCorruptJSON(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	path := filepath.Join(dir, "collection_9_bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0644))

	_, err := st.Load(path)

	var corrupt *CorruptError
	require.ErrorAs(t, err, &corrupt)
	require.Equal(t, path, corrupt.Path)
	require.Contains(t, corrupt.Reason, "invalid JSON")
}

func TestStore_LoadRejectsInconsistentSnapshot(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	path := filepath.Join(dir, "collection_9_skewed.json")
	// Valid JSON, but the counters disagree with the processed id list.
	snapshot := `{"version":1,"session_guid":"abc","collection_id":9,"collection_name":"skewed",` +
		`"cursor":0,"processed_ids":[1,2],"stats":{"processed":7},"created_at":"2026-08-01T00:00:00Z","last_saved_at":"2026-08-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0644))

	_, err := st.Load(path)

	var corrupt *CorruptError
	require.ErrorAs(t, err, &corrupt)
	require.Contains(t, corrupt.Reason, "does not match")
}

func TestStore_Find(t *testing.T) {
	st := NewStore(t.TempDir())
	s := NewSession(42, "dev")
	require.NoError(t, st.Commit(s))

	path, err := st.Find(42)
	require.NoError(t, err)
	require.Equal(t, st.Path(42, "dev"), path)

	_, err = st.Find(99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_FindMatchesRenamedCollection(t *testing.T) {
	st := NewStore(t.TempDir())
	// Session was started when the collection was called "old-name".
	s := NewSession(42, "old-name")
	require.NoError(t, st.Commit(s))

	path, err := st.Find(42)

	require.NoError(t, err)
	require.Equal(t, st.Path(42, "old-name"), path)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	st := NewStore(t.TempDir())
	s := NewSession(1, "dev")
	require.NoError(t, st.Commit(s))
	path := st.Path(1, "dev")

	require.NoError(t, st.Delete(path))
	require.NoError(t, st.Delete(path))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestStore_CommitLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)

	for i := 0; i < 5; i++ {
		s := NewSession(int64(i+1), "dev")
		require.NoError(t, st.Commit(s))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, strings.HasPrefix(e.Name(), "."), "leftover temp file %s", e.Name())
	}
}

func TestStore_ListNewestFirstWithCorruptLast(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)

	older := NewSession(1, "older")
	require.NoError(t, st.Commit(older))
	time.Sleep(10 * time.Millisecond)
	newer := NewSession(2, "newer")
	require.NoError(t, st.Commit(newer))

	// A torn file from a crashed writer and an in-flight temp file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collection_3_torn.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".session.json.tmp.789"), []byte("{"), 0644))

	entries, err := st.List()
	require.NoError(t, err)
	require.Len(t, entries, 3, "temp files are not listed")

	require.Equal(t, int64(2), entries[0].Session.CollectionID)
	require.Equal(t, int64(1), entries[1].Session.CollectionID)
	require.Nil(t, entries[2].Session)
	var corrupt *CorruptError
	require.ErrorAs(t, entries[2].Err, &corrupt)
}

func TestStore_ListEmptyDir(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "never-created"))

	entries, err := st.List()

	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestStore_CheckpointDurabilityProperty simulates a session progressing in
// random batches with checkpoints at arbitrary points. Whatever was committed
// must load back exactly, and a leftover torn temp file must never shadow the
// last good snapshot.
func TestStore_CheckpointDurabilityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		st := NewStore(t.TempDir())
		s := NewSession(42, "dev")

		committed := make(map[int64]struct{})
		everCommitted := false

		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			batch := rapid.SliceOfN(rapid.Int64Range(1, 50), 1, 5).Draw(rt, "batch")
			for _, id := range batch {
				if s.IsProcessed(id) {
					continue
				}
				s.Stats.RecordOutcome(domain.Decision{BookmarkID: id, Action: domain.ActionKeep, Source: domain.SourceAdvisory}, nil)
				s.MarkProcessed(id)
			}
			s.Cursor += len(batch)

			if rapid.Bool().Draw(rt, "checkpoint") {
				require.NoError(rt, st.Commit(s))
				everCommitted = true
				committed = make(map[int64]struct{}, len(s.ProcessedIDs))
				for _, id := range s.ProcessedIDs {
					committed[id] = struct{}{}
				}
			}
		}

		if !everCommitted {
			return
		}

		// A writer that died mid-commit leaves only a dot-temp file behind.
		require.NoError(rt, os.WriteFile(filepath.Join(st.Dir(), ".session.json.tmp.crash"), []byte("{half"), 0644))

		path, err := st.Find(42)
		require.NoError(rt, err)
		loaded, err := st.Load(path)
		require.NoError(rt, err)

		want := make([]int64, 0, len(committed))
		for id := range committed {
			want = append(want, id)
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		require.Equal(rt, want, loaded.ProcessedIDs)
		require.Equal(rt, len(want), loaded.Stats.Processed)
	})
}

func TestCorruptError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &CorruptError{Path: "/x", Reason: "invalid JSON", Err: inner}

	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "/x")
}
