package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "uploads"))

	path, err := store.Save("job-1", []byte("xlsx"))
	require.NoError(t, err)
	assert.Equal(t, store.PathFor("job-1"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", string(data))

	assert.True(t, store.Contains(path))
	assert.False(t, store.Contains(store.Dir))
	assert.False(t, store.Contains(filepath.Join(store.Dir, "..", "elsewhere.xlsx")))

	require.NoError(t, store.Remove(path))
	assert.ErrorIs(t, store.Remove(path), os.ErrNotExist)
	assert.Error(t, store.Remove("/etc/hosts"))
}

func TestCleanup(t *testing.T) {
	db := openTestDB(t)
	store := NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	newJob := func(expires time.Time, storage string, write bool) (*Job, string) {
		j, err := db.CreateJob("chat.txt", StatusSuccess, "")
		require.NoError(t, err)
		path := store.PathFor(j.ID)
		if storage == StorageExternal {
			path = filepath.Join(t.TempDir(), "mine.xlsx")
		}
		if write {
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		}
		require.NoError(t, db.AddFile(File{JobID: j.ID, StorageType: storage, Path: path, ExpiresAt: expires}))
		return j, path
	}

	expired, expiredPath := newJob(now.Add(-time.Hour), StorageLocal, true)
	gone, _ := newJob(now.Add(-time.Minute), StorageLocal, false)
	fresh, freshPath := newJob(now.Add(time.Hour), StorageLocal, true)
	external, externalPath := newJob(now.Add(-time.Hour), StorageExternal, true)

	stats, err := Cleanup(db, store, now, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, CleanupStats{Expired: 3, Missing: 1}, stats)

	assert.NoFileExists(t, expiredPath)
	assert.FileExists(t, freshPath)
	assert.FileExists(t, externalPath, "files outside the store are never deleted")

	for _, j := range []*Job{expired, gone, external} {
		got, err := db.GetJob(j.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, got.Status)
		assert.Empty(t, got.Files)
	}
	got, err := db.GetJob(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Len(t, got.Files, 1)

	// a second sweep finds nothing
	stats, err = Cleanup(db, store, now, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, CleanupStats{}, stats)
}
