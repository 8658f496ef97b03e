package open

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		opener, goos string
		want         []string
	}{
		{"", "linux", []string{"xdg-open", "/x.xlsx"}},
		{"", "darwin", []string{"open", "/x.xlsx"}},
		{"", "windows", []string{"cmd", "/c", "start", "", "/x.xlsx"}},
		{"libreoffice --calc", "linux", []string{"libreoffice", "--calc", "/x.xlsx"}},
	}
	for _, tt := range tests {
		cmd := Command(tt.opener, tt.goos, "/x.xlsx")
		assert.Equal(t, tt.want, cmd.Args, "%s/%s", tt.opener, tt.goos)
	}
}

func TestWorkbook(t *testing.T) {
	dir := t.TempDir()
	db, err := jobs.OpenDB(filepath.Join(dir, "kte.db"))
	require.NoError(t, err)
	defer db.Close()

	job, err := db.CreateJob("chat.txt", jobs.StatusPreviewed, "")
	require.NoError(t, err)

	_, err = Workbook(db, job.ID)
	assert.ErrorContains(t, err, "has no workbook")

	_, err = Workbook(db, "missing")
	assert.ErrorIs(t, err, jobs.ErrNotFound)

	path := filepath.Join(dir, "out.xlsx")
	require.NoError(t, db.AddFile(jobs.File{JobID: job.ID, StorageType: jobs.StorageExternal, Path: path}))
	_, err = Workbook(db, job.ID)
	assert.ErrorContains(t, err, "file not found")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	got, err := Workbook(db, job.ID)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}
