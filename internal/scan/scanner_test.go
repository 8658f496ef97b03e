package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "b.txt"), "x")
	write(t, filepath.Join(root, "a.TXT"), "x")
	write(t, filepath.Join(root, "nested", "c.txt"), "x")
	write(t, filepath.Join(root, "empty.txt"), "")
	write(t, filepath.Join(root, "notes.md"), "x")
	write(t, filepath.Join(root, ".cache", "d.txt"), "x")

	files, err := ScanDir(root)
	require.NoError(t, err)

	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		got = append(got, rel)
		assert.Equal(t, int64(1), f.Size)
	}
	assert.Equal(t, []string{"a.TXT", "b.txt", filepath.Join("nested", "c.txt")}, got)
}

func TestReadTranscript(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "chat.txt")
	write(t, path, "\ufeff스터디 님과 카카오톡 대화\n")
	text, err := ReadTranscript(path, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "스터디 님과 카카오톡 대화\n", text, "byte order mark is dropped")

	_, err = ReadTranscript(filepath.Join(dir, "chat.csv"), 1<<20)
	assert.ErrorIs(t, err, ErrNotTranscript)

	empty := filepath.Join(dir, "empty.txt")
	write(t, empty, "")
	_, err = ReadTranscript(empty, 1<<20)
	assert.ErrorIs(t, err, ErrEmptyInput)

	big := filepath.Join(dir, "big.txt")
	write(t, big, strings.Repeat("a", 11))
	_, err = ReadTranscript(big, 10)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = ReadTranscript(filepath.Join(dir, "missing.txt"), 10)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode(t *testing.T) {
	decomposed := norm.NFD.String("들어왔습니다")
	require.NotEqual(t, "들어왔습니다", decomposed)

	text, err := Decode(strings.NewReader(decomposed), 0)
	require.NoError(t, err)
	assert.Equal(t, "들어왔습니다", text)

	text, err = Decode(strings.NewReader("ok\xff"), 0)
	require.NoError(t, err)
	assert.Equal(t, "ok\ufffd", text)

	_, err = Decode(strings.NewReader("\ufeff"), 0)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Decode(strings.NewReader("abcdef"), 5)
	assert.ErrorIs(t, err, ErrInputTooLarge)
}
