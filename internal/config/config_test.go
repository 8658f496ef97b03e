package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xowls0315/kakaotalk-excel/internal/parse"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.FileExpiresInDays)
	assert.Equal(t, 200, cfg.PreviewLimit)
	assert.Equal(t, int64(10<<20), cfg.MaxInputBytes())
	assert.Equal(t, parse.DefaultMarkers(), cfg.Markers)
}

func TestLoadFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
storage_path = "~/kte-out"
file_expires_in_days = 1
max_input_mb = 2
log_format = "json"

[markers]
am = "AM"
pm = "PM"
bot = "bot"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "kte-out"), cfg.StoragePath)
	assert.Equal(t, 1, cfg.FileExpiresInDays)
	assert.Equal(t, int64(2<<20), cfg.MaxInputBytes())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "AM", cfg.Markers.AM)
	assert.Equal(t, "bot", cfg.Markers.Bot)
	// unset marker fields keep their defaults
	assert.Equal(t, parse.DefaultMarkers().System, cfg.Markers.System)
	assert.Equal(t, parse.DefaultMarkers().RoomTitle, cfg.Markers.RoomTitle)
}

func TestLoadFile_Invalid(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `max_input_mb = 0`))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, `max_input_mb = "ten"`))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvPath, writeConfig(t, `preview_limit = 5`))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PreviewLimit)
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/h/x", expandHome("~/x", "/h"))
	assert.Equal(t, "/abs", expandHome("/abs", "/h"))
	assert.Equal(t, "~", expandHome("~", "/h"))
}
