package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/xowls0315/kakaotalk-excel/internal/parse"
)

// EnvPath overrides the config file location.
const EnvPath = "KTE_CONFIG"

type Config struct {
	StoragePath       string `toml:"storage_path"`
	DBPath            string `toml:"db_path"`
	FileExpiresInDays int    `toml:"file_expires_in_days"`
	MaxInputMB        int    `toml:"max_input_mb"`
	PreviewLimit      int    `toml:"preview_limit"`
	LogLevel          string `toml:"log_level"`
	LogFormat         string `toml:"log_format"`

	Markers parse.Markers `toml:"markers"`
}

// Load reads $KTE_CONFIG, or ~/.config/kte/config.toml when unset. A missing
// file yields the defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := os.Getenv(EnvPath)
	if path == "" {
		path = filepath.Join(home, ".config", "kte", "config.toml")
	}
	return load(path, home)
}

// LoadFile reads the config at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return load(path, home)
}

func Defaults(home string) *Config {
	return &Config{
		StoragePath:       filepath.Join(home, ".local", "share", "kte", "uploads"),
		DBPath:            filepath.Join(home, ".config", "kte", "kte.db"),
		FileExpiresInDays: 7,
		MaxInputMB:        10,
		PreviewLimit:      200,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

func load(path, home string) (*Config, error) {
	cfg := Defaults(home)

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.StoragePath = expandHome(cfg.StoragePath, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.Markers = cfg.Markers.Merge()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.FileExpiresInDays < 0 {
		return fmt.Errorf("file_expires_in_days must not be negative")
	}
	if c.MaxInputMB <= 0 {
		return fmt.Errorf("max_input_mb must be positive")
	}
	return nil
}

// MaxInputBytes is the transcript size cap.
func (c *Config) MaxInputBytes() int64 {
	return int64(c.MaxInputMB) << 20
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
