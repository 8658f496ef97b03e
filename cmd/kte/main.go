package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xowls0315/kakaotalk-excel/internal/config"
	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
	"github.com/xowls0315/kakaotalk-excel/internal/logging"
)

var version = "dev"

var (
	configPath string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kte",
		Short:         "KakaoTalk Excel - convert KakaoTalk chat exports into spreadsheets",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $KTE_CONFIG or ~/.config/kte/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(jobsCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(cleanupCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	return logging.New(logging.Options{Level: level, Format: cfg.LogFormat})
}

// setup loads the config, builds the logger and opens the job ledger.
func setup() (*config.Config, zerolog.Logger, *jobs.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, zerolog.Nop(), nil, fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	db, err := jobs.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, log, nil, fmt.Errorf("open db: %w", err)
	}
	return cfg, log, db, nil
}
