package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xowls0315/kakaotalk-excel/internal/export"
	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
	"github.com/xowls0315/kakaotalk-excel/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, storage, ledger and xlsx writer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Config ===")
			fmt.Printf("  Max input:     %d MB\n", cfg.MaxInputMB)
			fmt.Printf("  Preview limit: %d\n", cfg.PreviewLimit)
			fmt.Printf("  File expiry:   %d days\n", cfg.FileExpiresInDays)
			fmt.Printf("  Meridiem:      %s/%s\n", cfg.Markers.AM, cfg.Markers.PM)

			fmt.Println("\n=== Storage ===")
			checkDir("Storage", cfg.StoragePath)
			if files, err := scan.ScanDir(cfg.StoragePath); err == nil && len(files) > 0 {
				fmt.Printf("  Stray .txt files in storage: %d\n", len(files))
			}

			fmt.Println("\n=== Ledger ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (created on first convert)")
			} else {
				db, err := jobs.OpenDB(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer db.Close()

				var sqliteVersion string
				if err := db.Raw().QueryRow("SELECT sqlite_version()").Scan(&sqliteVersion); err == nil {
					fmt.Printf("  SQLite: %s\n", sqliteVersion)
				}
				counts, err := db.Counts()
				if err != nil {
					return fmt.Errorf("count jobs: %w", err)
				}
				fmt.Printf("  %s\n", counts)

				if info, err := os.Stat(cfg.DBPath); err == nil {
					fmt.Printf("  Size: %.1f KB\n", float64(info.Size())/1024)
				}
			}

			fmt.Println("\n=== Writer ===")
			if data, err := export.Workbook(nil, "", export.Layout{}); err != nil {
				fmt.Printf("  xlsx error: %v\n", err)
			} else {
				fmt.Printf("  xlsx: OK (empty workbook %d bytes)\n", len(data))
			}
			fmt.Printf("  Terminal: %v\n", term.IsTerminal(int(os.Stdout.Fd())))

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
