package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
)

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired workbooks and mark their jobs expired",
		Long: `Cleanup removes workbooks in the managed storage directory whose expiry
has passed. Workbooks written with -o are never deleted; only their record
is dropped. Run it from cron for a daily sweep.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := jobs.Cleanup(db, jobs.NewFileStore(cfg.StoragePath), time.Now(), log)
			if err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}
