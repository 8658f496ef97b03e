package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xowls0315/kakaotalk-excel/internal/convert"
	"github.com/xowls0315/kakaotalk-excel/internal/export"
)

func convertCmd() *cobra.Command {
	var crit criteriaFlags
	var output string
	var splitByDay bool

	cmd := &cobra.Command{
		Use:   "convert <file.txt|dir>",
		Short: "Convert a chat export (or every export in a directory) to xlsx",
		Long: `Convert parses a KakaoTalk .txt export and writes an xlsx workbook.

Without -o the workbook is kept in the managed storage directory and expires
after file_expires_in_days. With -o it is written to the given file, or into
the given directory when converting a directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			c, err := crit.criteria()
			if err != nil {
				return err
			}
			opts := convert.Options{Criteria: c, Layout: export.Layout{SplitByDay: splitByDay}}
			svc := convert.NewService(cfg, db, log)

			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}

			if info.IsDir() {
				fmt.Fprintf(os.Stderr, "Converting %s (%s)...\n", args[0], c)
				stats, err := svc.ConvertAll(args[0], opts, output)
				if err != nil {
					return fmt.Errorf("convert: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
				if stats.Errors > 0 {
					return fmt.Errorf("%d of %d transcripts failed", stats.Errors, stats.Scanned)
				}
				return nil
			}

			if output != "" {
				if oi, err := os.Stat(output); err == nil && oi.IsDir() {
					output = filepath.Join(output, convert.OutputName(args[0]))
				}
			}
			res, err := svc.Convert(args[0], opts, output)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%s: %d messages, job %s\n", res.RoomName, res.Total, res.JobID)
			fmt.Println(res.Path)
			return nil
		},
	}

	crit.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or directory for batch conversion")
	cmd.Flags().BoolVar(&splitByDay, "split-by-day", false, "One sheet per calendar day")

	return cmd
}
