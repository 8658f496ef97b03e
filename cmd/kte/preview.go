package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xowls0315/kakaotalk-excel/internal/convert"
	"github.com/xowls0315/kakaotalk-excel/internal/render"
)

func previewCmd() *cobra.Command {
	var crit criteriaFlags
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "preview <file.txt>",
		Short: "Show the first messages of a chat export without writing a workbook",
		Long: `Preview parses a chat export and prints its first messages.

Output is styled when stdout is a terminal and TSV (timestamp, sender, type,
message) otherwise. --json prints the full preview object.`,
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

			svc := convert.NewService(cfg, db, log)
			p, err := svc.Preview(args[0], convert.Options{Criteria: c}, limit)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(p)
			}

			fd := int(os.Stdout.Fd())
			if !term.IsTerminal(fd) {
				return render.TSV(os.Stdout, p.Messages)
			}
			width, _, err := term.GetSize(fd)
			if err != nil {
				width = 0
			}
			_, err = os.Stdout.WriteString(render.Preview(p.Preview, render.Options{Width: width, Color: true}))
			return err
		},
	}

	crit.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Max messages to show (default preview_limit from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preview as JSON")

	return cmd
}
