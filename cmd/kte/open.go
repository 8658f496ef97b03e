package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xowls0315/kakaotalk-excel/internal/open"
)

func openCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "open <jobID>",
		Short: "Open a job's workbook with $KTE_OPENER or the system opener",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			if printOnly {
				path, err := open.Workbook(db, args[0])
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			}
			return open.OpenJob(db, args[0])
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the workbook path instead of opening it")

	return cmd
}
