package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xowls0315/kakaotalk-excel/internal/filter"
	"github.com/xowls0315/kakaotalk-excel/internal/jobs"
	"github.com/xowls0315/kakaotalk-excel/internal/render"
)

func jobsCmd() *cobra.Command {
	var status, since string
	var limit, page int

	cmd := &cobra.Command{
		Use:   "jobs [jobID]",
		Short: "List recorded conversions, or show one in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) == 1 {
				job, err := db.GetJob(args[0])
				if err != nil {
					return err
				}
				printJob(job)
				return nil
			}

			if limit < 1 || limit > 100 {
				return fmt.Errorf("--limit must be between 1 and 100")
			}
			if page < 1 {
				return fmt.Errorf("--page must be greater than 0")
			}
			opts := jobs.ListOptions{Limit: limit, Offset: (page - 1) * limit}
			if status != "" {
				if opts.Status, err = jobs.ParseStatus(status); err != nil {
					return err
				}
			}
			if t, err := filter.ParseBound(since); err != nil {
				return fmt.Errorf("--since: %w", err)
			} else if t != nil {
				opts.Since = *t
			}

			list, err := db.ListJobs(opts)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(os.Stderr, "No jobs found.")
				return nil
			}
			return render.JobTable(os.Stdout, list)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (previewed/processing/success/failed/expired)")
	cmd.Flags().StringVar(&since, "since", "", "Only jobs created since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Jobs per page (1-100)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}

func printJob(j *jobs.Job) {
	fmt.Printf("ID:        %s\n", j.ID)
	fmt.Printf("File:      %s\n", j.FileName)
	fmt.Printf("Status:    %s\n", j.Status)
	fmt.Printf("Room:      %s\n", j.RoomName)
	fmt.Printf("Messages:  %d\n", j.TotalMessages)
	fmt.Printf("Options:   %s\n", j.OptionsJSON)
	fmt.Printf("Created:   %s\n", j.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if !j.FinishedAt.IsZero() {
		fmt.Printf("Finished:  %s\n", j.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if j.Error != "" {
		fmt.Printf("Error:     %s\n", j.Error)
	}
	for _, f := range j.Files {
		expires := "never"
		if !f.ExpiresAt.IsZero() {
			expires = f.ExpiresAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("Workbook:  %s (%s, %d bytes, expires %s)\n", f.Path, f.StorageType, f.SizeBytes, expires)
	}
}
