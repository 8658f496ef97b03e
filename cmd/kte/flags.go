package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xowls0315/kakaotalk-excel/internal/filter"
)

type criteriaFlags struct {
	system       bool
	from, to     string
	participants string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.system, "system", false, "Include system messages (joins, leaves, media placeholders)")
	cmd.Flags().StringVar(&f.from, "from", "", "Keep messages at or after this time (YYYY-MM-DD[THH:MM])")
	cmd.Flags().StringVar(&f.to, "to", "", "Keep messages at or before this time; a bare date means 00:00 of that day")
	cmd.Flags().StringVar(&f.participants, "participants", "", `Keep only these senders (comma list or JSON array)`)
}

func (f *criteriaFlags) criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		IncludeSystem: f.system,
		Participants:  filter.ParseParticipants(f.participants),
	}
	var err error
	if c.DateFrom, err = filter.ParseBound(f.from); err != nil {
		return c, fmt.Errorf("--from: %w", err)
	}
	if c.DateTo, err = filter.ParseBound(f.to); err != nil {
		return c, fmt.Errorf("--to: %w", err)
	}
	return c, nil
}
