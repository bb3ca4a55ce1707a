// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/mdhender/sqlitestore/logbook"
	"github.com/spf13/cobra"
)

// NewRaceCommand creates the race command group.
func NewRaceCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Manage races",
	}
	cmd.AddCommand(newRaceAddCommand(opts))
	cmd.AddCommand(newRaceListCommand(opts))
	cmd.AddCommand(newRaceRemoveCommand(opts))
	return cmd
}

func newRaceAddCommand(opts *RootOptions) *cobra.Command {
	var call, locator string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Start a new race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			race := logbook.Race{
				Name:      args[0],
				MyCall:    opts.Config.MyCall,
				MyLocator: opts.Config.MyLocator,
			}
			if call != "" {
				race.MyCall = call
			}
			if locator != "" {
				race.MyLocator = locator
			}
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				added, err := lb.Races.Add(cmd.Context(), race)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "race %d added\n", added.RaceID)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&call, "call", "", "my call sign for this race (default from config)")
	cmd.Flags().StringVar(&locator, "locator", "", "my locator for this race (default from config)")
	return cmd
}

func newRaceListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List races",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tNAME\tCALL\tLOCATOR")
				for _, r := range lb.Races.All() {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.RaceID, r.CreateTime.Format(time.DateTime), r.Name, r.MyCall, r.MyLocator)
				}
				return tw.Flush()
			})
		},
	}
}

func newRaceRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a race, keeping its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				if _, ok := lb.Races.Get(id); !ok {
					return fmt.Errorf("race %d not found", id)
				}
				if err := lb.RemoveRace(cmd.Context(), id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "race %d removed\n", id)
				return err
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
