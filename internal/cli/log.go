// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mdhender/sqlitestore/logbook"
	"github.com/spf13/cobra"
)

// NewLogCommand creates the log command group.
func NewLogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Manage logged contacts",
	}
	cmd.AddCommand(newLogAddCommand(opts))
	cmd.AddCommand(newLogListCommand(opts))
	cmd.AddCommand(newLogEditCommand(opts))
	cmd.AddCommand(newLogRemoveCommand(opts))
	return cmd
}

// entryFlags are shared by log add and log edit.
type entryFlags struct {
	code   string
	race   int64
	when   string
	noRace bool
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, "code", "", "exchange received")
	cmd.Flags().Int64Var(&f.race, "race", 0, "race id")
	cmd.Flags().StringVar(&f.when, "time", "", "contact time, RFC 3339 (default now)")
}

func (f *entryFlags) parseTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, f.when)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --time: %w", err)
	}
	return t.UTC().Truncate(time.Second), nil
}

func checkRace(lb *logbook.Logbook, id int64) error {
	if _, ok := lb.Races.Get(id); !ok {
		return fmt.Errorf("race %d not found", id)
	}
	return nil
}

func newLogAddCommand(opts *RootOptions) *cobra.Command {
	var flags entryFlags
	cmd := &cobra.Command{
		Use:   "add <call> [locator]",
		Short: "Log a contact",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := logbook.LogEntry{
				Call: strings.ToUpper(args[0]),
				Code: flags.code,
			}
			if len(args) == 2 {
				entry.Locator = args[1]
			}
			if flags.when != "" {
				t, err := flags.parseTime()
				if err != nil {
					return err
				}
				entry.Time = t
			}
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				if flags.race != 0 {
					if err := checkRace(lb, flags.race); err != nil {
						return err
					}
					id := flags.race
					entry.RaceID = &id
				}
				added, err := lb.Entries.Add(cmd.Context(), entry)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "entry %d added\n", added.EntryID)
				return err
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newLogListCommand(opts *RootOptions) *cobra.Command {
	var race int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				var entries []logbook.LogEntry
				if race != 0 {
					if err := checkRace(lb, race); err != nil {
						return err
					}
					var err error
					if entries, err = lb.EntriesForRace(cmd.Context(), race); err != nil {
						return err
					}
				} else {
					for _, e := range lb.Entries.All() {
						entries = append(entries, e)
					}
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTIME\tCALL\tLOCATOR\tCODE\tRACE")
				for _, e := range entries {
					raceCol := "-"
					if e.RaceID != nil {
						raceCol = fmt.Sprint(*e.RaceID)
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", e.EntryID, e.Time.Format(time.DateTime), e.Call, e.Locator, e.Code, raceCol)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&race, "race", 0, "only list entries of this race")
	return cmd
}

func newLogEditCommand(opts *RootOptions) *cobra.Command {
	var (
		flags   entryFlags
		call    string
		locator string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a logged contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			if changed("race") && flags.noRace {
				return fmt.Errorf("--race and --no-race are mutually exclusive")
			}
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				entry, ok := lb.Entries.Get(id)
				if !ok {
					return fmt.Errorf("entry %d not found", id)
				}
				if changed("call") {
					entry.Call = strings.ToUpper(call)
				}
				if changed("locator") {
					entry.Locator = locator
				}
				if changed("code") {
					entry.Code = flags.code
				}
				if changed("time") {
					t, err := flags.parseTime()
					if err != nil {
						return err
					}
					entry.Time = t
				}
				if changed("race") {
					if err := checkRace(lb, flags.race); err != nil {
						return err
					}
					raceID := flags.race
					entry.RaceID = &raceID
				}
				if flags.noRace {
					entry.RaceID = nil
				}
				if err := lb.Entries.Edit(cmd.Context(), entry); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "entry %d updated\n", id)
				return err
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&flags.noRace, "no-race", false, "detach the entry from its race")
	cmd.Flags().StringVar(&call, "call", "", "call sign")
	cmd.Flags().StringVar(&locator, "locator", "", "locator")
	return cmd
}

func newLogRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a logged contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				if _, ok := lb.Entries.Get(id); !ok {
					return fmt.Errorf("entry %d not found", id)
				}
				if err := lb.Entries.Remove(cmd.Context(), id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "entry %d removed\n", id)
				return err
			})
		},
	}
}
