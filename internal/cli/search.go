// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/mdhender/sqlitestore/logbook"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(opts *RootOptions) *cobra.Command {
	var race int64
	cmd := &cobra.Command{
		Use:   "search <call> [locator]",
		Short: "Find stations worked before",
		Long: `Find previously logged stations whose call sign or locator contains
the given text. Pass "" as the call to search by locator only. Terms shorter
than two characters are ignored. With --race, calls already worked in that
race are marked in the DUP column.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			call, locator := args[0], ""
			if len(args) == 2 {
				locator = args[1]
			}
			return opts.withLogbook(cmd.Context(), func(lb *logbook.Logbook) error {
				var raceID *int64
				if race != 0 {
					if err := checkRace(lb, race); err != nil {
						return err
					}
					raceID = &race
				}
				found, err := logbook.SearchContacts(cmd.Context(), lb.DB(), call, locator, raceID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(found) == 0 {
					_, err := fmt.Fprintln(out, "no matching contacts")
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CALL\tLOCATOR\tCONTACTS\tDUP")
				for _, c := range found {
					dup := ""
					if c.Dup {
						dup = "yes"
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Call, c.Locator, c.Count, dup)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().Int64Var(&race, "race", 0, "mark calls already worked in this race")
	return cmd
}
