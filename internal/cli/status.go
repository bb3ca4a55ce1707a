// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package cli

import (
	"fmt"
	"sort"

	"github.com/mdhender/sqlitestore"
	"github.com/mdhender/sqlitestore/logbook"
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the recorded schema version of every table",
		Long: `Show the schema version recorded for every table next to the
version this build knows. The database is not modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.databasePath()
			if err != nil {
				return err
			}
			status, err := sqlitestore.Status(cmd.Context(), sqlitestore.Config{Path: path, Logger: opts.Logger})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "database: %s\n", path)
			if !status.IsInitialized {
				fmt.Fprintln(out, "not initialized")
				return nil
			}

			recorded := map[string]uint32{}
			for _, t := range status.Tables {
				recorded[t.Name] = t.SchemaVersion
			}
			compiled := logbook.Schemas()
			compiled["TableDescriptor"] = len((*sqlitestore.TableDescriptor)(nil).Schema())

			names := make([]string, 0, len(compiled))
			for name := range compiled {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				v, ok := recorded[name]
				switch {
				case !ok:
					fmt.Fprintf(out, "%-16s missing (build has %d)\n", name, compiled[name])
				case int(v) < compiled[name]:
					fmt.Fprintf(out, "%-16s %d (build has %d, will migrate)\n", name, v, compiled[name])
				case int(v) > compiled[name]:
					fmt.Fprintf(out, "%-16s %d (build has %d, too new)\n", name, v, compiled[name])
				default:
					fmt.Fprintf(out, "%-16s %d\n", name, v)
				}
			}
			return nil
		},
	}
}
