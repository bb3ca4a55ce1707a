// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package cli

import (
	"errors"
	"fmt"

	"github.com/mdhender/sqlitestore/internal/config"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(newConfigShowCommand(opts))
	cmd.AddCommand(newConfigInitCommand(opts))
	return cmd
}

func newConfigShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := config.Format(opts.Config)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newConfigInitCommand(opts *RootOptions) *cobra.Command {
	var (
		force   bool
		call    string
		locator string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file",
		Long: `Write the merged configuration, plus any values given here, to the
file named by --config or to the global config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.ConfigPath
			if path == "" {
				path = config.GlobalPath(opts.Env)
			}
			if path == "" {
				return errors.New("config init: cannot determine the config file path")
			}

			cfg := opts.Config
			if call != "" {
				cfg.MyCall = call
			}
			if locator != "" {
				cfg.MyLocator = locator
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Write(path, cfg, force); err != nil {
				return err
			}
			opts.Logger.Info("config written", "path", path)
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing file")
	cmd.Flags().StringVar(&call, "call", "", "my call sign")
	cmd.Flags().StringVar(&locator, "locator", "", "my locator")
	return cmd
}
