// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package cli implements the radiolog command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mdhender/sqlitestore"
	"github.com/mdhender/sqlitestore/internal/config"
	"github.com/mdhender/sqlitestore/logbook"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RootOptions holds global flags and the state derived from them.
type RootOptions struct {
	DBPath     string
	ConfigPath string
	LogFile    string
	Verbose    bool

	// Env locates the global config file. Defaults to os.Environ().
	Env []string

	Config config.Config
	Logger *slog.Logger

	closers []io.Closer
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if closeErr := opts.teardown(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(stderr, "radiolog: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCommand creates the root command for the radiolog CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "radiolog",
		Short: "Radio contact log",
		Long: `Keep a log of radio contacts grouped into races (contests or events).

The log is a single SQLite file. Its tables are brought up to date
automatically every time the file is opened.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the log database (default: per-user data directory)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a config file")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "write logs to a rotating file instead of stderr")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewVersionCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewRaceCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))

	return cmd
}

// setup loads the configuration and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if o.Env == nil {
		o.Env = os.Environ()
	}

	overrides := config.Config{DBPath: o.DBPath, LogFile: o.LogFile}
	if overrides.DBPath != "" && overrides.DBPath != ":memory:" {
		abs, err := filepath.Abs(overrides.DBPath)
		if err != nil {
			return fmt.Errorf("db path: %w", err)
		}
		overrides.DBPath = abs
	}

	cfg, sources, err := config.Load(o.ConfigPath, overrides, o.Env)
	if err != nil {
		return err
	}
	o.Config = cfg

	level := slog.LevelWarn
	var w io.Writer = cmd.ErrOrStderr()
	if cfg.LogFile != "" {
		lj, err := newRotatingWriter(cfg.LogFile)
		if err != nil {
			return err
		}
		o.closers = append(o.closers, lj)
		w = lj
		level = slog.LevelInfo
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	o.Logger.Debug("config loaded", "global", sources.Global, "explicit", sources.Explicit)
	return nil
}

func (o *RootOptions) teardown() error {
	var errs []error
	for _, c := range o.closers {
		errs = append(errs, c.Close())
	}
	o.closers = nil
	return errors.Join(errs...)
}

// newRotatingWriter opens a size-rotated log file, creating its directory.
func newRotatingWriter(path string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
	}, nil
}

// databasePath returns the configured path or the per-user default.
func (o *RootOptions) databasePath() (string, error) {
	if o.Config.DBPath != "" {
		return o.Config.DBPath, nil
	}
	return sqlitestore.DefaultPath(config.AppName)
}

// openDatabase opens (creating if needed) the log database.
func (o *RootOptions) openDatabase(ctx context.Context) (*sqlitestore.Database, error) {
	path, err := o.databasePath()
	if err != nil {
		return nil, err
	}
	db, err := sqlitestore.Open(ctx, sqlitestore.Config{
		Path:            path,
		CreateIfMissing: true,
		Logger:          o.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return db, nil
}

// withLogbook opens the log, runs fn and closes the log.
func (o *RootOptions) withLogbook(ctx context.Context, fn func(lb *logbook.Logbook) error) (err error) {
	db, err := o.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close log: %w", closeErr)
		}
	}()

	lb, err := logbook.Open(ctx, db)
	if err != nil {
		return err
	}
	return fn(lb)
}
