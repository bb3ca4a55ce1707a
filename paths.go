// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultFileName is the database file created in the application data directory.
const DefaultFileName = "data.db"

// DataDir returns the per-user data directory for app.
// It honors $XDG_DATA_HOME, then falls back to the platform convention.
func DataDir(app string) (string, error) {
	if app == "" {
		return "", fmt.Errorf("data dir: empty application name")
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, app), nil
	}

	switch runtime.GOOS {
	case "windows", "darwin":
		// %AppData% on Windows, ~/Library/Application Support on macOS.
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("data dir: %w", err)
		}
		return filepath.Join(dir, app), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("data dir: %w", err)
		}
		return filepath.Join(home, ".local", "share", app), nil
	}
}

// DefaultPath returns the database path for app, creating its directory.
func DefaultPath(app string) (string, error) {
	dir, err := DataDir(app)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return filepath.Join(dir, DefaultFileName), nil
}
