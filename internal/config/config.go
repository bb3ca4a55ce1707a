// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package config loads the radiolog configuration file.
//
// Files are JSON with comments and trailing commas allowed. Values are
// merged with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/radiolog/config.json or ~/.config/radiolog/config.json)
//  3. Explicit config file (if given)
//  4. Command line overrides
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// AppName names the per-user config and data directories.
const AppName = "radiolog"

var (
	ErrFileNotFound = errors.New("config file not found")
	ErrInvalid      = errors.New("invalid config")
	ErrExists       = errors.New("config file already exists")
)

// Config holds all configuration options.
type Config struct {
	DBPath    string `json:"db_path,omitempty"`
	LogFile   string `json:"log_file,omitempty"`
	MyCall    string `json:"my_call,omitempty"`
	MyLocator string `json:"my_locator,omitempty"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global   string // empty if no global config was loaded
	Explicit string // empty if no explicit config was given
}

// Default returns the default configuration. The database path is left
// empty and resolved by the caller.
func Default() Config {
	return Config{}
}

// GlobalPath returns the path to the global config file, or an empty string
// if the home directory cannot be determined.
func GlobalPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok && after != "" {
			return filepath.Join(after, AppName, "config.json")
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, "config.json")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppName, "config.json")
	}
	return ""
}

// Load merges the global config, the explicit file at path (if non-empty)
// and overrides on top of the defaults. Only non-empty override fields apply.
func Load(path string, overrides Config, env []string) (Config, Sources, error) {
	cfg := Default()
	var sources Sources

	if global := GlobalPath(env); global != "" {
		globalCfg, loaded, err := loadFile(global, false)
		if err != nil {
			return Config{}, Sources{}, err
		}
		if loaded {
			sources.Global = global
			cfg = merge(cfg, globalCfg)
		}
	}

	if path != "" {
		explicitCfg, _, err := loadFile(path, true)
		if err != nil {
			return Config{}, Sources{}, err
		}
		sources.Explicit = path
		cfg = merge(cfg, explicitCfg)
	}

	cfg = merge(cfg, overrides)
	if err := cfg.Validate(); err != nil {
		return Config{}, Sources{}, err
	}
	return cfg, sources, nil
}

// loadFile reads one config file. Missing files are an error only if mustExist.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return Config{}, false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return Config{}, false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}
	return cfg, true, nil
}

// Parse decodes a JSONC document. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.DBPath != "" {
		base.DBPath = overlay.DBPath
	}
	if overlay.LogFile != "" {
		base.LogFile = overlay.LogFile
	}
	if overlay.MyCall != "" {
		base.MyCall = overlay.MyCall
	}
	if overlay.MyLocator != "" {
		base.MyLocator = overlay.MyLocator
	}
	return base
}

// Validate checks the merged configuration.
func (cfg Config) Validate() error {
	if cfg.DBPath != "" && cfg.DBPath != ":memory:" && !filepath.IsAbs(cfg.DBPath) {
		return fmt.Errorf("%w: db_path must be absolute: %q", ErrInvalid, cfg.DBPath)
	}
	if cfg.MyLocator != "" && !validLocator(cfg.MyLocator) {
		return fmt.Errorf("%w: my_locator: %q", ErrInvalid, cfg.MyLocator)
	}
	return nil
}

// validLocator accepts 2, 4 or 6 character Maidenhead locators.
func validLocator(s string) bool {
	if n := len(s); n != 2 && n != 4 && n != 6 {
		return false
	}
	s = strings.ToUpper(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch i {
		case 0, 1:
			if c < 'A' || c > 'R' {
				return false
			}
		case 2, 3:
			if c < '0' || c > '9' {
				return false
			}
		default:
			if c < 'A' || c > 'X' {
				return false
			}
		}
	}
	return true
}

// Format returns the config as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}
	return string(data), nil
}

// Write atomically writes cfg to path, creating the parent directory.
// It refuses to replace an existing file unless force is set.
func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	text, err := Format(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(text+"\n")); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	// atomic.WriteFile keeps the temp file's mode for new files
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("chmod config %s: %w", path, err)
	}
	return nil
}
