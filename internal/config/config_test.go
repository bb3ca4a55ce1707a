// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mdhender/sqlitestore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestGlobalPath_XDG(t *testing.T) {
	got := config.GlobalPath([]string{"XDG_CONFIG_HOME=/xdg"})
	assert.Equal(t, filepath.Join("/xdg", "radiolog", "config.json"), got)
}

func TestLoad_Precedence(t *testing.T) {
	xdg := t.TempDir()
	env := []string{"XDG_CONFIG_HOME=" + xdg}
	writeFile(t, filepath.Join(xdg, "radiolog", "config.json"), `{
		// global defaults
		"db_path": "/global/log.db",
		"my_call": "OK1GLB",
		"my_locator": "JO70",
	}`)

	explicit := filepath.Join(t.TempDir(), "radiolog.json")
	writeFile(t, explicit, `{"my_call": "OK1EXP"}`)

	cfg, sources, err := config.Load(explicit, config.Config{MyLocator: "JN89"}, env)
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		DBPath:    "/global/log.db",
		MyCall:    "OK1EXP",
		MyLocator: "JN89",
	}, cfg)
	assert.Equal(t, filepath.Join(xdg, "radiolog", "config.json"), sources.Global)
	assert.Equal(t, explicit, sources.Explicit)
}

func TestLoad_NoFiles(t *testing.T) {
	env := []string{"XDG_CONFIG_HOME=" + t.TempDir()}
	cfg, sources, err := config.Load("", config.Config{}, env)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Empty(t, sources.Global)
	assert.Empty(t, sources.Explicit)
}

func TestLoad_ExplicitMissing(t *testing.T) {
	env := []string{"XDG_CONFIG_HOME=" + t.TempDir()}
	_, _, err := config.Load(filepath.Join(t.TempDir(), "nope.json"), config.Config{}, env)
	require.ErrorIs(t, err, config.ErrFileNotFound)
}

func TestLoad_Invalid(t *testing.T) {
	env := []string{"XDG_CONFIG_HOME=" + t.TempDir()}
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `{"db_path": `},
		{"unknown field", `{"database": "/x.db"}`},
		{"relative db path", `{"db_path": "log.db"}`},
		{"bad locator", `{"my_locator": "ZZ99"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			writeFile(t, path, tt.content)
			_, _, err := config.Load(path, config.Config{}, env)
			require.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	want := config.Config{DBPath: "/data/log.db", MyCall: "OK1ABC", MyLocator: "JO70fb"}

	require.NoError(t, config.Write(path, want, false))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	err = config.Write(path, config.Config{}, false)
	require.ErrorIs(t, err, config.ErrExists)

	require.NoError(t, config.Write(path, config.Config{MyCall: "OK2NEW"}, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	got, err = config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "OK2NEW", got.MyCall)
	assert.Empty(t, got.DBPath)
}
