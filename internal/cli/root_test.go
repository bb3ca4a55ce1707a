// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mdhender/sqlitestore"
	"github.com/mdhender/sqlitestore/logbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config and data directories at temporary directories
// and returns a database path.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	return filepath.Join(t.TempDir(), "log.db")
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

// mustRun runs args and fails the test on a non-zero exit code.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, code := run(t, args...)
	require.Equal(t, 0, code, "radiolog %v\nstderr: %s", args, errOut)
	return out
}

func openLogbook(t *testing.T, path string) *logbook.Logbook {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, sqlitestore.Config{
		Path:   path,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	lb, err := logbook.Open(ctx, db)
	require.NoError(t, err)
	return lb
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "radiolog", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"version"}, {"status"}, {"search"},
		{"config", "init"}, {"config", "show"},
		{"race", "add"}, {"race", "list"}, {"race", "rm"},
		{"log", "add"}, {"log", "list"}, {"log", "edit"}, {"log", "rm"},
	}
	for _, path := range commands {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	for _, name := range []string{"db", "config", "log-file"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "", f.DefValue, name)
	}
}

func TestVersion(t *testing.T) {
	isolate(t)
	out := mustRun(t, "version")
	assert.Contains(t, out, "radiolog ")
}

func TestRaceAndLog(t *testing.T) {
	db := isolate(t)

	assert.Equal(t, "race 1 added\n", mustRun(t, "--db", db, "race", "add", "Field Day", "--call", "OK1XX", "--locator", "JO70"))
	assert.Equal(t, "entry 1 added\n", mustRun(t, "--db", db, "log", "add", "ok2abc", "JN89aa",
		"--race", "1", "--code", "59 001", "--time", "2026-06-27T14:00:00Z"))
	assert.Equal(t, "entry 2 added\n", mustRun(t, "--db", db, "log", "add", "DL1ZZ"))

	out := mustRun(t, "--db", db, "race", "list")
	assert.Contains(t, out, "Field Day")
	assert.Contains(t, out, "OK1XX")

	out = mustRun(t, "--db", db, "log", "list")
	assert.Contains(t, out, "OK2ABC")
	assert.Contains(t, out, "DL1ZZ")

	out = mustRun(t, "--db", db, "log", "list", "--race", "1")
	assert.Contains(t, out, "OK2ABC")
	assert.NotContains(t, out, "DL1ZZ")

	assert.Equal(t, "entry 2 updated\n", mustRun(t, "--db", db, "log", "edit", "2", "--locator", "JO62qm"))
	out = mustRun(t, "--db", db, "search", "", "jo6")
	assert.Contains(t, out, "DL1ZZ")
	assert.NotContains(t, out, "OK2ABC")

	assert.Equal(t, "race 1 removed\n", mustRun(t, "--db", db, "race", "rm", "1"))

	lb := openLogbook(t, db)
	assert.Equal(t, 0, lb.Races.Len())
	e, ok := lb.Entries.Get(1)
	require.True(t, ok)
	assert.Equal(t, "OK2ABC", e.Call)
	assert.Equal(t, "59 001", e.Code)
	assert.Equal(t, time.Date(2026, 6, 27, 14, 0, 0, 0, time.UTC), e.Time)
	assert.Nil(t, e.RaceID)
	e, ok = lb.Entries.Get(2)
	require.True(t, ok)
	assert.Equal(t, "JO62qm", e.Locator)
}

func TestLogRemove(t *testing.T) {
	db := isolate(t)
	mustRun(t, "--db", db, "log", "add", "OK1ABC")

	assert.Equal(t, "entry 1 removed\n", mustRun(t, "--db", db, "log", "rm", "1"))

	_, errOut, code := run(t, "--db", db, "log", "rm", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "entry 1 not found")

	_, errOut, code = run(t, "--db", db, "log", "rm", "abc")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, `invalid id "abc"`)
}

func TestLogAdd_UnknownRace(t *testing.T) {
	db := isolate(t)
	_, errOut, code := run(t, "--db", db, "log", "add", "OK1ABC", "--race", "7")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "race 7 not found")

	lb := openLogbook(t, db)
	assert.Equal(t, 0, lb.Entries.Len())
}

func TestLogEdit_RaceFlagsExclusive(t *testing.T) {
	db := isolate(t)
	mustRun(t, "--db", db, "race", "add", "sprint")
	mustRun(t, "--db", db, "log", "add", "OK1ABC")

	_, errOut, code := run(t, "--db", db, "log", "edit", "1", "--race", "1", "--no-race")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "mutually exclusive")

	mustRun(t, "--db", db, "log", "edit", "1", "--race", "1")
	mustRun(t, "--db", db, "log", "edit", "1", "--no-race")
	lb := openLogbook(t, db)
	e, ok := lb.Entries.Get(1)
	require.True(t, ok)
	assert.Nil(t, e.RaceID)
}

func TestSearch_ShortTerms(t *testing.T) {
	db := isolate(t)
	mustRun(t, "--db", db, "log", "add", "OK1ABC", "JO70fb")
	assert.Equal(t, "no matching contacts\n", mustRun(t, "--db", db, "search", "O"))
}

func TestSearch_Race(t *testing.T) {
	db := isolate(t)
	mustRun(t, "--db", db, "race", "add", "Contest")
	mustRun(t, "--db", db, "log", "add", "OK1ABC", "JO70fb", "--race", "1")
	mustRun(t, "--db", db, "log", "add", "OK1ABD", "JO70fc")

	out := mustRun(t, "--db", db, "search", "ok1ab", "--race", "1")
	assert.Contains(t, out, "DUP")
	assert.Regexp(t, `OK1ABC\s+JO70fb\s+1\s+yes`, out)
	assert.NotRegexp(t, `OK1ABD.*yes`, out)

	out = mustRun(t, "--db", db, "search", "ok1ab")
	assert.NotContains(t, out, "yes")

	_, errOut, code := run(t, "--db", db, "search", "ok1ab", "--race", "7")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "race 7 not found")
}

func TestStatus(t *testing.T) {
	db := isolate(t)

	out := mustRun(t, "--db", db, "status")
	assert.Contains(t, out, "not initialized")
	_, err := os.Stat(db)
	assert.True(t, os.IsNotExist(err), "status should not create the database")

	mustRun(t, "--db", db, "race", "list")
	out = mustRun(t, "--db", db, "status")
	assert.Regexp(t, `LogEntry\s+3\n`, out)
	assert.Regexp(t, `Race\s+1\n`, out)
	assert.Regexp(t, `TableDescriptor\s+1\n`, out)
}

func TestConfigInit(t *testing.T) {
	db := isolate(t)

	out := mustRun(t, "--db", db, "config", "init", "--call", "OK1CFG", "--locator", "JO70")
	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "radiolog", "config.json")
	assert.Equal(t, "wrote "+path+"\n", out)

	_, errOut, code := run(t, "config", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "already exists")

	out = mustRun(t, "config", "show")
	assert.Contains(t, out, `"my_call": "OK1CFG"`)
	assert.Contains(t, out, db)

	// db_path comes from the config file now
	mustRun(t, "race", "add", "from config")
	lb := openLogbook(t, db)
	r, ok := lb.Races.Get(1)
	require.True(t, ok)
	assert.Equal(t, "OK1CFG", r.MyCall)
	assert.Equal(t, "JO70", r.MyLocator)
}

func TestExplicitConfigMissing(t *testing.T) {
	isolate(t)
	_, errOut, code := run(t, "--config", filepath.Join(t.TempDir(), "missing.json"), "version")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "config file not found")
}

func TestLogFile(t *testing.T) {
	db := isolate(t)
	logPath := filepath.Join(t.TempDir(), "logs", "radiolog.log")

	_, errOut, code := run(t, "--db", db, "--log-file", logPath, "-v", "race", "list")
	require.Equal(t, 0, code, errOut)
	assert.Empty(t, errOut)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "opening database")
}
