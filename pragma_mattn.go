// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build mattn

package sqlitestore

import (
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// driverName is the database/sql driver registered by github.com/mattn/go-sqlite3.
const driverName = "sqlite3"

// pragma represents a DSN connection parameter.
type pragma struct {
	name  string
	value string
}

// memoryPragmas are used for in-memory databases.
var memoryPragmas = []pragma{
	{name: "_foreign_keys", value: "1"},
	{name: "_journal_mode", value: "MEMORY"},
	{name: "_synchronous", value: "OFF"},
}

// persistentPragmas are used for the on-disk store.
var persistentPragmas = []pragma{
	{name: "_foreign_keys", value: "1"},
	{name: "_busy_timeout", value: "5000"},
	{name: "_journal_mode", value: "WAL"},
	{name: "_synchronous", value: "NORMAL"},
}

// buildDSN constructs a DSN for github.com/mattn/go-sqlite3.
// mattn uses the syntax: file:path?_foreign_keys=1&_journal_mode=WAL
func buildDSN(path string, pragmas []pragma) string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, p.name+"="+p.value)
	}
	return dsnBase(path) + "?" + strings.Join(params, "&")
}

// readOnlyDSN opens path without write access and without journal pragmas,
// so inspecting a file never changes it.
func readOnlyDSN(path string) string {
	return dsnBase(path) + "?mode=ro&_busy_timeout=5000"
}

// dsnBase strips any query string the caller put on the path.
func dsnBase(path string) string {
	if isMemoryPath(path) {
		return "file::memory:"
	}
	path, _, _ = strings.Cut(path, "?")
	return "file:" + path
}
