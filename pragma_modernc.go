// Copyright (c) 2026 Michael D Henderson. All rights reserved.

//go:build !mattn

package sqlitestore

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// driverName is the database/sql driver registered by modernc.org/sqlite.
const driverName = "sqlite"

// pragma represents a SQLite pragma setting.
type pragma struct {
	name  string
	value string
}

// memoryPragmas are used for in-memory databases. The database lives on the
// single pooled connection, so there is no shared cache.
var memoryPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "journal_mode", value: "MEMORY"},
	{name: "synchronous", value: "OFF"},
	{name: "temp_store", value: "MEMORY"},
}

// persistentPragmas are used for the on-disk store.
var persistentPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "busy_timeout", value: "5000"},
	{name: "journal_mode", value: "WAL"},
	{name: "synchronous", value: "NORMAL"},
	{name: "locking_mode", value: "NORMAL"},
}

// buildDSN constructs a DSN for modernc.org/sqlite.
// modernc uses the syntax: file:path?_pragma=name(value)&_pragma=name2(value2)
func buildDSN(path string, pragmas []pragma) string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, fmt.Sprintf("_pragma=%s(%s)", p.name, p.value))
	}
	return dsnBase(path) + "?" + strings.Join(params, "&")
}

// readOnlyDSN opens path without write access and without journal pragmas,
// so inspecting a file never changes it.
func readOnlyDSN(path string) string {
	return dsnBase(path) + "?mode=ro&_pragma=busy_timeout(5000)"
}

// dsnBase strips any query string the caller put on the path.
func dsnBase(path string) string {
	if isMemoryPath(path) {
		return "file::memory:"
	}
	path, _, _ = strings.Cut(path, "?")
	return "file:" + path
}
