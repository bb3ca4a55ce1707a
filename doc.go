// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package sqlitestore provides per-type versioned schema migration for an
// embedded SQLite database and a generic write-through cache over it.
//
// The package implements a persistence model where:
//   - Each entity type owns one table and an append-only list of migration steps
//   - The TableDescriptor system table records how many steps each table has applied
//   - Registering a type replays only the missing steps, each in its own transaction
//   - A DataStore mirrors every row of one type and writes mutations through
//
// # Basic Usage
//
//	db, err := sqlitestore.Open(ctx, sqlitestore.Config{
//	    Path:            path,
//	    CreateIfMissing: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	races, err := sqlitestore.NewDataStore[logbook.Race](ctx, db)
//
// # Entity Types
//
// A type is stored by implementing SchemaObject, Serializable and
// Identifiable on its pointer. Schema returns the full migration history;
// steps are SQL statements executed verbatim or Func steps that receive the
// step's transaction to rewrite existing rows. Released steps must never be
// edited or reordered, only appended to.
//
// # Failure Modes
//
// Driver failures are returned as *StoreError. Conditions that mean the
// program or deployment is wrong panic instead: a database whose recorded
// schema is newer than the program (ErrSchemaTooNew), and Edit or Remove
// with an identity that is not in the store (ErrUnknownID).
//
// # Driver Support
//
// This package supports two SQLite drivers via build tags:
//   - modernc.org/sqlite (default, pure Go, no CGO)
//   - github.com/mattn/go-sqlite3 (CGO, use -tags mattn)
//
// # Configuration
//
// Key Config fields:
//   - Path: ":memory:" for in-memory, or absolute path with .db extension
//   - CreateIfMissing: create the file on first use
//   - MigrationTimeout: upper bound for registering one type (default 90s)
//   - ProductionEnvVar: env var to check for production mode (default: "ENV")
package sqlitestore
