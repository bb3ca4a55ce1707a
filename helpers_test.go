// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mdhender/sqlitestore"
)

// item is the entity type used by most tests.
type item struct {
	ItemID int64
	Name   string
}

var itemSchema = []sqlitestore.Step{
	sqlitestore.SQL(`CREATE TABLE Item (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE)`),
}

func (i *item) TableName() string                    { return "Item" }
func (i *item) Schema() []sqlitestore.Step           { return itemSchema }
func (i *item) Columns() []string                    { return []string{"id", "name"} }
func (i *item) ID() int64                            { return i.ItemID }
func (i *item) SetID(id int64)                       { i.ItemID = id }
func (i *item) ScanRow(sc sqlitestore.Scanner) error { return sc.Scan(&i.ItemID, &i.Name) }

func (i *item) InsertRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `INSERT INTO Item (name) VALUES (?)`, i.Name)
}

func (i *item) UpdateRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `UPDATE Item SET name = ? WHERE id = ?`, i.Name, i.ItemID)
}

func (i *item) DeleteRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `DELETE FROM Item WHERE id = ?`, i.ItemID)
}

// quietLogger discards log output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openMemory opens an in-memory database closed at the end of the test.
func openMemory(t *testing.T) *sqlitestore.Database {
	t.Helper()
	db, err := sqlitestore.Open(context.Background(), sqlitestore.Config{
		Path:   ":memory:",
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// tempPath returns a database path inside a fresh temporary directory.
func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// openFile opens (creating if needed) the database at path. The caller closes it.
func openFile(t *testing.T, path string) *sqlitestore.Database {
	t.Helper()
	db, err := sqlitestore.Open(context.Background(), sqlitestore.Config{
		Path:            path,
		CreateIfMissing: true,
		Logger:          quietLogger(),
	})
	if err != nil {
		t.Fatalf("Open %s failed: %v", path, err)
	}
	return db
}

// exec runs a raw statement for test setup.
func exec(t *testing.T, db *sqlitestore.Database, query string, args ...any) {
	t.Helper()
	err := db.WithConn(context.Background(), func(conn sqlitestore.Conn) error {
		_, err := conn.ExecContext(context.Background(), query, args...)
		return err
	})
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// schemaVersion returns the recorded version of table, failing if it is missing.
func schemaVersion(t *testing.T, db *sqlitestore.Database, table string) uint32 {
	t.Helper()
	d, err := db.Descriptor(context.Background(), table)
	if err != nil {
		t.Fatalf("Descriptor(%s): %v", table, err)
	}
	if d == nil {
		t.Fatalf("Descriptor(%s): not registered", table)
	}
	return d.SchemaVersion
}

// mustPanicWith fails unless fn panics with an error wrapping target.
func mustPanicWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Fatalf("panic %v, want one wrapping %v", r, target)
		}
	}()
	fn()
}
