// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
)

type counter struct {
	CounterID int64
	N         int
}

func (c *counter) TableName() string { return "Counter" }
func (c *counter) Schema() []Step {
	return []Step{SQL(`CREATE TABLE Counter (id INTEGER PRIMARY KEY, n INTEGER NOT NULL DEFAULT 0)`)}
}
func (c *counter) Columns() []string        { return []string{"id", "n"} }
func (c *counter) ID() int64                { return c.CounterID }
func (c *counter) SetID(id int64)           { c.CounterID = id }
func (c *counter) ScanRow(sc Scanner) error { return sc.Scan(&c.CounterID, &c.N) }

func (c *counter) InsertRow(ctx context.Context, conn Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `INSERT INTO Counter (n) VALUES (?)`, c.N)
}

func (c *counter) UpdateRow(ctx context.Context, conn Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `UPDATE Counter SET n = ? WHERE id = ?`, c.N, c.CounterID)
}

func (c *counter) DeleteRow(ctx context.Context, conn Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `DELETE FROM Counter WHERE id = ?`, c.CounterID)
}

func newCounterStore(t *testing.T) *DataStore[counter, *counter] {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Path: ":memory:", Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := NewDataStore[counter](ctx, db)
	if err != nil {
		t.Fatalf("NewDataStore failed: %v", err)
	}
	return s
}

// TestDataStore_VersionWraps tests that the version counter wraps instead of overflowing.
func TestDataStore_VersionWraps(t *testing.T) {
	ctx := context.Background()
	s := newCounterStore(t)
	if s.Version() != 1 {
		t.Fatalf("expected initial version 1, got %d", s.Version())
	}

	s.version = math.MaxUint32
	c, err := s.Add(ctx, counter{N: 1})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if s.Version() != 0 {
		t.Errorf("expected version to wrap to 0, got %d", s.Version())
	}

	c.N = 2
	if err := s.Edit(ctx, c); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if s.Version() != 1 {
		t.Errorf("expected version 1 after wrap, got %d", s.Version())
	}
}

// TestDataStore_IndexCorrupt tests that a disagreeing index is detected.
func TestDataStore_IndexCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newCounterStore(t)
	a, err := s.Add(ctx, counter{N: 1})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	b, err := s.Add(ctx, counter{N: 2})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s.index[a.CounterID] = 1
	for name, fn := range map[string]func(){
		"get":    func() { s.Get(a.CounterID) },
		"edit":   func() { _ = s.Edit(ctx, a) },
		"remove": func() { _ = s.Remove(ctx, a.CounterID) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				err, _ := recover().(error)
				if !errors.Is(err, ErrIndexCorrupt) {
					t.Fatalf("expected ErrIndexCorrupt panic, got %v", err)
				}
			}()
			fn()
		})
	}

	// the entity at the corrupted slot is untouched
	if got, ok := s.GetByIndex(1); !ok || got != b {
		t.Errorf("GetByIndex(1) = %+v, %v; want %+v", got, ok, b)
	}
}
