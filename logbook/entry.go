// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mdhender/sqlitestore"
)

// LogEntry is one logged contact.
type LogEntry struct {
	EntryID int64
	Time    time.Time
	Call    string
	Locator string
	Code    string // exchange received, free form
	RaceID  *int64 // nil when the contact is not part of a race
}

var logEntrySchema = []sqlitestore.Step{
	// first release stored raw coordinates and a display name
	sqlitestore.SQL(`CREATE TABLE LogEntry (
		id   INTEGER PRIMARY KEY,
		long REAL,
		lat  REAL,
		time INTEGER,
		name TEXT
	)`),
	sqlitestore.SQL(`ALTER TABLE LogEntry ADD COLUMN code TEXT NOT NULL DEFAULT ''`),
	sqlitestore.Func("convert coordinates to locator, add race reference", migrateCoordinatesToLocator),
}

func (e *LogEntry) TableName() string          { return "LogEntry" }
func (e *LogEntry) Schema() []sqlitestore.Step { return logEntrySchema }
func (e *LogEntry) Columns() []string {
	return []string{"id", "time", "call", "locator", "code", "race_id"}
}

func (e *LogEntry) ID() int64      { return e.EntryID }
func (e *LogEntry) SetID(id int64) { e.EntryID = id }

func (e *LogEntry) ScanRow(sc sqlitestore.Scanner) error {
	var (
		ts     int64
		raceID sql.NullInt64
	)
	if err := sc.Scan(&e.EntryID, &ts, &e.Call, &e.Locator, &e.Code, &raceID); err != nil {
		return err
	}
	e.Time = time.Unix(ts, 0).UTC()
	e.RaceID = nil
	if raceID.Valid {
		id := raceID.Int64
		e.RaceID = &id
	}
	return nil
}

func (e *LogEntry) InsertRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC().Truncate(time.Second)
	}
	return conn.ExecContext(ctx, `
		INSERT INTO LogEntry (time, call, locator, code, race_id)
		VALUES (?, ?, ?, ?, ?)
	`, e.Time.Unix(), e.Call, e.Locator, e.Code, nullableID(e.RaceID))
}

func (e *LogEntry) UpdateRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `
		UPDATE LogEntry SET time = ?, call = ?, locator = ?, code = ?, race_id = ?
		WHERE id = ?
	`, e.Time.Unix(), e.Call, e.Locator, e.Code, nullableID(e.RaceID), e.EntryID)
}

func (e *LogEntry) DeleteRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `DELETE FROM LogEntry WHERE id = ?`, e.EntryID)
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// migrateCoordinatesToLocator rebuilds LogEntry into its current shape.
// Coordinates become a six character locator and name becomes call.
func migrateCoordinatesToLocator(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `CREATE TABLE LogEntry_next (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		time    INTEGER NOT NULL DEFAULT 0,
		call    TEXT NOT NULL DEFAULT '',
		locator TEXT NOT NULL DEFAULT '',
		code    TEXT NOT NULL DEFAULT '',
		race_id INTEGER REFERENCES Race(id) ON DELETE SET NULL
	)`); err != nil {
		return fmt.Errorf("create LogEntry_next: %w", err)
	}

	type oldRow struct {
		id       int64
		lat, lon sql.NullFloat64
		ts       sql.NullInt64
		name     sql.NullString
		code     string
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, lat, long, time, name, code FROM LogEntry ORDER BY id`)
	if err != nil {
		return fmt.Errorf("read LogEntry: %w", err)
	}
	var old []oldRow
	for rows.Next() {
		var r oldRow
		if err := rows.Scan(&r.id, &r.lat, &r.lon, &r.ts, &r.name, &r.code); err != nil {
			rows.Close()
			return fmt.Errorf("scan LogEntry: %w", err)
		}
		old = append(old, r)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate LogEntry: %w", err)
	}

	for _, r := range old {
		var locator string
		if r.lat.Valid && r.lon.Valid {
			locator, err = EncodeLocator(r.lat.Float64, r.lon.Float64)
			if err != nil {
				return fmt.Errorf("entry %d: %w", r.id, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO LogEntry_next (id, time, call, locator, code, race_id)
			VALUES (?, ?, ?, ?, ?, NULL)
		`, r.id, r.ts.Int64, r.name.String, locator, r.code); err != nil {
			return fmt.Errorf("copy entry %d: %w", r.id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE LogEntry`); err != nil {
		return fmt.Errorf("drop LogEntry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE LogEntry_next RENAME TO LogEntry`); err != nil {
		return fmt.Errorf("rename LogEntry_next: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX LogEntry_race ON LogEntry(race_id)`); err != nil {
		return fmt.Errorf("index race_id: %w", err)
	}
	return nil
}
