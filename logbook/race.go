// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package logbook

import (
	"context"
	"database/sql"
	"time"

	"github.com/mdhender/sqlitestore"
)

// Race groups contacts made during one contest or event.
type Race struct {
	RaceID     int64
	CreateTime time.Time
	Name       string
	MyLocator  string
	MyCall     string
}

var raceSchema = []sqlitestore.Step{
	sqlitestore.SQL(`CREATE TABLE Race (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		create_time INTEGER NOT NULL,
		name        TEXT NOT NULL,
		my_location TEXT NOT NULL DEFAULT '',
		my_call     TEXT NOT NULL DEFAULT ''
	)`),
}

func (r *Race) TableName() string          { return "Race" }
func (r *Race) Schema() []sqlitestore.Step { return raceSchema }
func (r *Race) Columns() []string {
	return []string{"id", "create_time", "name", "my_location", "my_call"}
}

func (r *Race) ID() int64      { return r.RaceID }
func (r *Race) SetID(id int64) { r.RaceID = id }

func (r *Race) ScanRow(sc sqlitestore.Scanner) error {
	var created int64
	if err := sc.Scan(&r.RaceID, &created, &r.Name, &r.MyLocator, &r.MyCall); err != nil {
		return err
	}
	r.CreateTime = time.Unix(created, 0).UTC()
	return nil
}

func (r *Race) InsertRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	if r.CreateTime.IsZero() {
		r.CreateTime = time.Now().UTC().Truncate(time.Second)
	}
	return conn.ExecContext(ctx, `
		INSERT INTO Race (create_time, name, my_location, my_call)
		VALUES (?, ?, ?, ?)
	`, r.CreateTime.Unix(), r.Name, r.MyLocator, r.MyCall)
}

func (r *Race) UpdateRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `
		UPDATE Race SET create_time = ?, name = ?, my_location = ?, my_call = ?
		WHERE id = ?
	`, r.CreateTime.Unix(), r.Name, r.MyLocator, r.MyCall, r.RaceID)
}

func (r *Race) DeleteRow(ctx context.Context, conn sqlitestore.Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `DELETE FROM Race WHERE id = ?`, r.RaceID)
}
