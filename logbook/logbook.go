// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package logbook

import (
	"context"
	"fmt"

	"github.com/mdhender/sqlitestore"
)

// Logbook holds the cached stores of every logbook entity.
type Logbook struct {
	db      *sqlitestore.Database
	Races   *sqlitestore.DataStore[Race, *Race]
	Entries *sqlitestore.DataStore[LogEntry, *LogEntry]
}

// Open registers and loads every logbook table. Race is registered first
// because LogEntry references it.
func Open(ctx context.Context, db *sqlitestore.Database) (*Logbook, error) {
	races, err := sqlitestore.NewDataStore[Race](ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load races: %w", err)
	}
	entries, err := sqlitestore.NewDataStore[LogEntry](ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load log entries: %w", err)
	}
	return &Logbook{db: db, Races: races, Entries: entries}, nil
}

// DB returns the database both stores write through to.
func (lb *Logbook) DB() *sqlitestore.Database {
	return lb.db
}

// Schemas reports the number of migration steps compiled in for each table.
func Schemas() map[string]int {
	return map[string]int{
		(*Race)(nil).TableName():     len((*Race)(nil).Schema()),
		(*LogEntry)(nil).TableName(): len((*LogEntry)(nil).Schema()),
	}
}

// EntriesForRace reads the entries of one race straight from the database.
func (lb *Logbook) EntriesForRace(ctx context.Context, raceID int64) ([]LogEntry, error) {
	return sqlitestore.SelectWhere[LogEntry](ctx, lb.db, "race_id = ?", raceID)
}

// RemoveRace detaches the race's entries and then removes the race.
func (lb *Logbook) RemoveRace(ctx context.Context, raceID int64) error {
	var detach []LogEntry
	for _, e := range lb.Entries.All() {
		if e.RaceID != nil && *e.RaceID == raceID {
			detach = append(detach, e)
		}
	}
	for _, e := range detach {
		e.RaceID = nil
		if err := lb.Entries.Edit(ctx, e); err != nil {
			return fmt.Errorf("detach entry %d: %w", e.EntryID, err)
		}
	}
	return lb.Races.Remove(ctx, raceID)
}
