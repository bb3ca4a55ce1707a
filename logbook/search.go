// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package logbook

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mdhender/sqlitestore"
)

// minSearchTerm is the shortest term that triggers a search.
const minSearchTerm = 2

// ContactSummary is one distinct call/locator pair seen in the log.
type ContactSummary struct {
	Call    string
	Locator string
	Count   int
	Dup     bool // already worked in the race passed to SearchContacts
}

// SearchContacts finds previously logged stations whose call or locator
// contains the given terms, case-insensitively. It returns nil without
// querying when both terms are shorter than two characters. When raceID is
// set, Dup marks calls that already appear in that race.
func SearchContacts(ctx context.Context, db *sqlitestore.Database, callTerm, locatorTerm string, raceID *int64) ([]ContactSummary, error) {
	if len(callTerm) < minSearchTerm && len(locatorTerm) < minSearchTerm {
		return nil, nil
	}

	var (
		where string
		args  []any
	)
	switch {
	case callTerm != "" && locatorTerm != "":
		where = `e.call LIKE ? OR e.locator LIKE ?`
		args = []any{"%" + callTerm + "%", "%" + locatorTerm + "%"}
	case callTerm != "":
		where = `e.call LIKE ?`
		args = []any{"%" + callTerm + "%"}
	default:
		where = `e.locator LIKE ?`
		args = []any{"%" + locatorTerm + "%"}
	}

	// a NULL race id matches nothing, so Dup stays false
	var race sql.NullInt64
	if raceID != nil {
		race = sql.NullInt64{Int64: *raceID, Valid: true}
	}
	args = append([]any{race}, args...)

	query := `SELECT e.call, e.locator, COUNT(*),
		EXISTS (SELECT 1 FROM LogEntry d WHERE d.race_id = ? AND lower(d.call) = lower(e.call))
		FROM LogEntry e WHERE ` + where + `
		GROUP BY lower(e.call), lower(e.locator)
		ORDER BY e.call, e.locator`

	var result []ContactSummary
	err := db.WithConn(ctx, func(conn sqlitestore.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var (
				s       ContactSummary
				locator sql.NullString
			)
			if err := rows.Scan(&s.Call, &locator, &s.Count, &s.Dup); err != nil {
				return err
			}
			s.Locator = locator.String
			result = append(result, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &sqlitestore.StoreError{Op: "search", Table: "LogEntry", Err: fmt.Errorf("search contacts: %w", err)}
	}
	return result, nil
}
