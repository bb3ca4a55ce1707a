// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"context"
	"database/sql"
	"strings"
)

// Conn is the subset of *sql.DB, *sql.Conn and *sql.Tx that row
// implementations need.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner is implemented by *sql.Rows and *sql.Row.
type Scanner interface {
	Scan(dest ...any) error
}

// Step is one migration step. Exactly one of SQL or Func is set.
type Step struct {
	// SQL is executed verbatim.
	SQL string

	// Func runs arbitrary data transformations inside the step's transaction.
	Func func(ctx context.Context, tx *sql.Tx) error

	// Comment is logged when the step is applied.
	Comment string
}

// SQL returns a step that executes stmt verbatim.
func SQL(stmt string) Step {
	return Step{SQL: stmt}
}

// Func returns a step that runs fn inside the step's transaction.
func Func(comment string, fn func(ctx context.Context, tx *sql.Tx) error) Step {
	return Step{Func: fn, Comment: comment}
}

func (s Step) apply(ctx context.Context, tx *sql.Tx) error {
	if s.Func != nil {
		return s.Func(ctx, tx)
	}
	if strings.TrimSpace(s.SQL) == "" {
		return ErrEmptyStep
	}
	_, err := tx.ExecContext(ctx, s.SQL)
	return err
}

func (s Step) describe() string {
	if s.Comment != "" {
		return s.Comment
	}
	if len(s.SQL) > 60 {
		return s.SQL[:60] + "..."
	}
	return s.SQL
}

// SchemaObject describes the table backing an entity type.
// Implementations must not depend on the receiver's field values.
type SchemaObject interface {
	TableName() string
	// Schema returns the full, ordered migration history. Steps are only
	// ever appended; a released step must never change.
	Schema() []Step
	// Columns is the select list, in the order ScanRow expects.
	Columns() []string
}

// Serializable maps an entity to and from table rows.
type Serializable interface {
	ScanRow(sc Scanner) error
	InsertRow(ctx context.Context, conn Conn) (sql.Result, error)
	UpdateRow(ctx context.Context, conn Conn) (sql.Result, error)
	DeleteRow(ctx context.Context, conn Conn) (sql.Result, error)
}

// Identifiable entities carry a store-assigned integer identity.
// Zero means the entity has not been persisted.
//
// A table declared with a plain INTEGER PRIMARY KEY lets SQLite hand the
// identity of a removed highest row to the next insert. Tables whose
// identities must never be reused declare INTEGER PRIMARY KEY AUTOINCREMENT.
type Identifiable interface {
	ID() int64
	SetID(id int64)
}

// Object is the constraint for types that can be registered and loaded.
type Object[T any] interface {
	*T
	SchemaObject
	Serializable
}

// Record is the constraint for types held in a DataStore.
type Record[T any] interface {
	Object[T]
	Identifiable
}
