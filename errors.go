// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by a StoreError when an update or delete
	// statement affected no rows.
	ErrNotFound = errors.New("no rows affected")

	// ErrSchemaTooNew is the panic value (wrapped) when the recorded schema
	// version of a table is higher than the steps compiled into the program.
	ErrSchemaTooNew = errors.New("database schema is newer than the application")

	// ErrEmptyStep is wrapped by the StoreError of a registration whose
	// history contains a step with neither SQL nor Func.
	ErrEmptyStep = errors.New("migration step has neither SQL nor Func")

	// ErrUnknownID is the panic value (wrapped) when Edit or Remove is called
	// with an identity that is not in the cache.
	ErrUnknownID = errors.New("identity not present in data store")

	// ErrIndexCorrupt is the panic value (wrapped) when the cache list and
	// its index disagree.
	ErrIndexCorrupt = errors.New("data store index is inconsistent")
)

// StoreError is returned for every recoverable failure reported by the
// database engine.
type StoreError struct {
	Op    string // register, select, insert, update, delete, ...
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeErr wraps err as a StoreError unless it already is one.
func storeErr(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Table: table, Err: err}
}
