// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
)

// DataStore is an in-memory mirror of every row of one entity type.
// Mutations are written through to the database before the mirror changes.
//
// The version counter changes on every successful Add, Edit or Remove and
// on nothing else, so consumers can compare it to decide whether a cached
// rendering is stale. It is not comparable across stores.
//
// A DataStore is not safe for concurrent use.
type DataStore[T any, PT Record[T]] struct {
	db      *Database
	table   string
	logger  *slog.Logger
	list    []T
	index   map[int64]int
	version uint32
}

// NewDataStore registers T's schema and loads all of its rows.
func NewDataStore[T any, PT Record[T]](ctx context.Context, db *Database) (*DataStore[T, PT], error) {
	if err := RegisterType[T, PT](ctx, db); err != nil {
		return nil, err
	}
	rows, err := SelectAll[T, PT](ctx, db)
	if err != nil {
		return nil, err
	}

	s := &DataStore[T, PT]{
		db:      db,
		table:   PT(new(T)).TableName(),
		logger:  db.Logger(),
		list:    make([]T, 0, len(rows)),
		index:   make(map[int64]int, len(rows)),
		version: 1,
	}
	for _, row := range rows {
		s.push(row)
	}
	s.logger.Debug("data store loaded", "table", s.table, "rows", len(s.list))
	return s, nil
}

// DB returns the database the store writes through to.
func (s *DataStore[T, PT]) DB() *Database {
	return s.db
}

// Len returns the number of cached entities.
func (s *DataStore[T, PT]) Len() int {
	return len(s.list)
}

// Version returns the change counter.
func (s *DataStore[T, PT]) Version() uint32 {
	return s.version
}

// All yields the index and a copy of every entity, in load then insertion order.
func (s *DataStore[T, PT]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, item := range s.list {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Get returns a copy of the entity with the given identity.
func (s *DataStore[T, PT]) Get(id int64) (T, bool) {
	i, ok := s.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	item := s.list[i]
	if got := PT(&item).ID(); got != id {
		panic(fmt.Errorf("%w: %s id %d maps to index %d holding id %d", ErrIndexCorrupt, s.table, id, i, got))
	}
	return item, true
}

// GetByIndex returns a copy of the entity at position i.
func (s *DataStore[T, PT]) GetByIndex(i int) (T, bool) {
	if i < 0 || i >= len(s.list) {
		var zero T
		return zero, false
	}
	return s.list[i], true
}

// FindIndexOf returns the position of the entity with the given identity.
func (s *DataStore[T, PT]) FindIndexOf(id int64) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Add persists item and appends it. The returned copy carries the identity
// assigned by the store; any identity already set on item is ignored by the
// insert. On error the store is unchanged.
func (s *DataStore[T, PT]) Add(ctx context.Context, item T) (T, error) {
	if err := s.db.Insert(ctx, PT(&item)); err != nil {
		var zero T
		return zero, err
	}
	s.push(item)
	s.version++
	return item, nil
}

// Edit persists item and replaces the cached entity with the same identity.
// It panics if the identity is not in the store.
func (s *DataStore[T, PT]) Edit(ctx context.Context, item T) error {
	id := PT(&item).ID()
	i := s.mustIndex("edit", id)

	if err := s.db.Update(ctx, PT(&item)); err != nil {
		return err
	}
	s.list[i] = item
	s.version++
	return nil
}

// Remove deletes the entity with the given identity from the database and
// then from the store. It panics if the identity is not in the store.
//
// A row that is already missing from the database is dropped from the
// store without error.
func (s *DataStore[T, PT]) Remove(ctx context.Context, id int64) error {
	i := s.mustIndex("remove", id)

	item := s.list[i]
	if err := s.db.Delete(ctx, PT(&item)); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		s.logger.Warn("row already deleted, dropping from cache", "table", s.table, "id", id)
	}

	s.list = append(s.list[:i], s.list[i+1:]...)
	s.reindex()
	s.version++
	return nil
}

func (s *DataStore[T, PT]) push(item T) {
	s.list = append(s.list, item)
	s.index[PT(&item).ID()] = len(s.list) - 1
}

func (s *DataStore[T, PT]) reindex() {
	clear(s.index)
	for i := range s.list {
		s.index[PT(&s.list[i]).ID()] = i
	}
}

func (s *DataStore[T, PT]) mustIndex(op string, id int64) int {
	i, ok := s.index[id]
	if !ok {
		panic(fmt.Errorf("%w: %s %s id %d", ErrUnknownID, op, s.table, id))
	}
	if got := PT(&s.list[i]).ID(); got != id {
		panic(fmt.Errorf("%w: %s id %d maps to index %d holding id %d", ErrIndexCorrupt, s.table, id, i, got))
	}
	return i
}
