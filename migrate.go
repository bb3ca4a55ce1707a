// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"context"
	"fmt"
)

// RegisterType brings the table of T up to the schema compiled into the
// program. Only the steps after the recorded version are applied, in order,
// each in its own transaction together with the descriptor update.
//
// RegisterType is idempotent: when the recorded version already matches,
// it executes no DDL or DML.
//
// It panics with an error wrapping ErrSchemaTooNew if the database records
// more steps than T declares.
func RegisterType[T any, PT Object[T]](ctx context.Context, d *Database) error {
	obj := PT(new(T))
	return d.register(ctx, obj.TableName(), obj.Schema())
}

func (d *Database) register(ctx context.Context, table string, steps []Step) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.mu.Lock()
	defer d.mu.Unlock()

	descriptor, tableExists, err := fetchDescriptor(ctx, d.db, table)
	if err != nil {
		return storeErr("register", table, fmt.Errorf("fetch descriptor: %w", err))
	}

	var version uint32
	if descriptor != nil {
		version = descriptor.SchemaVersion
	} else if tableExists {
		descriptor = &TableDescriptor{Name: table}
		if _, err := descriptor.InsertRow(ctx, d.db); err != nil {
			return storeErr("register", table, fmt.Errorf("insert descriptor: %w", err))
		}
		d.logger.Debug("registered table", "table", table)
	}

	if int(version) > len(steps) {
		panic(fmt.Errorf("%w: table %s records version %d, application knows %d", ErrSchemaTooNew, table, version, len(steps)))
	}
	if int(version) == len(steps) {
		d.logger.Debug("schema current", "table", table, "version", version)
		return nil
	}

	for i := int(version); i < len(steps); i++ {
		d.logger.Debug("applying migration step", "table", table, "step", i+1, "of", len(steps), "comment", steps[i].describe())
		if err := d.applyStep(ctx, table, steps[i], uint32(i+1)); err != nil {
			return storeErr("register", table, fmt.Errorf("step %d: %w", i+1, err))
		}
	}

	d.logger.Info("migrated table", "table", table, "from", version, "to", len(steps))
	return nil
}

// applyStep runs a single step and records the new version atomically.
func (d *Database) applyStep(ctx context.Context, table string, step Step, version uint32) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := step.apply(ctx, tx); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	descriptor := &TableDescriptor{Name: table, SchemaVersion: version}
	if err := descriptor.upsertRow(ctx, tx); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}

// Descriptor returns the recorded descriptor for table, or nil if the table
// has never been registered.
func (d *Database) Descriptor(ctx context.Context, table string) (*TableDescriptor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	descriptor, _, err := fetchDescriptor(ctx, d.db, table)
	if err != nil {
		return nil, storeErr("descriptor", table, err)
	}
	return descriptor, nil
}

// Descriptors returns every recorded descriptor ordered by table name.
func (d *Database) Descriptors(ctx context.Context) ([]TableDescriptor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tables, err := fetchDescriptors(ctx, d.db)
	if err != nil {
		return nil, storeErr("descriptors", descriptorTable, err)
	}
	return tables, nil
}
