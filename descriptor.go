// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
)

// descriptorTable is the name of the system table.
const descriptorTable = "TableDescriptor"

var descriptorSchema = []Step{
	SQL(`CREATE TABLE TableDescriptor (
		name           TEXT PRIMARY KEY NOT NULL,
		schema_version INTEGER NOT NULL
	)`),
}

// TableDescriptor records how many migration steps have been applied to a table.
type TableDescriptor struct {
	Name          string
	SchemaVersion uint32
}

func (d *TableDescriptor) TableName() string { return descriptorTable }
func (d *TableDescriptor) Schema() []Step    { return descriptorSchema }
func (d *TableDescriptor) Columns() []string { return []string{"name", "schema_version"} }

func (d *TableDescriptor) ScanRow(sc Scanner) error {
	return sc.Scan(&d.Name, &d.SchemaVersion)
}

func (d *TableDescriptor) InsertRow(ctx context.Context, conn Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `INSERT INTO TableDescriptor (name, schema_version) VALUES (?, ?)`, d.Name, d.SchemaVersion)
}

func (d *TableDescriptor) UpdateRow(ctx context.Context, conn Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `UPDATE TableDescriptor SET schema_version = ? WHERE name = ?`, d.SchemaVersion, d.Name)
}

func (d *TableDescriptor) DeleteRow(ctx context.Context, conn Conn) (sql.Result, error) {
	return conn.ExecContext(ctx, `DELETE FROM TableDescriptor WHERE name = ?`, d.Name)
}

// upsertRow records the version inside a migration step's transaction. It is
// also how the system table records itself during bootstrap.
func (d *TableDescriptor) upsertRow(ctx context.Context, conn Conn) error {
	_, err := conn.ExecContext(ctx, `
		INSERT INTO TableDescriptor (name, schema_version) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET schema_version = excluded.schema_version
	`, d.Name, d.SchemaVersion)
	return err
}

// fetchDescriptor loads the descriptor for name. It returns nil, nil when the
// row is missing and reports whether the system table exists at all.
func fetchDescriptor(ctx context.Context, conn Conn, name string) (d *TableDescriptor, tableExists bool, err error) {
	d = &TableDescriptor{}
	row := conn.QueryRowContext(ctx, `SELECT name, schema_version FROM TableDescriptor WHERE name = ?`, name)
	if err := d.ScanRow(row); err != nil {
		if isNoSuchTable(err) {
			return nil, false, nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return d, true, nil
}

// fetchDescriptors returns every recorded descriptor ordered by name.
func fetchDescriptors(ctx context.Context, conn Conn) ([]TableDescriptor, error) {
	rows, err := conn.QueryContext(ctx, `SELECT name, schema_version FROM TableDescriptor ORDER BY name`)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var result []TableDescriptor
	for rows.Next() {
		var d TableDescriptor
		if err := d.ScanRow(rows); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
