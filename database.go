// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config holds database configuration options.
type Config struct {
	// Path to database file. Use ":memory:" for in-memory databases.
	// Persistent paths must be absolute and have a .db extension.
	Path string

	// CreateIfMissing lets Open create a persistent file that does not
	// exist yet. The parent directory must exist.
	CreateIfMissing bool

	// Logger for operational logging. Uses slog.Default() if nil.
	Logger *slog.Logger

	// ProductionEnvVar is the environment variable checked to determine
	// production mode. If the variable equals "production" (case-insensitive),
	// in-memory databases are rejected unless AllowMemoryInProduction is true.
	// Default: "ENV".
	ProductionEnvVar string

	// AllowMemoryInProduction permits :memory: databases when the production
	// environment variable is set. Default: false.
	AllowMemoryInProduction bool

	// MigrationTimeout bounds each type registration. Default: 90s.
	MigrationTimeout time.Duration
}

// defaults returns a copy of cfg with default values applied.
func (cfg Config) defaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ProductionEnvVar == "" {
		cfg.ProductionEnvVar = "ENV"
	}
	if cfg.MigrationTimeout == 0 {
		cfg.MigrationTimeout = 90 * time.Second
	}
	return cfg
}

// isProduction returns true if the production environment variable is set.
func (cfg Config) isProduction() bool {
	return strings.EqualFold(os.Getenv(cfg.ProductionEnvVar), "production")
}

// isMemory returns true if Path indicates an in-memory database.
func (cfg Config) isMemory() bool {
	return isMemoryPath(cfg.Path)
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// Database owns the single connection to the store. Every operation holds
// the database lock, so no two statements are ever in flight at once.
type Database struct {
	mu      sync.Mutex
	db      *sql.DB
	path    string
	logger  *slog.Logger
	timeout time.Duration
}

// MigrationStatus describes the recorded schema state of a database file.
type MigrationStatus struct {
	IsInitialized bool
	Tables        []TableDescriptor
}

// Open opens a database and registers the descriptor table.
// For in-memory databases, it creates a new database.
// For persistent databases, it opens an existing file unless CreateIfMissing is set.
func Open(ctx context.Context, cfg Config) (*Database, error) {
	cfg = cfg.defaults()

	if cfg.isMemory() {
		return openMemory(ctx, cfg)
	}
	return openPersistent(ctx, cfg)
}

// Create creates a new persistent database file with only the descriptor table.
// Returns an error if the file already exists.
func Create(ctx context.Context, cfg Config) error {
	cfg = cfg.defaults()

	if cfg.isMemory() {
		return fmt.Errorf("Create requires a persistent path, not :memory:")
	}

	if err := validatePersistentPath(cfg.Path); err != nil {
		return err
	}

	if fileExists(cfg.Path) {
		return fmt.Errorf("%s: file already exists", cfg.Path)
	}

	cfg.Logger.Info("creating database", "path", cfg.Path)

	d, err := openAndRegister(ctx, cfg, persistentPragmas)
	if err != nil {
		return err
	}
	return d.Close()
}

// Delete removes a database file and its WAL sidecar files.
// Returns nil if the file does not exist.
func Delete(ctx context.Context, path string) error {
	if isMemoryPath(path) {
		return fmt.Errorf("cannot delete in-memory database")
	}

	if err := validatePersistentPath(path); err != nil {
		return err
	}

	if !fileExists(path) {
		return nil
	}

	// WAL mode creates sidecar files
	var firstErr error
	for _, suffix := range []string{"", "-shm", "-wal"} {
		name := path + suffix
		if !fileExists(name) {
			continue
		}
		if !isRegularFile(name) {
			err := fmt.Errorf("%s: not a regular file", name)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(name); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("delete %s: %w", path, firstErr)
	}

	if fileExists(path) {
		return fmt.Errorf("%s: still exists after delete", path)
	}

	return nil
}

// Status returns the recorded table descriptors. The file is opened read-only.
func Status(ctx context.Context, cfg Config) (*MigrationStatus, error) {
	cfg = cfg.defaults()

	if cfg.isMemory() {
		// For memory DBs, we can't check status of a non-existent DB
		return nil, fmt.Errorf("cannot check status of in-memory database")
	}

	if err := validatePersistentPath(cfg.Path); err != nil {
		return nil, err
	}

	if !fileExists(cfg.Path) {
		return &MigrationStatus{IsInitialized: false}, nil
	}

	db, err := sql.Open(driverName, readOnlyDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	tables, err := fetchDescriptors(ctx, db)
	if err != nil {
		return nil, storeErr("status", descriptorTable, err)
	}
	return &MigrationStatus{IsInitialized: tables != nil, Tables: tables}, nil
}

// openMemory opens an in-memory database.
func openMemory(ctx context.Context, cfg Config) (*Database, error) {
	if cfg.isProduction() && !cfg.AllowMemoryInProduction {
		return nil, fmt.Errorf("in-memory database not allowed in production (%s=production)", cfg.ProductionEnvVar)
	}

	cfg.Logger.Info("DB mode: in-memory")
	return openAndRegister(ctx, cfg, memoryPragmas)
}

// openPersistent opens a persistent database.
func openPersistent(ctx context.Context, cfg Config) (*Database, error) {
	if err := validatePersistentPath(cfg.Path); err != nil {
		return nil, err
	}

	if !fileExists(cfg.Path) {
		if !cfg.CreateIfMissing {
			return nil, fmt.Errorf("%s: database file not found (use Create to make a new database)", cfg.Path)
		}
		cfg.Logger.Info("creating database", "path", cfg.Path)
	}

	cfg.Logger.Info("DB mode: persistent", "path", cfg.Path)
	return openAndRegister(ctx, cfg, persistentPragmas)
}

// openAndRegister opens a database with the given pragmas and brings the
// descriptor table up to date.
func openAndRegister(ctx context.Context, cfg Config, pragmas []pragma) (*Database, error) {
	dsn := buildDSN(cfg.Path, pragmas)
	cfg.Logger.Debug("opening database", "driver", driverName, "dsn", dsn)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// Ensure cleanup on error
	success := false
	defer func() {
		if !success {
			db.Close()
		}
	}()

	// One physical connection: the store has a single writer and
	// in-memory databases live only as long as their connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	d := &Database{
		db:      db,
		path:    cfg.Path,
		logger:  cfg.Logger,
		timeout: cfg.MigrationTimeout,
	}

	if err := RegisterType[TableDescriptor](ctx, d); err != nil {
		return nil, fmt.Errorf("register %s: %w", descriptorTable, err)
	}

	success = true
	return d, nil
}

// Close closes the underlying connection.
func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Close()
}

// Path returns the configured database path.
func (d *Database) Path() string {
	return d.path
}

// Logger returns the logger the database was opened with.
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// WithConn runs fn with exclusive access to the connection. It is meant for
// read-only aggregate queries that do not map onto a registered type.
func (d *Database) WithConn(ctx context.Context, fn func(conn Conn) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.db)
}

// Insert executes obj's insert statement. If obj is Identifiable, the
// identity assigned by the store is written back into it.
func (d *Database) Insert(ctx context.Context, obj interface {
	SchemaObject
	Serializable
}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := obj.InsertRow(ctx, d.db)
	if err != nil {
		return storeErr("insert", obj.TableName(), err)
	}
	if ident, ok := obj.(Identifiable); ok {
		id, err := res.LastInsertId()
		if err != nil {
			return storeErr("insert", obj.TableName(), fmt.Errorf("last insert id: %w", err))
		}
		ident.SetID(id)
	}
	return nil
}

// Update executes obj's update statement. Updating a row that does not
// exist returns a StoreError wrapping ErrNotFound.
func (d *Database) Update(ctx context.Context, obj interface {
	SchemaObject
	Serializable
}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := obj.UpdateRow(ctx, d.db)
	return checkAffected("update", obj.TableName(), res, err)
}

// Delete executes obj's delete statement. Deleting a row that does not
// exist returns a StoreError wrapping ErrNotFound.
func (d *Database) Delete(ctx context.Context, obj interface {
	SchemaObject
	Serializable
}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := obj.DeleteRow(ctx, d.db)
	return checkAffected("delete", obj.TableName(), res, err)
}

func checkAffected(op, table string, res sql.Result, err error) error {
	if err != nil {
		return storeErr(op, table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, table, fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return storeErr(op, table, ErrNotFound)
	}
	return nil
}

// SelectAll reads every row of T's table in rowid order.
func SelectAll[T any, PT Object[T]](ctx context.Context, d *Database) ([]T, error) {
	return selectRows[T, PT](ctx, d, "", nil)
}

// SelectWhere reads the rows of T's table matching the predicate fragment
// where, with args bound to its placeholders.
func SelectWhere[T any, PT Object[T]](ctx context.Context, d *Database, where string, args ...any) ([]T, error) {
	if strings.TrimSpace(where) == "" {
		return nil, storeErr("select", PT(new(T)).TableName(), fmt.Errorf("empty where clause"))
	}
	return selectRows[T, PT](ctx, d, where, args)
}

func selectRows[T any, PT Object[T]](ctx context.Context, d *Database, where string, args []any) ([]T, error) {
	var zero T
	obj := PT(&zero)
	table := obj.TableName()

	query := "SELECT " + strings.Join(obj.Columns(), ", ") + " FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY rowid"

	d.mu.Lock()
	defer d.mu.Unlock()

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("select", table, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var item T
		if err := PT(&item).ScanRow(rows); err != nil {
			return nil, storeErr("select", table, fmt.Errorf("scan row: %w", err))
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("select", table, err)
	}
	return result, nil
}

// validatePersistentPath checks that a path is valid for a persistent database.
func validatePersistentPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s: persistent database path must be absolute", path)
	}
	if filepath.Ext(path) != ".db" {
		return fmt.Errorf("%s: expected .db extension", path)
	}
	if isDirectory(path) {
		return fmt.Errorf("%s: path is a directory", path)
	}
	dir := filepath.Dir(path)
	if !isDirectory(dir) {
		return fmt.Errorf("%s: parent directory does not exist", dir)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() || info.IsDir()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// isNoSuchTable checks if an error indicates a missing table.
func isNoSuchTable(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "no such table")
}
