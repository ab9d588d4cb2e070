/*
 * Copyright 2025 crosslite.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package driver

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

// ReplicationMode selects the target of a query runner on engines with a
// read/write split. The embedded engine has a single physical handle, so
// the mode is accepted for interface symmetry only.
type ReplicationMode string

const (
	ReplicationPrimary ReplicationMode = "primary"
	ReplicationReplica ReplicationMode = "replica"
)

// Driver owns one logical connection to the embedded engine: the resolved
// options, the engine binding, the attachment registry, the physical handle
// and the single cached query runner. A Driver is not safe for concurrent
// lifecycle calls; the surrounding schema traversal and connection
// management are expected to serialize access.
type Driver struct {
	options *ConnectionOptions
	binding EngineBinding
	logger  Logger

	// primaryPath is the primary database path resolved against
	// BaseDirectory, or the memory sentinel.
	primaryPath string

	// attached maps logical database references to their attachment
	// entries. Populated by BuildTableName, consumed read-only after
	// connect.
	attached map[string]*AttachedDatabase

	db     *bun.DB
	sqlDB  *sql.DB
	runner *QueryRunner
}

// NewDriver resolves options and acquires the engine binding. Binding
// acquisition failure surfaces here, before any connection attempt.
func NewDriver(opts *ConnectionOptions) (*Driver, error) {
	if opts == nil {
		return nil, fmt.Errorf("driver: connection options cannot be empty")
	}
	opts = opts.clone()
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	binding, err := acquireBinding(opts)
	if err != nil {
		return nil, err
	}

	primary := opts.Database
	if !opts.IsInMemory() && !IsAbsolutePath(primary) && opts.BaseDirectory != "" {
		primary = ResolveRelativeTo(opts.BaseDirectory, primary)
	}

	return &Driver{
		options:     opts,
		binding:     binding,
		logger:      GetLogger(),
		primaryPath: primary,
		attached:    map[string]*AttachedDatabase{},
	}, nil
}

// Options returns the resolved connection options.
func (d *Driver) Options() *ConnectionOptions { return d.options }

// PrimaryPath returns the resolved primary database path.
func (d *Driver) PrimaryPath() string { return d.primaryPath }

// IsConnected reports whether the physical handle is open.
func (d *Driver) IsConnected() bool { return d.db != nil }

// DB exposes the physical handle, nil before Connect and after Disconnect.
func (d *Driver) DB() *bun.DB { return d.db }

// SetLogger replaces the driver's logger.
func (d *Driver) SetLogger(logger Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Connect opens the physical handle and applies the connect sequence:
// directory creation, handle acquisition, key setup, the customization
// hook, foreign-key enforcement, durability mode, then attachments. The
// sub-steps run in exactly this order on every connect, reconnects
// included. A failed attachment leaves the connection open and is returned
// as an *AttachError; every earlier failure closes the handle.
func (d *Driver) Connect(ctx context.Context) error {
	if d.db != nil {
		return nil
	}

	if !d.options.IsInMemory() {
		dir := filepath.Dir(d.primaryPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &DirectoryCreationError{Path: dir, Err: err}
		}
	}

	sqlDB, err := sql.Open(d.binding.DriverName(), d.dsn())
	if err != nil {
		return &ConnectError{Database: d.primaryPath, Err: err}
	}
	// One physical connection per logical connection: the embedded engine
	// has a single writer, and the attach handles below are bound to the
	// connection, not the pool.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxIdleTime(0)
	sqlDB.SetConnMaxLifetime(0)

	db := bun.NewDB(sqlDB, d.binding.Dialect())
	// Quiet unless a statement fails or CROSSLITE_SQL turns echo on.
	db.AddQueryHook(NewStatementHook(false, nil))
	if d.options.Verbose {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	if d.options.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowStatementHook(d.options.SlowQueryTime, nil))
	}
	for _, hook := range d.options.QueryHooks {
		db.AddQueryHook(hook)
	}

	fail := func(err error) error {
		_ = db.Close()
		return err
	}

	// Opening is lazy, so verify the handle before the first statement.
	// The ping issues no SQL, which keeps the key pragma below the first
	// statement an encrypted store sees while plain open failures (bad
	// path, missing file) stay connect failures rather than key failures.
	pingCtx, cancel := context.WithTimeout(ctx, d.options.Timeout)
	pingErr := db.PingContext(pingCtx)
	cancel()
	if pingErr != nil {
		return fail(&ConnectError{Database: d.primaryPath, Err: pingErr})
	}

	// Key setup must be the first statement on an encrypted store.
	if d.options.Key != "" {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA key = '%s'", d.options.Key)); err != nil {
			return fail(&KeySetupError{Database: d.primaryPath, Err: err})
		}
	}

	if d.options.Timeout > 0 {
		stmt := fmt.Sprintf("PRAGMA busy_timeout = %d", d.options.Timeout.Milliseconds())
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fail(&ConnectError{Database: d.primaryPath, Err: err})
		}
	}

	if d.options.PrepareDatabase != nil {
		if err := d.options.PrepareDatabase(ctx, db); err != nil {
			return fail(&ConnectError{Database: d.primaryPath, Err: fmt.Errorf("prepare hook: %w", err)})
		}
	}

	// Required for cascading deletes and relational integrity everywhere
	// else in the toolkit, so it is not optional.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fail(&ConnectError{Database: d.primaryPath, Err: err})
	}

	if d.options.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			return fail(&ConnectError{Database: d.primaryPath, Err: err})
		}
		if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
			return fail(&ConnectError{Database: d.primaryPath, Err: err})
		}
	}

	d.db = db
	d.sqlDB = sqlDB

	if err := d.attachDatabases(ctx); err != nil {
		// The physical connection stays open; the caller decides between
		// disconnect-and-retry and degraded single-store mode.
		return err
	}

	d.logger.Info("Database connected", "database", d.primaryPath, "attachments", len(d.attached))
	return nil
}

// attachDatabases issues one attach statement per registry entry,
// sequentially. Iteration order across entries is unspecified; the first
// failure aborts the sequence without rolling back earlier attachments,
// since attach is not guaranteed reversible.
func (d *Driver) attachDatabases(ctx context.Context) error {
	for _, att := range d.attached {
		dir := filepath.Dir(att.AbsolutePath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &DirectoryCreationError{Path: dir, Err: err}
		}
		stmt := fmt.Sprintf("ATTACH DATABASE '%s' AS %s", escapeSingleQuotes(att.AbsolutePath), att.Handle)
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return &AttachError{Handle: att.Handle, Path: att.AbsolutePath, Err: err}
		}
		d.logger.Debug("Attached database", "handle", att.Handle, "path", att.AbsolutePath)
	}
	return nil
}

// dsn builds the engine URI. Only engine-core URI parameters are used so the
// string works with every native binding.
func (d *Driver) dsn() string {
	if d.options.IsInMemory() {
		return MemoryDatabase
	}
	switch {
	case d.options.ReadOnly:
		return fmt.Sprintf("file:%s?mode=ro", d.primaryPath)
	case d.options.FileMustExist:
		return fmt.Sprintf("file:%s?mode=rw", d.primaryPath)
	default:
		return fmt.Sprintf("file:%s", d.primaryPath)
	}
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// CreateQueryRunner returns the driver's query runner, constructing it on
// first use. At most one runner exists per driver; the replication mode is
// accepted for interface symmetry with multi-node engines and has no effect
// on a single-file engine.
func (d *Driver) CreateQueryRunner(mode ReplicationMode) *QueryRunner {
	_ = mode
	if d.runner == nil {
		d.runner = &QueryRunner{driver: d}
	}
	return d.runner
}

// Ping verifies the physical handle is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return ErrInvalidConnection
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.db.PingContext(ctxTimeout)
}

// Stats reports the connection pool counters. The pool is pinned to one
// physical connection, so the numbers are only useful to confirm that.
func (d *Driver) Stats() sql.DBStats {
	if d.sqlDB == nil {
		return sql.DBStats{}
	}
	return d.sqlDB.Stats()
}

// Disconnect drops the cached query runner and closes the physical handle.
// Calling it on a driver that was never connected, or twice in succession,
// returns ErrInvalidConnection.
func (d *Driver) Disconnect() error {
	if d.db == nil {
		return ErrInvalidConnection
	}
	d.runner = nil
	err := d.db.Close()
	d.db = nil
	d.sqlDB = nil
	if err != nil {
		d.logger.Error("Failed to close database connection", "error", err)
		return fmt.Errorf("driver: failed to close connection: %w", err)
	}
	d.logger.Info("Database connection closed", "database", d.primaryPath)
	return nil
}
