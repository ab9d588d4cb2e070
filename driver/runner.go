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

	"github.com/uptrace/bun"
)

// QueryRunner is the single execution surface bound to one Driver's
// physical connection. It holds no state beyond the non-owning
// back-reference; statement execution, parameter binding, and transaction
// demarcation all delegate to the handle the Driver owns.
type QueryRunner struct {
	driver *Driver
}

// Driver returns the owning driver.
func (r *QueryRunner) Driver() *Driver { return r.driver }

// DB exposes the physical handle for the query-builder collaborator, nil
// while disconnected.
func (r *QueryRunner) DB() *bun.DB { return r.driver.db }

// ExecContext executes a statement on the physical connection.
func (r *QueryRunner) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	db := r.driver.db
	if db == nil {
		return nil, ErrInvalidConnection
	}
	return db.ExecContext(ctx, query, args...)
}

// QueryContext runs a query on the physical connection.
func (r *QueryRunner) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	db := r.driver.db
	if db == nil {
		return nil, ErrInvalidConnection
	}
	return db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on the physical connection.
func (r *QueryRunner) QueryRowContext(ctx context.Context, query string, args ...interface{}) (*sql.Row, error) {
	db := r.driver.db
	if db == nil {
		return nil, ErrInvalidConnection
	}
	return db.QueryRowContext(ctx, query, args...), nil
}

// BeginTx opens a transaction on the physical connection.
func (r *QueryRunner) BeginTx(ctx context.Context, opts *sql.TxOptions) (bun.Tx, error) {
	db := r.driver.db
	if db == nil {
		return bun.Tx{}, ErrInvalidConnection
	}
	return db.BeginTx(ctx, opts)
}
