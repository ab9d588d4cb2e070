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
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ErrInvalidConnection is returned when a lifecycle operation requires an
// open physical handle and there is none (never connected, or already
// disconnected).
var ErrInvalidConnection = errors.New("driver: connection is not open")

// DependencyMissingError indicates the engine binding could not be located.
// It is surfaced during driver construction, before any connection attempt.
type DependencyMissingError struct {
	Package string
	Engine  string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("driver: engine binding for %q not available, install %s", e.Engine, e.Package)
}

// DirectoryCreationError indicates recursive directory creation failed for
// the primary or an attached store.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("driver: failed to create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

// ConnectError indicates the physical handle could not be acquired or a
// connect-time statement other than key setup or attach failed.
type ConnectError struct {
	Database string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("driver: failed to connect to %s: %v", e.Database, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// KeySetupError indicates the encryption key statement was rejected. Treated
// as a connect failure: either the key is wrong or the store is not
// encrypted.
type KeySetupError struct {
	Database string
	Err      error
}

func (e *KeySetupError) Error() string {
	return fmt.Sprintf("driver: key setup failed for %s: %v", e.Database, e.Err)
}

func (e *KeySetupError) Unwrap() error { return e.Err }

// AttachError indicates a single attach statement failed. The physical
// connection remains open; the caller decides whether to disconnect or to
// continue in single-store mode.
type AttachError struct {
	Handle string
	Path   string
	Err    error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("driver: failed to attach %s as %s: %v", e.Path, e.Handle, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

// SQLError is a normalized classification of engine errors, uniform across
// the engine families the toolkit speaks to.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

// IsSQLError classifies an engine error into the shared taxonomy. Typed
// driver errors are preferred; embedded-engine errors fall back to message
// matching because the bindings expose plain strings.
func IsSQLError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1091:
			return true, NoIndexErr
		case 1054:
			return true, NoColumnErr
		case 1061:
			return true, ExistIndexErr
		case 1060:
			return true, ExistColumnErr
		case 1062:
			return true, DuplicateKeyErr
		case 1048:
			return true, NotNullViolationErr
		case 1216, 1217:
			return true, ForeignKeyViolationErr
		case 3819:
			return true, CheckConstraintViolationErr
		case 1265:
			return true, DataTruncatedErr
		default:
			return true, UnknownErr
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case "42703":
			return true, NoColumnErr
		case "42704":
			return true, NoIndexErr
		case "42P01":
			return true, NoTableErr
		case "42P07":
			return true, ExistTableErr
		case "23505":
			return true, DuplicateKeyErr
		case "23502":
			return true, NotNullViolationErr
		case "23503":
			return true, ForeignKeyViolationErr
		case "23514":
			return true, CheckConstraintViolationErr
		case "22001":
			return true, DataTruncatedErr
		case "42804":
			return true, InvalidTypeCastErr
		default:
			return true, UnknownErr
		}
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "no such column") || strings.Contains(s, "undefined column") {
		return true, NoColumnErr
	}
	if strings.Contains(s, "no such index") ||
		(strings.Contains(s, "does not exist") && strings.Contains(s, "index")) {
		return true, NoIndexErr
	}
	if strings.Contains(s, "no such table") || strings.Contains(s, "undefined table") {
		return true, NoTableErr
	}
	if strings.Contains(s, "already exists") && strings.Contains(s, "index") {
		return true, ExistIndexErr
	}
	if strings.Contains(s, "already exists") &&
		(strings.Contains(s, "table") || strings.Contains(s, "relation")) {
		return true, ExistTableErr
	}
	if strings.Contains(s, "unique constraint failed") || strings.Contains(s, "duplicate key value") {
		return true, DuplicateKeyErr
	}
	if strings.Contains(s, "not null constraint failed") || strings.Contains(s, "not-null constraint") {
		return true, NotNullViolationErr
	}
	if strings.Contains(s, "foreign key constraint failed") || strings.Contains(s, "foreign key violation") {
		return true, ForeignKeyViolationErr
	}
	if strings.Contains(s, "check constraint") {
		return true, CheckConstraintViolationErr
	}
	if strings.Contains(s, "data truncated") || strings.Contains(s, "string data right truncation") {
		return true, DataTruncatedErr
	}
	if strings.Contains(s, "datatype mismatch") {
		return true, InvalidTypeCastErr
	}
	return false, UnknownErr
}
