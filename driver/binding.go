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

	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

// EngineBinding is the injected capability giving the driver its underlying
// engine implementation: a database/sql driver name plus the matching
// dialect. The default is resolved at construction time; callers may supply
// their own.
type EngineBinding interface {
	DriverName() string
	Dialect() schema.Dialect
}

// shimBinding loads whichever SQLite implementation the build carries,
// preferring the CGo binding and falling back to the pure-Go one.
type shimBinding struct{}

func (shimBinding) DriverName() string      { return sqliteshim.ShimName }
func (shimBinding) Dialect() schema.Dialect { return sqlitedialect.New() }

// nativeBinding wraps a caller-registered database/sql driver name.
type nativeBinding struct {
	name string
}

func (b nativeBinding) DriverName() string      { return b.name }
func (b nativeBinding) Dialect() schema.Dialect { return sqlitedialect.New() }

// acquireBinding resolves the engine binding from the options: an explicit
// Binding wins, then a NativeBinding driver name, then the runtime shim.
// Failure surfaces before any connection attempt.
func acquireBinding(opts *ConnectionOptions) (EngineBinding, error) {
	if opts.Binding != nil {
		return opts.Binding, nil
	}
	if opts.NativeBinding != "" {
		if !driverRegistered(opts.NativeBinding) {
			return nil, &DependencyMissingError{Package: opts.NativeBinding, Engine: "sqlite"}
		}
		return nativeBinding{name: opts.NativeBinding}, nil
	}
	if !sqliteshim.HasDriver() {
		return nil, &DependencyMissingError{
			Package: "modernc.org/sqlite or mattn/go-sqlite3",
			Engine:  "sqlite",
		}
	}
	return shimBinding{}, nil
}

func driverRegistered(name string) bool {
	for _, n := range sql.Drivers() {
		if n == name {
			return true
		}
	}
	return false
}
