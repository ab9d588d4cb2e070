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
	"fmt"
	"os"
	"strconv"
	"time"
)

// DriverFactory builds drivers from connection options, applying environment
// overrides and acquiring the engine binding up front.
type DriverFactory struct {
	logger Logger
}

// NewDriverFactory returns a factory using the package logger.
func NewDriverFactory() *DriverFactory {
	return &DriverFactory{logger: GetLogger()}
}

// CreateFromOptions validates the options, applies environment overrides,
// and constructs an unconnected Driver. Engine-binding problems surface
// here as *DependencyMissingError, before any connection attempt.
func (f *DriverFactory) CreateFromOptions(opts *ConnectionOptions) (*Driver, error) {
	if opts == nil {
		return nil, fmt.Errorf("driver: connection options cannot be empty")
	}
	opts = opts.clone()
	f.overrideFromEnv(opts)
	opts.applyDefaults()

	d, err := NewDriver(opts)
	if err != nil {
		return nil, err
	}
	d.SetLogger(f.logger)
	return d, nil
}

// SetLogger sets the logger used by the factory and the drivers it creates.
func (f *DriverFactory) SetLogger(logger Logger) {
	if logger != nil {
		f.logger = logger
	}
}

// overrideFromEnv overrides option values from environment variables.
func (f *DriverFactory) overrideFromEnv(opts *ConnectionOptions) {
	if path := os.Getenv("CROSSLITE_DB_PATH"); path != "" {
		opts.Database = path
	}
	if baseDir := os.Getenv("CROSSLITE_DB_BASE_DIR"); baseDir != "" {
		opts.BaseDirectory = baseDir
	}
	if readonly := os.Getenv("CROSSLITE_DB_READONLY"); readonly != "" {
		opts.ReadOnly = readonly == "true" || readonly == "1"
	}
	if mustExist := os.Getenv("CROSSLITE_DB_MUST_EXIST"); mustExist != "" {
		opts.FileMustExist = mustExist == "true" || mustExist == "1"
	}
	if timeout := os.Getenv("CROSSLITE_DB_TIMEOUT_MS"); timeout != "" {
		if ms, err := strconv.Atoi(timeout); err == nil && ms > 0 {
			opts.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	if key := os.Getenv("CROSSLITE_DB_KEY"); key != "" {
		opts.Key = key
	}
	if wal := os.Getenv("CROSSLITE_DB_WAL"); wal != "" {
		opts.EnableWAL = wal == "true" || wal == "1"
	}
	if verbose := os.Getenv("CROSSLITE_DB_VERBOSE"); verbose != "" {
		opts.Verbose = verbose == "true" || verbose == "1"
	}
	if binding := os.Getenv("CROSSLITE_DB_NATIVE_BINDING"); binding != "" {
		opts.NativeBinding = binding
	}
}
