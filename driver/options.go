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
	"fmt"
	"os"
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// MemoryDatabase is the sentinel selecting an in-memory primary store.
const MemoryDatabase = ":memory:"

// PrepareFunc is the pre-connect customization hook. It receives the raw
// physical handle after key setup and before any consistency pragma is
// applied. Last resort, bypasses all abstraction.
type PrepareFunc func(ctx context.Context, db *bun.DB) error

// ConnectionOptions is the immutable configuration resolved before connect.
type ConnectionOptions struct {
	// Database is a filesystem path or the MemoryDatabase sentinel.
	Database string
	// ReadOnly opens the primary store read-only.
	ReadOnly bool
	// FileMustExist refuses to create a missing primary database file.
	FileMustExist bool
	// Timeout is the engine busy/lock wait budget.
	Timeout time.Duration
	// Verbose echoes every statement through the debug query hook.
	Verbose bool
	// Key, when set, is sent as the engine's key-setup statement before any
	// other interaction. The value is embedded directly into the statement
	// and must not come from unsanitized external input.
	Key string
	// EnableWAL switches the store to write-ahead-log durability mode.
	EnableWAL bool
	// BaseDirectory resolves a relative primary path. It has no effect on
	// attachment resolution, which is always relative to the primary store.
	BaseDirectory string
	// NativeBinding names a database/sql driver registered by the caller,
	// overriding the default runtime binding.
	NativeBinding string
	// SlowQueryTime enables slow statement reporting when positive.
	SlowQueryTime time.Duration

	// PrepareDatabase is invoked with the physical handle during connect.
	PrepareDatabase PrepareFunc
	// Binding overrides engine-binding acquisition entirely.
	Binding EngineBinding
	// QueryHooks are installed on the handle right after it opens, so they
	// observe the connect-time statement sequence as well.
	QueryHooks []bun.QueryHook
}

// DefaultConnectionOptions returns options with every default applied.
func DefaultConnectionOptions() *ConnectionOptions {
	return &ConnectionOptions{
		Timeout: 5000 * time.Millisecond,
	}
}

// IsInMemory reports whether the primary store is the in-memory sentinel.
func (o *ConnectionOptions) IsInMemory() bool {
	return o.Database == MemoryDatabase
}

// clone returns a copy the driver can default and override without mutating
// the caller's struct.
func (o *ConnectionOptions) clone() *ConnectionOptions {
	c := *o
	c.QueryHooks = append([]bun.QueryHook(nil), o.QueryHooks...)
	return &c
}

func (o *ConnectionOptions) applyDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = 5000 * time.Millisecond
	}
}

func (o *ConnectionOptions) validate() error {
	if o.Database == "" {
		return fmt.Errorf("driver: database path cannot be empty")
	}
	if o.ReadOnly && o.IsInMemory() {
		return fmt.Errorf("driver: an in-memory database cannot be opened read-only")
	}
	return nil
}

// optionsFile is the YAML shape of a connection options file. Durations are
// given in milliseconds.
type optionsFile struct {
	Database      string `yaml:"database"`
	ReadOnly      bool   `yaml:"readonly"`
	FileMustExist bool   `yaml:"file_must_exist"`
	TimeoutMS     int    `yaml:"timeout_ms"`
	Verbose       bool   `yaml:"verbose"`
	Key           string `yaml:"key"`
	EnableWAL     bool   `yaml:"enable_wal"`
	BaseDirectory string `yaml:"base_directory"`
	NativeBinding string `yaml:"native_binding"`
	SlowQueryMS   int    `yaml:"slow_query_ms"`
}

// LoadConnectionOptions reads options from a YAML file. Unrecognized keys
// are rejected rather than silently dropped.
func LoadConnectionOptions(path string) (*ConnectionOptions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("driver: failed to read options file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var file optionsFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("driver: failed to parse options file %s: %w", path, err)
	}

	opts := &ConnectionOptions{
		Database:      file.Database,
		ReadOnly:      file.ReadOnly,
		FileMustExist: file.FileMustExist,
		Timeout:       time.Duration(file.TimeoutMS) * time.Millisecond,
		Verbose:       file.Verbose,
		Key:           file.Key,
		EnableWAL:     file.EnableWAL,
		BaseDirectory: file.BaseDirectory,
		NativeBinding: file.NativeBinding,
		SlowQueryTime: time.Duration(file.SlowQueryMS) * time.Millisecond,
	}
	opts.applyDefaults()
	return opts, nil
}
