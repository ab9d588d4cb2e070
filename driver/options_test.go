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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConnectionOptions(t *testing.T) {
	opts := DefaultConnectionOptions()
	assert.Equal(t, 5000*time.Millisecond, opts.Timeout)
	assert.False(t, opts.ReadOnly)
	assert.False(t, opts.FileMustExist)
	assert.False(t, opts.EnableWAL)
	assert.Empty(t, opts.Key)
}

func TestValidateRejectsEmptyDatabase(t *testing.T) {
	_, err := NewDriver(&ConnectionOptions{})
	assert.Error(t, err)
}

func TestValidateRejectsReadOnlyMemory(t *testing.T) {
	_, err := NewDriver(&ConnectionOptions{Database: MemoryDatabase, ReadOnly: true})
	assert.Error(t, err)
}

func TestLoadConnectionOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.yaml")
	content := "database: data/main.db\nreadonly: true\ntimeout_ms: 2000\nenable_wal: true\nbase_directory: /srv/app\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts, err := LoadConnectionOptions(path)
	require.NoError(t, err)
	assert.Equal(t, "data/main.db", opts.Database)
	assert.True(t, opts.ReadOnly)
	assert.True(t, opts.EnableWAL)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, "/srv/app", opts.BaseDirectory)
}

func TestLoadConnectionOptionsAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: main.db\n"), 0o644))

	opts, err := LoadConnectionOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 5000*time.Millisecond, opts.Timeout)
}

func TestLoadConnectionOptionsRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: main.db\nbogus_option: 1\n"), 0o644))

	_, err := LoadConnectionOptions(path)
	assert.Error(t, err)
}

func TestFactoryEnvOverrides(t *testing.T) {
	t.Setenv("CROSSLITE_DB_PATH", "/srv/env/main.db")
	t.Setenv("CROSSLITE_DB_READONLY", "true")
	t.Setenv("CROSSLITE_DB_TIMEOUT_MS", "1500")
	t.Setenv("CROSSLITE_DB_WAL", "1")

	d, err := NewDriverFactory().CreateFromOptions(&ConnectionOptions{Database: "ignored.db"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/env/main.db", d.Options().Database)
	assert.True(t, d.Options().ReadOnly)
	assert.True(t, d.Options().EnableWAL)
	assert.Equal(t, 1500*time.Millisecond, d.Options().Timeout)
}

func TestNewDriverDoesNotMutateCallerOptions(t *testing.T) {
	opts := &ConnectionOptions{Database: MemoryDatabase}
	d, err := NewDriver(opts)
	require.NoError(t, err)

	assert.Zero(t, opts.Timeout)
	assert.Equal(t, 5000*time.Millisecond, d.Options().Timeout)
}

func TestCreateFromOptionsDoesNotMutateCaller(t *testing.T) {
	t.Setenv("CROSSLITE_DB_PATH", "/srv/env/main.db")
	opts := &ConnectionOptions{Database: "caller.db"}

	d, err := NewDriverFactory().CreateFromOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, "caller.db", opts.Database)
	assert.Zero(t, opts.Timeout)
	assert.Equal(t, "/srv/env/main.db", d.Options().Database)
}

func TestFactoryUnknownNativeBinding(t *testing.T) {
	_, err := NewDriverFactory().CreateFromOptions(&ConnectionOptions{
		Database:      MemoryDatabase,
		NativeBinding: "no_such_driver",
	})
	require.Error(t, err)
	var missing *DependencyMissingError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Error(), "no_such_driver")
	assert.Contains(t, missing.Error(), "sqlite")
}

func TestFactoryResolvesPrimaryAgainstBaseDirectory(t *testing.T) {
	d, err := NewDriverFactory().CreateFromOptions(&ConnectionOptions{
		Database:      "data/main.db",
		BaseDirectory: "/srv/app",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/srv/app/data/main.db"), d.PrimaryPath())
}
