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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestDriver(t *testing.T, opts *ConnectionOptions) *Driver {
	t.Helper()
	d, err := NewDriver(opts)
	require.NoError(t, err)
	return d
}

func TestBuildTableNamePrimaryUnqualified(t *testing.T) {
	d := newTestDriver(t, &ConnectionOptions{Database: "/data/main.db"})

	assert.Equal(t, "users", d.BuildTableName("users", "", ""))
	assert.Equal(t, "users", d.BuildTableName("users", "", "/data/main.db"))
	assert.Empty(t, d.Attachments())
}

func TestBuildTableNameIdempotent(t *testing.T) {
	d := newTestDriver(t, &ConnectionOptions{Database: "/data/main.db"})

	first := d.BuildTableName("orders", "", "../shared/ext.db")
	second := d.BuildTableName("invoices", "", "../shared/ext.db")
	third := d.BuildTableName("orders", "", "../shared/ext.db")

	prefix := strings.SplitN(first, ".", 2)[0]
	assert.Equal(t, first, third)
	assert.True(t, strings.HasPrefix(second, prefix+"."))
	assert.Len(t, d.Attachments(), 1)
}

func TestBuildTableNameDistinctReferences(t *testing.T) {
	d := newTestDriver(t, &ConnectionOptions{Database: "/data/main.db"})

	a := d.BuildTableName("t1", "", "ext_a.db")
	b := d.BuildTableName("t2", "", "ext_b.db")

	prefixA := strings.SplitN(a, ".", 2)[0]
	prefixB := strings.SplitN(b, ".", 2)[0]
	assert.NotEqual(t, prefixA, prefixB)
	assert.Len(t, d.Attachments(), 2)
}

func TestBuildTableNameResolvesAgainstPrimaryDirectory(t *testing.T) {
	d := newTestDriver(t, &ConnectionOptions{Database: "/data/main.db"})

	d.BuildTableName("ext_table", "", "shared/ext.db")
	atts := d.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, filepath.Clean("/data/shared/ext.db"), atts[0].AbsolutePath)
	assert.Equal(t, "shared/ext.db", atts[0].SuppliedPath)

	d.BuildTableName("up_table", "", "../shared/up.db")
	atts = d.Attachments()
	require.Len(t, atts, 2)
	for _, att := range atts {
		if att.SuppliedPath == "../shared/up.db" {
			assert.Equal(t, filepath.Clean("/shared/up.db"), att.AbsolutePath)
		}
	}
}

func TestBuildTableNameAbsoluteReferenceUsedAsIs(t *testing.T) {
	d := newTestDriver(t, &ConnectionOptions{Database: "/data/main.db"})

	d.BuildTableName("logs", "", "/var/lib/app/logs.db")
	atts := d.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, filepath.Clean("/var/lib/app/logs.db"), atts[0].AbsolutePath)
}

func TestBuildTableNameMemoryPrimaryUsesBaseDirectory(t *testing.T) {
	d := newTestDriver(t, &ConnectionOptions{
		Database:      MemoryDatabase,
		BaseDirectory: "/srv/app",
	})

	d.BuildTableName("archive", "", "archive.db")
	atts := d.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, filepath.Clean("/srv/app/archive.db"), atts[0].AbsolutePath)
}

func TestResolveEntitiesPopulatesRegistry(t *testing.T) {
	d := newTestDriver(t, &ConnectionOptions{Database: "/data/main.db"})

	reg := NewMetadataRegistry()
	reg.Register(EntityDescriptor{Table: "users"})
	reg.Register(EntityDescriptor{Table: "orders", Database: "ext.db"})
	reg.Register(EntityDescriptor{Table: "invoices", Database: "ext.db"})

	resolved := d.ResolveEntities(reg)
	require.Len(t, resolved, 3)
	assert.Equal(t, "users", resolved["users"])
	assert.Equal(t,
		strings.SplitN(resolved["orders"], ".", 2)[0],
		strings.SplitN(resolved["invoices"], ".", 2)[0],
	)
	assert.Len(t, d.Attachments(), 1)
}

func TestAttachmentManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d := newTestDriver(t, &ConnectionOptions{Database: filepath.Join(dir, "main.db")})
	d.BuildTableName("orders", "", "ext.db")
	d.BuildTableName("logs", "", "/var/lib/app/logs.db")

	manifestPath := filepath.Join(dir, "out", "attachments.yaml")
	require.NoError(t, d.ExportAttachments(manifestPath))

	fresh := newTestDriver(t, &ConnectionOptions{Database: filepath.Join(dir, "main.db")})
	require.NoError(t, fresh.LoadAttachmentManifest(manifestPath))
	assert.Equal(t, d.Attachments(), fresh.Attachments())

	// resolution after pre-seeding reuses the loaded handles
	name := fresh.BuildTableName("orders", "", "ext.db")
	assert.True(t, strings.HasPrefix(name, AttachHandle("ext.db")+"."))
	assert.Len(t, fresh.Attachments(), 2)
}

func TestLoadAttachmentManifestSkipsPrimary(t *testing.T) {
	dir := t.TempDir()
	d := newTestDriver(t, &ConnectionOptions{
		Database:      "data/main.db",
		BaseDirectory: dir,
	})

	// a manifest naming the resolved primary path must not attach the
	// primary store to itself
	primary := d.PrimaryPath()
	manifest := AttachmentManifest{Attachments: []AttachedDatabase{
		{SuppliedPath: primary, AbsolutePath: primary, Handle: AttachHandle(primary)},
	}}
	data, err := yaml.Marshal(&manifest)
	require.NoError(t, err)
	path := filepath.Join(dir, "attachments.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.NoError(t, d.LoadAttachmentManifest(path))
	assert.Empty(t, d.Attachments())
}
