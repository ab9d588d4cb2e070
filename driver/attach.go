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
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// AttachedDatabase records one secondary physical store bound into the
// logical connection. Entries are created during table-name resolution,
// never mutated afterwards, and live for the lifetime of the owning Driver.
type AttachedDatabase struct {
	// AbsolutePath is the resolved physical file location.
	AbsolutePath string `yaml:"path"`
	// SuppliedPath is the logical reference exactly as declared in metadata.
	SuppliedPath string `yaml:"supplied"`
	// Handle is the short identifier the store is attached under, a pure
	// function of SuppliedPath.
	Handle string `yaml:"handle"`
}

// BuildTableName resolves a table identifier into its connection-qualified
// form. An empty or primary database reference yields the bare identifier.
// Any other reference is registered on first sight: relative paths resolve
// against the primary database's directory (not the process working
// directory, so attachment layouts stay portable with the main store), a
// handle is derived, and subsequent calls for the same reference reuse it.
//
// The embedded engine has no schema namespaces; the schema argument is
// accepted for contract symmetry and ignored. This is the one side effect
// the method has: it inserts into the driver's attachment registry. It never
// touches the filesystem or the physical connection and is callable before
// Connect.
func (d *Driver) BuildTableName(table, schema, database string) string {
	_ = schema
	if database == "" {
		return table
	}
	if att, ok := d.attached[database]; ok {
		return att.Handle + "." + table
	}
	if database == d.options.Database || database == d.primaryPath {
		return table
	}

	abs := database
	if !IsAbsolutePath(abs) {
		abs = ResolveRelativeTo(d.attachmentBaseDir(), abs)
	}
	att := &AttachedDatabase{
		AbsolutePath: abs,
		SuppliedPath: database,
		Handle:       AttachHandle(database),
	}
	d.attached[database] = att
	d.logger.Debug("Registered attached database", "handle", att.Handle, "path", att.AbsolutePath)
	return att.Handle + "." + table
}

// attachmentBaseDir is the directory relative attachment references resolve
// against: the primary store's directory, or the configured base directory
// when the primary store is in-memory.
func (d *Driver) attachmentBaseDir() string {
	if d.options.IsInMemory() {
		if d.options.BaseDirectory != "" {
			return d.options.BaseDirectory
		}
		return "."
	}
	return filepath.Dir(d.primaryPath)
}

// Attachments returns a snapshot of the registry sorted by handle.
func (d *Driver) Attachments() []AttachedDatabase {
	out := make([]AttachedDatabase, 0, len(d.attached))
	for _, att := range d.attached {
		out = append(out, *att)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// AttachmentManifest is the YAML shape of an exported attachment registry.
type AttachmentManifest struct {
	Attachments []AttachedDatabase `yaml:"attachments"`
}

// ExportAttachments writes the current registry to a YAML manifest, creating
// directories as needed. Useful for diagnosing which physical files a
// logical schema spans.
func (d *Driver) ExportAttachments(outputPath string) error {
	manifest := AttachmentManifest{Attachments: d.Attachments()}
	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("driver: failed to serialize attachment manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("driver: failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("driver: failed to write attachment manifest: %w", err)
	}
	return nil
}

// LoadAttachmentManifest pre-seeds the registry from a YAML manifest written
// by ExportAttachments. References already registered keep their existing
// entry; handles are re-derived from the supplied path so a manifest cannot
// smuggle in a conflicting handle.
func (d *Driver) LoadAttachmentManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("driver: failed to read attachment manifest: %w", err)
	}
	var manifest AttachmentManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("driver: failed to parse attachment manifest %s: %w", path, err)
	}
	for _, att := range manifest.Attachments {
		if att.SuppliedPath == "" || att.SuppliedPath == d.options.Database || att.SuppliedPath == d.primaryPath {
			continue
		}
		if _, ok := d.attached[att.SuppliedPath]; ok {
			continue
		}
		abs := att.AbsolutePath
		if abs == "" {
			abs = att.SuppliedPath
			if !IsAbsolutePath(abs) {
				abs = ResolveRelativeTo(d.attachmentBaseDir(), abs)
			}
		}
		d.attached[att.SuppliedPath] = &AttachedDatabase{
			AbsolutePath: abs,
			SuppliedPath: att.SuppliedPath,
			Handle:       AttachHandle(att.SuppliedPath),
		}
	}
	return nil
}
