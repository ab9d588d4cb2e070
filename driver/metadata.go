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

import "sync"

// EntityDescriptor is the slice of entity metadata the driver consumes: the
// table identifier, an optional schema, and the logical database reference
// declaring which physical store the table lives in.
type EntityDescriptor struct {
	Table    string
	Schema   string
	Database string
}

// MetadataRegistry collects entity descriptors in registration order. The
// metadata collaborator fills it while assembling the schema; the driver
// walks it before connect to resolve table names and populate the
// attachment registry.
type MetadataRegistry struct {
	mu       sync.RWMutex
	entities []EntityDescriptor
}

func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{entities: make([]EntityDescriptor, 0)}
}

// Register appends a descriptor.
func (r *MetadataRegistry) Register(e EntityDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = append(r.entities, e)
}

// Entities returns a copy of the registered descriptors.
func (r *MetadataRegistry) Entities() []EntityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EntityDescriptor, len(r.entities))
	copy(out, r.entities)
	return out
}

// ResolveEntities walks the registry through BuildTableName and returns the
// qualified name per table. This is the schema-traversal step that populates
// the attachment registry, so it must run before Connect for the
// attachments to be issued.
func (d *Driver) ResolveEntities(reg *MetadataRegistry) map[string]string {
	resolved := make(map[string]string)
	for _, e := range reg.Entities() {
		resolved[e.Table] = d.BuildTableName(e.Table, e.Schema, e.Database)
	}
	return resolved
}
