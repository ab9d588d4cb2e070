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

import "strings"

// TypeBinary is the engine-neutral marker for binary blob columns. Metadata
// code uses it instead of a concrete engine type name.
const TypeBinary = "binary"

// ColumnDescriptor is the logical column shape handed over by the metadata
// collaborator for type normalization.
type ColumnDescriptor struct {
	Name      string
	Type      string
	Length    int
	Precision int
	Scale     int
}

// baseTypeMap is the engine-neutral fallback mapping shared by every engine
// family of the toolkit.
var baseTypeMap = map[string]string{
	"int":       "integer",
	"integer":   "integer",
	"smallint":  "smallint",
	"bigint":    "bigint",
	"float":     "float",
	"double":    "double precision",
	"real":      "real",
	"decimal":   "decimal",
	"numeric":   "numeric",
	"bool":      "boolean",
	"boolean":   "boolean",
	"string":    "varchar",
	"varchar":   "varchar",
	"char":      "char",
	"text":      "text",
	"uuid":      "varchar",
	"date":      "date",
	"time":      "time",
	"datetime":  "timestamp",
	"timestamp": "timestamp",
	"json":      "text",
	TypeBinary:  "blob",
	"blob":      "blob",
}

// sqliteTypeMap overrides the base mapping with the embedded engine's
// affinity names.
var sqliteTypeMap = map[string]string{
	"int":       "INTEGER",
	"integer":   "INTEGER",
	"smallint":  "INTEGER",
	"bigint":    "INTEGER",
	"float":     "REAL",
	"double":    "REAL",
	"real":      "REAL",
	"decimal":   "NUMERIC",
	"numeric":   "NUMERIC",
	"bool":      "BOOLEAN",
	"boolean":   "BOOLEAN",
	"string":    "TEXT",
	"varchar":   "TEXT",
	"char":      "TEXT",
	"text":      "TEXT",
	"uuid":      "TEXT",
	"date":      "DATE",
	"time":      "TEXT",
	"datetime":  "DATETIME",
	"timestamp": "DATETIME",
	"json":      "TEXT",
	TypeBinary:  "BLOB",
	"blob":      "BLOB",
}

// NormalizeType maps a logical column type to the engine's native type name,
// falling back to the shared base mapping and finally to the type as given.
func (d *Driver) NormalizeType(column ColumnDescriptor) string {
	key := strings.ToLower(strings.TrimSpace(column.Type))
	if native, ok := sqliteTypeMap[key]; ok {
		return native
	}
	if base, ok := baseTypeMap[key]; ok {
		return base
	}
	return key
}
