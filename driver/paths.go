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
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const attachHandlePrefix = "att_"

// AttachHandle derives a short SQL-identifier-safe token from an arbitrary
// path string. The same input always yields the same token; distinct inputs
// collide only with hash probability. Pure, no filesystem access.
func AttachHandle(path string) string {
	normalized := filepath.ToSlash(strings.TrimSpace(path))
	sum := sha1.Sum([]byte(normalized))
	return attachHandlePrefix + hex.EncodeToString(sum[:])[:12]
}

// IsAbsolutePath reports whether p is absolute, recognizing host-native
// paths as well as Windows drive-letter and UNC forms supplied on any host.
func IsAbsolutePath(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	if len(p) >= 3 && isDriveLetter(p[0]) && p[1] == ':' && (p[2] == '/' || p[2] == '\\') {
		return true
	}
	return strings.HasPrefix(p, `\\`)
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// ResolveRelativeTo resolves p against base. Absolute paths are cleaned and
// returned as-is. Pure, no filesystem access.
func ResolveRelativeTo(base, p string) string {
	if IsAbsolutePath(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}
