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
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachHandleDeterministic(t *testing.T) {
	h1 := AttachHandle("../shared/ext.db")
	h2 := AttachHandle("../shared/ext.db")
	assert.Equal(t, h1, h2)
}

func TestAttachHandleIdentifierSafe(t *testing.T) {
	re := regexp.MustCompile(`^att_[0-9a-f]{12}$`)
	for _, path := range []string{"ext.db", "/var/lib/app/ext.db", "../x/y z/ext.db", ":weird:"} {
		h := AttachHandle(path)
		assert.Truef(t, re.MatchString(h), "handle %q for path %q", h, path)
	}
}

func TestAttachHandleDistinctInputs(t *testing.T) {
	seen := map[string]string{}
	for _, path := range []string{"a.db", "b.db", "./a.db", "sub/a.db", "/abs/a.db"} {
		h := AttachHandle(path)
		prev, dup := seen[h]
		require.Falsef(t, dup, "handle collision between %q and %q", prev, path)
		seen[h] = path
	}
}

func TestAttachHandleTrimsWhitespace(t *testing.T) {
	assert.Equal(t, AttachHandle("ext.db"), AttachHandle("  ext.db  "))
}

func TestIsAbsolutePath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/var/lib/app.db", true},
		{"app.db", false},
		{"./app.db", false},
		{"../app.db", false},
		{`C:\data\app.db`, true},
		{"C:/data/app.db", true},
		{`\\server\share\app.db`, true},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, IsAbsolutePath(c.path), "path %q", c.path)
	}
}

func TestResolveRelativeTo(t *testing.T) {
	assert.Equal(t, filepath.Clean("/data/shared/ext.db"), ResolveRelativeTo("/data", "shared/ext.db"))
	assert.Equal(t, filepath.Clean("/shared/ext.db"), ResolveRelativeTo("/data", "../shared/ext.db"))
	// absolute inputs pass through untouched by the base
	assert.Equal(t, filepath.Clean("/elsewhere/ext.db"), ResolveRelativeTo("/data", "/elsewhere/ext.db"))
}
