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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvDefaultString(t *testing.T) {
	t.Setenv("CROSSLITE_TEST_STR", "value")
	assert.Equal(t, "value", EnvDefaultString("CROSSLITE_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", EnvDefaultString("CROSSLITE_TEST_STR_MISSING", "fallback"))
}

func TestEnvDefaultBool(t *testing.T) {
	t.Setenv("CROSSLITE_TEST_BOOL", "1")
	assert.True(t, EnvDefaultBool("CROSSLITE_TEST_BOOL", false))

	t.Setenv("CROSSLITE_TEST_BOOL", "not-a-bool")
	assert.True(t, EnvDefaultBool("CROSSLITE_TEST_BOOL", true))
	assert.False(t, EnvDefaultBool("CROSSLITE_TEST_BOOL_MISSING", false))
}

func TestEnvDefaultInt(t *testing.T) {
	t.Setenv("CROSSLITE_TEST_INT", "42")
	assert.Equal(t, 42, EnvDefaultInt("CROSSLITE_TEST_INT", 7))
	assert.Equal(t, 7, EnvDefaultInt("CROSSLITE_TEST_INT_MISSING", 7))
}
