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

// Package crosslite is a driver layer for relational data mapping over
// embedded, file-based SQL engines. One logical connection can span several
// physical database files: table references declared against a secondary
// file are routed through deterministically named attach handles.
package crosslite

import (
	"context"

	"github.com/crosslite/crosslite/driver"
)

// Open builds an unconnected driver from the given options. Call Connect on
// the result after the schema traversal has registered every table, so the
// attachment registry is complete when the attach statements are issued.
func Open(opts *driver.ConnectionOptions) (*driver.Driver, error) {
	return driver.NewDriverFactory().CreateFromOptions(opts)
}

// OpenAndConnect builds a driver and connects it immediately. Suitable when
// the schema lives entirely in the primary store.
func OpenAndConnect(ctx context.Context, opts *driver.ConnectionOptions) (*driver.Driver, error) {
	d, err := Open(opts)
	if err != nil {
		return nil, err
	}
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	return d, nil
}
