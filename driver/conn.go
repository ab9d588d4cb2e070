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
	"sync"

	"github.com/uptrace/bun"
)

var (
	defaultDriver *Driver
	defaultMu     sync.Mutex
)

// InitDriver creates the process-default driver from the given options and
// connects it. Repeated calls return the existing driver.
func InitDriver(ctx context.Context, opts *ConnectionOptions) (*Driver, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDriver != nil {
		return defaultDriver, nil
	}
	d, err := NewDriverFactory().CreateFromOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	defaultDriver = d
	return d, nil
}

// Default returns the process-default driver, nil before InitDriver.
func Default() *Driver {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultDriver
}

// DefaultDB returns the default driver's physical handle, nil while not
// connected.
func DefaultDB() *bun.DB {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDriver == nil {
		return nil
	}
	return defaultDriver.DB()
}

// CloseDriver disconnects and clears the process-default driver. It is a
// no-op when InitDriver was never called.
func CloseDriver() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDriver == nil {
		return nil
	}
	err := defaultDriver.Disconnect()
	defaultDriver = nil
	return err
}
