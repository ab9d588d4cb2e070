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
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

var sqlSilentMode bool

// EnableSQLSilent suppresses all statement echo hooks, test helpers use it
// to keep output readable.
func EnableSQLSilent(b bool) {
	sqlSilentMode = b
}

func colorWrap(s, code string) string { return fmt.Sprintf("%s%s%s", code, s, ansiReset) }

// StatementHook echoes executed statements with timing, colored by verb.
// The env variable CROSSLITE_SQL overrides the configured toggles: any
// non-empty value other than "0" enables it, "2" makes it verbose.
type StatementHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*StatementHook)(nil)

// NewStatementHook returns a hook writing to w (os.Stderr when nil).
func NewStatementHook(verbose bool, w io.Writer) *StatementHook {
	if w == nil {
		w = os.Stderr
	}
	return &StatementHook{
		envName: "CROSSLITE_SQL",
		enabled: true,
		verbose: verbose,
		writer:  w,
	}
}

func (h *StatementHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *StatementHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if sqlSilentMode {
		return
	}
	enabled := h.enabled
	verbose := h.verbose
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}
	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	dur := now.Sub(event.StartTime)
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		colorWrap("[SQL]", ansiCyan),
		fmt.Sprintf("%12s", dur.Round(time.Microsecond)),
		" ", formatStatementColor(event),
	}
	if event.Err != nil {
		args = append(args, "\t", color.New(color.BgRed).Sprintf(" %s ", event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func formatStatementColor(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return colorWrap(event.Query, ansiGreen)
	case "INSERT":
		return colorWrap(event.Query, ansiBlue)
	case "UPDATE":
		return colorWrap(event.Query, ansiYellow)
	case "DELETE":
		return colorWrap(event.Query, ansiMagenta)
	case "PRAGMA", "ATTACH":
		return colorWrap(event.Query, ansiCyan)
	default:
		return colorWrap(event.Query, ansiRed)
	}
}

// SlowStatementHook reports statements slower than the configured budget.
type SlowStatementHook struct {
	envName  string
	enabled  bool
	slowTime time.Duration
	writer   io.Writer
}

var _ bun.QueryHook = (*SlowStatementHook)(nil)

// NewSlowStatementHook returns a slow-statement hook writing to w
// (os.Stderr when nil). The env variable CROSSLITE_SQL_SLOW set to "1"
// force-enables it.
func NewSlowStatementHook(slowTime time.Duration, w io.Writer) *SlowStatementHook {
	if w == nil {
		w = os.Stderr
	}
	return &SlowStatementHook{
		envName:  "CROSSLITE_SQL_SLOW",
		enabled:  true,
		slowTime: slowTime,
		writer:   w,
	}
}

func (h *SlowStatementHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowStatementHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if sqlSilentMode || event.Err != nil {
		return
	}
	enabled := h.enabled
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = strings.TrimSpace(env) == "1"
	}
	if !enabled {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	_, _ = fmt.Fprintln(h.writer,
		time.Now().Format("2006-01-02 15:04:05.000"),
		colorWrap("[SQL_SLOW]", ansiYellow),
		fmt.Sprintf("%12s", duration.Round(time.Microsecond)),
		" ", colorWrap(event.Query, ansiRed),
	)
}
