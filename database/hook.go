/*
 * Copyright 2025 tomoncle.
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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync/atomic"
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

// QueryLogEnv overrides the query log at runtime: "0" disables it, "2" also
// logs successful queries.
const QueryLogEnv = "DB_QUERY_LOG"

var querySilent atomic.Bool

// SetQueryLogSilent mutes every QueryHook, for example while migrating.
func SetQueryLogSilent(b bool) {
	querySilent.Store(b)
}

func colorWrap(s, code string) string { return fmt.Sprintf("%s%s%s", code, s, ansiReset) }

// QueryHook prints executed queries, colored by operation. Unless verbose,
// only failed queries are printed.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(w io.Writer, verbose bool) *QueryHook {
	if w == nil {
		w = os.Stdout
	}
	return &QueryHook{envName: QueryLogEnv, enabled: true, verbose: verbose, writer: w}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if querySilent.Load() {
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
		colorWrap("[BUN]", ansiCyan),
		fmt.Sprintf("%12s", dur.Round(time.Microsecond)),
		" ", formatOperationColor(event),
	}

	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args,
			"\t",
			color.New(color.BgRed).Sprintf(" %s ", typ+": "+event.Err.Error()),
		)
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func formatOperationColor(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return colorWrap(event.Query, ansiGreen)
	case "INSERT":
		return colorWrap(event.Query, ansiBlue)
	case "UPDATE":
		return colorWrap(event.Query, ansiYellow)
	case "DELETE":
		return colorWrap(event.Query, ansiMagenta)
	default:
		return colorWrap(event.Query, ansiRed)
	}
}

// slowQueryHook warns about successful queries slower than slowTime.
type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil {
		return
	}

	duration := time.Since(event.StartTime)
	if duration > h.slowTime {
		h.logger.Warn("Database slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"operation", event.Operation(),
			"query", event.Query,
		)
	}
}
