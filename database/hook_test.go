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
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func TestQueryHook_OnlyFailuresUnlessVerbose(t *testing.T) {
	t.Setenv(QueryLogEnv, "1")
	var buf bytes.Buffer
	hook := NewQueryHook(&buf, false)
	ctx := context.Background()

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
	assert.Empty(t, buf.String())

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: `INSERT INTO "todos" DEFAULT VALUES`, StartTime: time.Now(), Err: errors.New("no such table: todos")})
	out := buf.String()
	assert.Contains(t, out, "[BUN]")
	assert.Contains(t, out, ansiBlue+`INSERT INTO "todos" DEFAULT VALUES`+ansiReset)
	assert.Contains(t, out, "no such table: todos")
}

func TestQueryHook_VerboseAndSilent(t *testing.T) {
	t.Setenv(QueryLogEnv, "2")
	var buf bytes.Buffer
	hook := NewQueryHook(&buf, false)
	ctx := context.Background()

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: `UPDATE "todos" SET "title" = 'x'`, StartTime: time.Now()})
	assert.Contains(t, buf.String(), ansiYellow+`UPDATE "todos"`)

	buf.Reset()
	SetQueryLogSilent(true)
	defer SetQueryLogSilent(false)
	hook.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
	assert.Empty(t, buf.String())
}

func TestQueryHook_DisabledByEnv(t *testing.T) {
	t.Setenv(QueryLogEnv, "0")
	var buf bytes.Buffer
	NewQueryHook(&buf, true).AfterQuery(context.Background(), &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
	assert.Empty(t, buf.String())
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) SetLevel(LogLevel) {}
func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{}) {}
func (l *recordingLogger) Error(string, ...interface{}) {}
func (l *recordingLogger) Warn(msg string, _ ...interface{}) { l.warnings = append(l.warnings, msg) }

func TestSlowQueryHook(t *testing.T) {
	logger := &recordingLogger{}
	hook := &slowQueryHook{slowTime: time.Millisecond, logger: logger}
	ctx := context.Background()

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now()})
	assert.Empty(t, logger.warnings)

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now().Add(-time.Second), Err: errors.New("x")})
	assert.Empty(t, logger.warnings)

	hook.AfterQuery(ctx, &bun.QueryEvent{Query: `SELECT 1`, StartTime: time.Now().Add(-time.Second)})
	assert.Equal(t, []string{"Database slow query detected"}, logger.warnings)
}
