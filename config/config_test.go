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

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/crudkit/config"
	"github.com/tomoncle/crudkit/database"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, database.TypeSQLite, cfg.Database.Type)
	assert.Equal(t, "todo", cfg.Database.DBName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")
	t.Setenv("DB_SLOW_QUERY_TIME", "250ms")
	t.Setenv("DATASOURCE_NAME", "pg")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Database.EnableQueryLog)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.SlowQueryTime)
	assert.Equal(t, "pg", cfg.DataSourceName)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crudkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
database:
  type: mysql
  host: localhost
  port: 3306
  dbname: todos
  connect_timeout: 3s
`), 0o600))
	t.Setenv("DB_NAME", "todos_test")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "todos_test", cfg.Database.DBName)
	assert.Equal(t, 3*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unterminated"), 0o600))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	want := config.Default()
	want.Database.Host = "example.org"
	want.Database.SlowQueryTime = 750 * time.Millisecond

	var buf bytes.Buffer
	require.NoError(t, config.Write(&buf, want))
	assert.Contains(t, buf.String(), "host: example.org")

	path := filepath.Join(t.TempDir(), "dump.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
