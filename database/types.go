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
	"time"

	"github.com/uptrace/bun"
)

// Manager owns one database connection and reports its health.
type Manager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	GetStats() *DBStats
	Config() ConnectionConfig
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// Supported database types.
const (
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `mapstructure:"type" json:"type" yaml:"type"` // postgres, mysql, sqlite
	Host                string        `mapstructure:"host" json:"host" yaml:"host"`
	Port                int           `mapstructure:"port" json:"port" yaml:"port"`
	Username            string        `mapstructure:"username" json:"username" yaml:"username"`
	Password            string        `mapstructure:"password" json:"password" yaml:"password"`
	DBName              string        `mapstructure:"dbname" json:"dbname" yaml:"dbname"`
	SSLMode             string        `mapstructure:"sslmode" json:"sslmode" yaml:"sslmode"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns" json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns        int           `mapstructure:"max_open_conns" json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime     time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `mapstructure:"conn_max_idle_time" json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout         time.Duration `mapstructure:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	EnableReconnect     bool          `mapstructure:"enable_reconnect" json:"enable_reconnect" yaml:"enable_reconnect"`
	ReconnectInterval   time.Duration `mapstructure:"reconnect_interval" json:"reconnect_interval" yaml:"reconnect_interval"`
	MaxReconnectTries   int           `mapstructure:"max_reconnect_tries" json:"max_reconnect_tries" yaml:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval" json:"health_check_interval" yaml:"health_check_interval"`
	EnableQueryLog      bool          `mapstructure:"enable_query_log" json:"enable_query_log" yaml:"enable_query_log"`
	SlowQueryTime       time.Duration `mapstructure:"slow_query_time" json:"slow_query_time" yaml:"slow_query_time"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
// It points at a local sqlite file called todo.db.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Type:                TypeSQLite,
		DBName:              "todo",
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}

// NormalizedType maps aliases such as "postgresql" or "sqlite3" to the
// supported type names. Unknown types are returned unchanged.
func (c ConnectionConfig) NormalizedType() string {
	switch c.Type {
	case "postgres", "postgresql":
		return TypePostgres
	case "sqlite", "sqlite3":
		return TypeSQLite
	default:
		return c.Type
	}
}
