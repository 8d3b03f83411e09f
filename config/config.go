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

// Package config loads the application configuration from an optional YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/crudkit/database"
)

// Config is the effective application configuration.
type Config struct {
	DataSourceName string                    `mapstructure:"datasource_name" json:"datasource_name" yaml:"datasource_name"`
	LogLevel       string                    `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	Database       database.ConnectionConfig `mapstructure:"database" json:"database" yaml:"database"`
}

// envBindings maps configuration keys to the environment variables that
// override them.
var envBindings = map[string]string{
	"datasource_name":           "DATASOURCE_NAME",
	"log_level":                 "LOG_LEVEL",
	"database.type":             "DB_TYPE",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.username":         "DB_USERNAME",
	"database.password":         "DB_PASSWORD",
	"database.dbname":           "DB_NAME",
	"database.sslmode":          "DB_SSLMODE",
	"database.enable_query_log": "DB_ENABLE_QUERY_LOG",
	"database.max_idle_conns":   "DB_MAX_IDLE_CONNS",
	"database.max_open_conns":   "DB_MAX_OPEN_CONNS",
	"database.slow_query_time":  "DB_SLOW_QUERY_TIME",
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		DataSourceName: "db",
		LogLevel:       "info",
		Database:       *database.DefaultConnectionConfig(),
	}
}

// Load reads path when it names an existing file, then applies environment
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write dumps cfg as YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// setDefaults registers every key so that environment overrides are picked
// up even when no file sets the key.
func setDefaults(v *viper.Viper, def *Config) {
	db := def.Database
	v.SetDefault("datasource_name", def.DataSourceName)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("database.type", db.Type)
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.username", db.Username)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.dbname", db.DBName)
	v.SetDefault("database.sslmode", db.SSLMode)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", db.ConnMaxIdleTime)
	v.SetDefault("database.connect_timeout", db.ConnectTimeout)
	v.SetDefault("database.read_timeout", db.ReadTimeout)
	v.SetDefault("database.write_timeout", db.WriteTimeout)
	v.SetDefault("database.enable_reconnect", db.EnableReconnect)
	v.SetDefault("database.reconnect_interval", db.ReconnectInterval)
	v.SetDefault("database.max_reconnect_tries", db.MaxReconnectTries)
	v.SetDefault("database.health_check_interval", db.HealthCheckInterval)
	v.SetDefault("database.enable_query_log", db.EnableQueryLog)
	v.SetDefault("database.slow_query_time", db.SlowQueryTime)
}
