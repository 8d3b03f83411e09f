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
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// MemoryDBName selects a shared in-memory sqlite database.
const MemoryDBName = ":memory:"

type defaultDatabaseManager struct {
	config          *ConnectionConfig
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	lastError       error
	lastHealthCheck time.Time
	healthStatus    *HealthStatus
	reconnectTries  int
	stopHealthCheck chan struct{}
}

// NewDatabaseManager returns a Manager backed by Bun. If config is nil, the
// default configuration is used. The manager logs through GetLogger until
// SetLogger is called.
func NewDatabaseManager(config *ConnectionConfig) Manager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	cfg := *config
	return &defaultDatabaseManager{
		config:       &cfg,
		logger:       GetLogger(),
		healthStatus: &HealthStatus{},
	}
}

// Open validates cfg, builds a manager and connects it.
func Open(ctx context.Context, cfg *ConnectionConfig) (Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	supportedTypes := []string{TypeMySQL, TypePostgres, TypeSQLite}
	supported := false
	for _, t := range supportedTypes {
		if cfg.NormalizedType() == t {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", cfg.Type, supportedTypes)
	}
	manager := NewDatabaseManager(cfg)
	if err := manager.Connect(ctx); err != nil {
		return nil, err
	}
	return manager, nil
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}

	var err error
	dm.sqlDB, dm.db, err = dm.createConnection()
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	dm.configureConnectionPool()

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.db.PingContext(ctxTimeout); err != nil {
		dm.lastError = err
		_ = dm.db.Close()
		dm.db, dm.sqlDB = nil, nil
		return fmt.Errorf("database connection test failed: %w", err)
	}

	dm.connected = true
	dm.lastError = nil

	if dm.config.HealthCheckInterval > 0 {
		dm.stopHealthCheck = make(chan struct{})
		go dm.healthCheckLoop(dm.stopHealthCheck)
	}

	dm.logger.Info("Database connected successfully", "type", dm.config.NormalizedType(), "host", dm.config.Host, "dbname", dm.config.DBName)
	return nil
}

func (dm *defaultDatabaseManager) createConnection() (*sql.DB, *bun.DB, error) {
	var sqlDB *sql.DB
	var db *bun.DB
	var err error

	if dm.config.ConnectTimeout.Seconds() <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	switch dm.config.NormalizedType() {
	case TypeMySQL:
		sqlDB, db, err = dm.createMySQLConnection()
	case TypePostgres:
		sqlDB, db, err = dm.createPostgreSQLConnection()
	case TypeSQLite:
		sqlDB, db, err = dm.createSQLiteConnection()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}

	if err != nil {
		return nil, nil, err
	}

	if dm.config.EnableQueryLog {
		db.AddQueryHook(NewQueryHook(os.Stdout, true))
	}

	if _, ok := os.LookupEnv("BUNDEBUG"); ok {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}

	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(&slowQueryHook{
			slowTime: dm.config.SlowQueryTime,
			logger:   dm.logger,
		})
	}

	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createMySQLConnection() (*sql.DB, *bun.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true&timeout=%s&readTimeout=%s&writeTimeout=%s",
		dm.config.Username,
		dm.config.Password,
		dm.config.Host,
		dm.config.Port,
		dm.config.DBName,
		dm.config.ConnectTimeout,
		dm.config.ReadTimeout,
		dm.config.WriteTimeout,
	)

	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, mysqldialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createPostgreSQLConnection() (*sql.DB, *bun.DB, error) {
	sslMode := dm.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		dm.config.Username,
		dm.config.Password,
		dm.config.Host,
		dm.config.Port,
		dm.config.DBName,
		sslMode,
		int(dm.config.ConnectTimeout.Seconds()),
	)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, pgdialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createSQLiteConnection() (*sql.DB, *bun.DB, error) {
	dsn := fmt.Sprintf("%s.db", dm.config.DBName)
	if dm.config.DBName == MemoryDBName {
		dsn = "file::memory:?cache=shared"
		// every pooled connection would otherwise see its own empty database
		dm.config.MaxOpenConns = 1
		dm.config.MaxIdleConns = 1
		dm.config.ConnMaxLifetime = 0
		dm.config.ConnMaxIdleTime = 0
	}

	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) configureConnectionPool() {
	if dm.sqlDB == nil {
		return
	}

	dm.sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	dm.sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	dm.sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	dm.sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.stopHealthCheck != nil {
		close(dm.stopHealthCheck)
		dm.stopHealthCheck = nil
	}

	if dm.db == nil {
		return nil
	}

	err := dm.db.Close()
	dm.db = nil
	dm.sqlDB = nil
	dm.connected = false

	if err != nil {
		dm.logger.Error("Failed to close database connection", "error", err)
	} else {
		dm.logger.Info("Database connection closed")
	}
	return err
}

func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.logger.Info("Attempting to reconnect to the database")

	if err := dm.Disconnect(); err != nil {
		dm.logger.Warn("Error disconnecting existing connection", "error", err)
	}

	return dm.Connect(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()

	if db == nil {
		return fmt.Errorf("database not connected")
	}

	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

func (dm *defaultDatabaseManager) Config() ConnectionConfig {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return *dm.config
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{
		LastCheckTime: start,
		Connected:     dm.connected,
	}

	if dm.db == nil {
		status.Healthy = false
		status.LastError = "Database not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	err := dm.db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)

	if err != nil {
		status.Healthy = false
		status.Connected = false
		status.LastError = err.Error()
		dm.lastError = err
	} else {
		status.Healthy = true
		status.Connected = true
		dm.lastError = nil
	}

	if dm.sqlDB != nil {
		stats := dm.sqlDB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}

	dm.healthStatus = status
	dm.lastHealthCheck = start

	return status
}

func (dm *defaultDatabaseManager) healthCheckLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			status := dm.HealthCheck(ctx)
			cancel()
			if !status.Healthy && dm.config.EnableReconnect {
				// a successful reconnect starts a fresh loop
				if dm.handleReconnect() {
					return
				}
			}

		case <-stop:
			return
		}
	}
}

func (dm *defaultDatabaseManager) handleReconnect() bool {
	dm.mu.Lock()
	if dm.reconnectTries >= dm.config.MaxReconnectTries {
		dm.mu.Unlock()
		dm.logger.Error("Max reconnect attempts reached, stopping", "tries", dm.reconnectTries)
		return false
	}
	dm.reconnectTries++
	tries := dm.reconnectTries
	dm.mu.Unlock()

	dm.logger.Info("Starting database reconnect", "try", tries)

	time.Sleep(dm.config.ReconnectInterval)

	ctx, cancel := context.WithTimeout(context.Background(), dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.Reconnect(ctx); err != nil {
		dm.logger.Error("Reconnect failed", "error", err, "try", tries)
		return false
	}
	dm.mu.Lock()
	dm.reconnectTries = 0
	dm.mu.Unlock()
	dm.logger.Info("Reconnect succeeded")
	return true
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()

	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
