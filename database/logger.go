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
	"strings"
	"sync"

	"github.com/tomoncle/crudkit/utils"
)

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "DEBUG"
	}
}

// Logger is the key/value logger used by the database layer. It satisfies
// datasource.Logger.
type Logger interface {
	SetLevel(LogLevel)
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// InitLogger installs log as the package logger unless one is already set.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = log
	}
}

func GetLogger() Logger {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}

	dl := &DefaultLogger{logger: utils.NewFieldLogger("DATABASE")}
	globalLoggerMu.Lock()
	if globalLogger == nil {
		globalLogger = dl
	}
	l = globalLogger
	globalLoggerMu.Unlock()
	return l
}

type DefaultLogger struct {
	logger *utils.FieldLogger
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.logger.Debug(msg, fields...)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.logger.Info(msg, fields...)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.logger.Warn(msg, fields...)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.logger.Error(msg, fields...)
}

func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.logger.SetLevel(strings.ToLower(level.String()))
}
