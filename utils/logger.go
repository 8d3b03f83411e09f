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

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
	defaultLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	consoleLogFormat = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	logOutput        io.Writer = os.Stdout
)

// ConfigureConsoleLogFormat selects "json" or "text" output for loggers created afterwards.
func ConfigureConsoleLogFormat(format string) {
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		consoleLogFormat = "json"
	} else {
		consoleLogFormat = "text"
	}
}

// ConfigureOutput redirects loggers created afterwards.
func ConfigureOutput(w io.Writer) {
	if w != nil {
		logOutput = w
	}
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

// SetLoggerLevel changes the level of a registered logger. It reports whether
// the logger exists.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// ConfigureLogLevel sets the level of every registered logger and of loggers
// created afterwards.
func ConfigureLogLevel(levelStr string) {
	defaultLevel = ParseLogLevel(levelStr)
	loggerRegistryMu.RLock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(defaultLevel)
	}
	loggerRegistryMu.RUnlock()
}

// NewLogger returns a named logrus logger. Loggers are cached by name.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.RLock()
	existing, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		return existing
	}

	l := logrus.New()
	l.SetOutput(logOutput)
	l.SetLevel(defaultLevel)
	l.SetReportCaller(true)
	if consoleLogFormat == "json" {
		l.SetFormatter(&JSONLogFormatter{LoggerName: name, TimestampFormat: timestampFormat})
	} else {
		l.SetFormatter(&Log4jColorFormatter{LoggerName: name, TimestampFormat: timestampFormat, NameWidth: 10})
	}
	RegisterLogger(name, l)
	return l
}

// Log4jColorFormatter renders "ts LEVEL pid --- [name] file:line : msg k=v".
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	NameWidth       int
	DisableColors   bool
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := entry.Time.Format(f.TimestampFormat)
	lvl := padLeft(strings.ToUpper(entry.Level.String()), 7)
	name := padLeft(limitRunes(f.LoggerName, f.NameWidth), f.NameWidth)
	pid := fmt.Sprintf("%-6d", os.Getpid())
	if !f.DisableColors {
		lvl = colorLevel(lvl, entry.Level)
		name = colorWrap(name, ansiCyan)
		pid = colorWrap(pid, ansiMagenta)
	}
	caller := ""
	if entry.Caller != nil {
		caller = " " + callerString(entry.Caller.File, entry.Caller.Line)
		if !f.DisableColors {
			caller = colorWrap(caller, ansiFaint)
		}
	}
	line := fmt.Sprintf("%s %s %s --- [%s]%s : %s%s\n", ts, lvl, pid, name, caller, entry.Message, formatData(entry.Data))
	return []byte(line), nil
}

// JSONLogFormatter renders one JSON object per entry.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	type jsonLogRecord struct {
		Time    string                 `json:"time"`
		Level   string                 `json:"level"`
		Logger  string                 `json:"logger"`
		Caller  string                 `json:"caller,omitempty"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields,omitempty"`
	}
	rec := jsonLogRecord{
		Time:    entry.Time.Format(f.TimestampFormat),
		Level:   strings.ToLower(entry.Level.String()),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = callerString(entry.Caller.File, entry.Caller.Line)
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			rec.Fields[k] = v
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func formatData(data logrus.Fields) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(fmt.Sprint(data[k]))
	}
	return b.String()
}

func callerString(file string, line int) string {
	dir := filepath.Base(filepath.Dir(file))
	return dir + "/" + filepath.Base(file) + ":" + strconv.Itoa(line)
}

func padLeft(s string, width int) string { return fmt.Sprintf("%"+strconv.Itoa(width)+"s", s) }

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

const (
	ansiReset   = "\x1b[0m"
	ansiFaint   = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorWrap(s, ansiRed)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.DebugLevel:
		return colorWrap(s, ansiBlue)
	default:
		return colorWrap(s, ansiMagenta)
	}
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// FieldLogger adapts a named logrus logger to the key/value style
// Debug(msg, "k1", v1, "k2", v2) used across this module.
type FieldLogger struct {
	name   string
	logger *logrus.Logger
}

func NewFieldLogger(name string) *FieldLogger {
	return &FieldLogger{name: name, logger: NewLogger(name)}
}

// SetLevel changes the level of the underlying named logger.
func (l *FieldLogger) SetLevel(level string) {
	SetLoggerLevel(l.name, level)
}

func (l *FieldLogger) Debug(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Debug(msg)
}

func (l *FieldLogger) Info(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Info(msg)
}

func (l *FieldLogger) Warn(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Warn(msg)
}

func (l *FieldLogger) Error(msg string, fields ...interface{}) {
	l.logger.WithFields(toFields(fields)).Error(msg)
}

// toFields pairs up alternating keys and values. A trailing key without a
// value is dropped.
func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
