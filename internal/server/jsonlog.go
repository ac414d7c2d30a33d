// jsonlog.go - Structured logging with optional JSON output.
//
// Development gets plain key=value lines; setting FP_LOG_FORMAT=json
// (or FP_ENV=production) switches every entry to one JSON object per
// line.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// Logger writes structured log entries.
type Logger struct {
	output     io.Writer
	minLevel   LogLevel
	enableJSON bool
}

// LogEntry is one structured log record.
type LogEntry struct {
	Level   LogLevel               `json:"level"`
	Time    string                 `json:"time"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// DefaultLogger is the process-wide logger instance.
var DefaultLogger = newLoggerFromEnv()

func newLoggerFromEnv() *Logger {
	enableJSON := os.Getenv("FP_LOG_FORMAT") == "json" || os.Getenv("FP_ENV") == "production"
	return &Logger{
		output:     os.Stdout,
		minLevel:   logLevelFromEnv(),
		enableJSON: enableJSON,
	}
}

func logLevelFromEnv() LogLevel {
	switch os.Getenv("FP_LOG_LEVEL") {
	case "debug":
		return LogLevelDebug
	case "warn":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l *Logger) log(level LogLevel, msg string, fields map[string]interface{}, err error) {
	if logLevelRank[level] < logLevelRank[l.minLevel] {
		return
	}

	entry := LogEntry{
		Level:   level,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Message: msg,
		Fields:  fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if l.enableJSON {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.output, string(data))
		return
	}

	fmt.Fprintf(l.output, "[%s] %s %s", entry.Level, entry.Time, entry.Message)
	for k, v := range entry.Fields {
		fmt.Fprintf(l.output, " %s=%v", k, v)
	}
	if entry.Error != "" {
		fmt.Fprintf(l.output, " error=%s", entry.Error)
	}
	fmt.Fprintln(l.output)
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log(LogLevelDebug, msg, fields, nil)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log(LogLevelInfo, msg, fields, nil)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log(LogLevelWarn, msg, fields, nil)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields map[string]interface{}, err error) {
	l.log(LogLevelError, msg, fields, err)
}

// Package-level helpers over DefaultLogger.

func Debug(msg string, fields map[string]interface{}) { DefaultLogger.Debug(msg, fields) }
func Info(msg string, fields map[string]interface{})  { DefaultLogger.Info(msg, fields) }
func Warn(msg string, fields map[string]interface{})  { DefaultLogger.Warn(msg, fields) }
func Error(msg string, fields map[string]interface{}, err error) {
	DefaultLogger.Error(msg, fields, err)
}
