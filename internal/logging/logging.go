// Package logging provides structured leveled logging for culprit.
//
// It favors explicit, boring Go over clever abstractions: named loggers,
// printf-style messages, and optional key-value fields for searchability.
//
// Initialize the logger once at startup:
//
//	logging.Initialize("info")
//
// Get a named logger per component:
//
//	logger := logging.GetLogger("analysis")
//	logger.Info("ranking %d candidates", n)
//
// Structured fields:
//
//	logger.InfoWithFields("query complete",
//	    logging.Field("records", len(records)),
//	    logging.Field("window", window.String()),
//	)
//
// Logger instances are immutable; WithField and WithFields return copies,
// so loggers are safe to share across goroutines.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is the logging severity level.
type LogLevel int

const (
	// DEBUG level for detailed debugging information
	DEBUG LogLevel = iota
	// INFO level for informational messages
	INFO
	// WARN level for warning messages
	WARN
	// ERROR level for error messages
	ERROR
	// FATAL level for fatal messages
	FATAL
)

// LogField is a structured logging field.
type LogField struct {
	Key   string
	Value interface{}
}

// Field creates a structured logging field.
func Field(key string, value interface{}) LogField {
	return LogField{Key: key, Value: value}
}

// Logger writes leveled, optionally structured log messages. The minimum
// level is global, set once via Initialize.
type Logger struct {
	name   string
	fields map[string]interface{}
}

var (
	globalLevel = INFO
	levelMu     sync.RWMutex
	// exitFunc is called by Fatal. Overridable for tests.
	exitFunc = os.Exit
)

func parseLevel(levelStr string) (LogLevel, error) {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", levelStr)
	}
}

// Initialize sets the global minimum log level. Unknown levels fall back to
// INFO and return an error so callers can surface the typo.
func Initialize(levelStr string) error {
	level, err := parseLevel(levelStr)
	levelMu.Lock()
	globalLevel = level
	levelMu.Unlock()
	return err
}

// GetLogger returns a logger with the specified component name.
func GetLogger(name string) *Logger {
	return &Logger{
		name:   name,
		fields: make(map[string]interface{}),
	}
}

func (l *Logger) shouldLog(level LogLevel) bool {
	levelMu.RLock()
	defer levelMu.RUnlock()
	return level >= globalLevel
}

// WithField returns a copy of the logger with an added persistent field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	clone := &Logger{
		name:   l.name,
		fields: cloneFields(l.fields),
	}
	clone.fields[key] = value
	return clone
}

// WithFields returns a copy of the logger with added persistent fields.
func (l *Logger) WithFields(fields ...LogField) *Logger {
	clone := &Logger{
		name:   l.name,
		fields: cloneFields(l.fields),
	}
	for _, f := range fields {
		clone.fields[f.Key] = f.Value
	}
	return clone
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.shouldLog(DEBUG) {
		l.logf("DEBUG", msg, args...)
	}
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.shouldLog(INFO) {
		l.logf("INFO", msg, args...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.shouldLog(WARN) {
		l.logf("WARN", msg, args...)
	}
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	if l.shouldLog(ERROR) {
		l.logf("ERROR", msg, args...)
	}
}

// ErrorWithErr logs an error message with an error object appended.
func (l *Logger) ErrorWithErr(msg string, err error, args ...interface{}) {
	if l.shouldLog(ERROR) {
		args = append(args, err)
		l.logf("ERROR", msg+" - %v", args...)
	}
}

// Fatal logs a fatal message and exits the program with code 1.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	if l.shouldLog(FATAL) {
		l.logf("FATAL", msg, args...)
		exitFunc(1)
	}
}

// DebugWithFields logs a debug message with structured fields.
func (l *Logger) DebugWithFields(msg string, fields ...LogField) {
	if l.shouldLog(DEBUG) {
		l.logWithFields("DEBUG", msg, fields...)
	}
}

// InfoWithFields logs an info message with structured fields.
func (l *Logger) InfoWithFields(msg string, fields ...LogField) {
	if l.shouldLog(INFO) {
		l.logWithFields("INFO", msg, fields...)
	}
}

// WarnWithFields logs a warning message with structured fields.
func (l *Logger) WarnWithFields(msg string, fields ...LogField) {
	if l.shouldLog(WARN) {
		l.logWithFields("WARN", msg, fields...)
	}
}

// ErrorWithFields logs an error message with structured fields.
func (l *Logger) ErrorWithFields(msg string, fields ...LogField) {
	if l.shouldLog(ERROR) {
		l.logWithFields("ERROR", msg, fields...)
	}
}

func (l *Logger) logf(level, msg string, args ...interface{}) {
	l.writeLog(level, fmt.Sprintf(msg, args...), l.fields)
}

func (l *Logger) logWithFields(level, msg string, fields ...LogField) {
	merged := cloneFields(l.fields)
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	l.writeLog(level, msg, merged)
}

// writeLog formats the message and routes it by severity:
// DEBUG/INFO/WARN to stdout, ERROR/FATAL to stderr.
func (l *Logger) writeLog(level, msg string, fields map[string]interface{}) {
	logMsg := fmt.Sprintf("[%s] [%s] %s: %s", timestamp(), level, l.name, msg)

	if len(fields) > 0 {
		logMsg += " |"
		for k, v := range fields {
			logMsg += fmt.Sprintf(" %s=%v", k, v)
		}
	}

	if level == "ERROR" || level == "FATAL" {
		fmt.Fprintf(os.Stderr, "%s\n", logMsg)
	} else {
		fmt.Fprintf(os.Stdout, "%s\n", logMsg)
	}
}

// timestamp returns an RFC3339 timestamp for log lines.
// Overridable via LOG_TIMESTAMP for deterministic test output.
func timestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}

// cloneFields copies the source fields map; nil input yields an empty map.
func cloneFields(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
