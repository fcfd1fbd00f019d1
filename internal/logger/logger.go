// Package logger wraps logrus behind a printf-style facade. All output goes
// to stderr; stdout is reserved for protocol payloads.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Initialize sets up the logger with the specified level.
func Initialize(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	log.SetLevel(parseLevel(level))
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}
