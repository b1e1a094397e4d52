// Package logging provides a trimmed structured logger, grounded on the
// teacher's logger package (github.com/nabbar/golib/logger): a Logger
// interface with level-filtered Debug/Info/Warning/Error calls and a
// chainable Entry for attaching fields, but backed directly by
// github.com/sirupsen/logrus instead of the teacher's multi-hook (gin/gorm/
// syslog) setup, since a batch CLI scanner only ever logs to one stream.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the minimal surface the orchestrator and probe modules need.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warning(msg string, fields Fields)
	Error(msg string, fields Fields)
	// Fatal logs at error level then invokes the configured exit function,
	// never a bare os.Exit, so callers stay testable.
	Fatal(msg string, fields Fields)
	WithFields(fields Fields) Logger
}

type logger struct {
	entry *logrus.Entry
	exit  func(code int)
}

// New builds a Logger at the given level ("debug", "info", "warn", "error").
func New(level string) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return &logger{entry: logrus.NewEntry(l), exit: os.Exit}
}

func (l *logger) Debug(msg string, fields Fields)   { l.entry.WithFields(logrus.Fields(fields)).Debug(msg) }
func (l *logger) Info(msg string, fields Fields)    { l.entry.WithFields(logrus.Fields(fields)).Info(msg) }
func (l *logger) Warning(msg string, fields Fields) { l.entry.WithFields(logrus.Fields(fields)).Warn(msg) }
func (l *logger) Error(msg string, fields Fields)   { l.entry.WithFields(logrus.Fields(fields)).Error(msg) }

func (l *logger) Fatal(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Error(msg)
	l.exit(1)
}

func (l *logger) WithFields(fields Fields) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(fields)), exit: l.exit}
}
