// Package scriptlog writes JSON Lines log files for scripts, one dated file
// per script under <dir>/logs. Logging is gated by a debug flag fixed at
// construction; a disabled or nil logger discards everything, so call sites
// never guard. Logging failures are swallowed — a log problem must never
// take a running script down.
package scriptlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is a structured logger for one script.
type Logger struct {
	lg *logrus.Logger
}

// New creates a logger for the named script. When debug is false the logger
// is inert. The log file is logs/<script>-YYYYMMDD.log under dir, created
// on demand.
func New(script, dir string, debug bool) *Logger {
	lg := logrus.New()
	lg.SetLevel(logrus.DebugLevel)
	lg.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	lg.SetOutput(io.Discard)
	if !debug {
		return &Logger{lg: lg}
	}

	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return &Logger{lg: lg}
	}
	name := fmt.Sprintf("%s-%s.log", script, time.Now().UTC().Format("20060102"))
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &Logger{lg: lg}
	}
	lg.SetOutput(f)
	return &Logger{lg: lg}
}

// Discard returns a logger that drops everything. Handy for tests.
func Discard() *Logger {
	lg := logrus.New()
	lg.SetOutput(io.Discard)
	return &Logger{lg: lg}
}

func (l *Logger) entry(context, event string, details map[string]any) *logrus.Entry {
	fields := logrus.Fields{"context": context, "event": event}
	if len(details) > 0 {
		fields["details"] = details
	}
	return l.lg.WithFields(fields)
}

// Info logs an informational event.
func (l *Logger) Info(context, event, msg string, details map[string]any) {
	if l == nil {
		return
	}
	l.entry(context, event, details).Info(msg)
}

// Warn logs a warning.
func (l *Logger) Warn(context, event, msg string, details map[string]any) {
	if l == nil {
		return
	}
	l.entry(context, event, details).Warn(msg)
}

// Error logs an error.
func (l *Logger) Error(context, event, msg string, details map[string]any) {
	if l == nil {
		return
	}
	l.entry(context, event, details).Error(msg)
}

// Debug logs a debug event.
func (l *Logger) Debug(context, event, msg string, details map[string]any) {
	if l == nil {
		return
	}
	l.entry(context, event, details).Debug(msg)
}
