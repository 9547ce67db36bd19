// Package log provides named loggers for hugefile subsystems.
//
// Loggers are keyed by subsystem name ("chunk", "watcher", "plugin", ...)
// and share a compact single-line format. The buffer core stays quiet on
// the happy path; loggers exist for eviction, watcher and plugin events.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	loggers = make(map[string]*Logger)
)

// Logger is a named logrus logger with the hugefile line format.
type Logger struct {
	logrus.Logger
	name string
}

// Format renders entries as "2006/01/02 15:04:05.000000 name <LEVEL>: msg".
func (l *Logger) Format(e *logrus.Entry) ([]byte, error) {
	const timeFormat = "2006/01/02 15:04:05.000000"

	str := fmt.Sprintf("%s %s <%s>: %s",
		e.Time.Format(timeFormat),
		l.name,
		strings.ToUpper(e.Level.String()),
		e.Message)
	if len(e.Data) != 0 {
		str += fmt.Sprintf(" %v", e.Data)
	}
	str += "\n"
	return []byte(str), nil
}

func newLogger(name string) *Logger {
	l := &Logger{name: name}
	l.Out = os.Stderr
	l.Formatter = l
	l.Level = defaultLevel
	l.Hooks = make(logrus.LevelHooks)
	return l
}

// GetLogger returns the logger for a subsystem, creating it on first use.
func GetLogger(name string) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := newLogger(name)
	loggers[name] = l
	return l
}

// SetLevel sets the level of every existing and future logger.
func SetLevel(level logrus.Level) {
	mu.Lock()
	defer mu.Unlock()
	defaultLevel = level
	for _, l := range loggers {
		l.Level = level
	}
}

var defaultLevel = logrus.InfoLevel

// ParseLevel maps a config string to a logrus level, defaulting to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
