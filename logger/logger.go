// Package logger is a small leveled logger modeled on mediamtx's
// internal/logger: a Destination interface the host can override, and a
// Logger that prefixes every line with a colorized level tag.
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/gookit/color"
)

// Level is a log severity.
type Level int

// Recognized levels, lowest to highest severity.
const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) tag() string {
	switch l {
	case Debug:
		return color.Gray.Sprint("DEBUG")
	case Info:
		return color.Cyan.Sprint("INFO ")
	case Warn:
		return color.Yellow.Sprint("WARN ")
	case Error:
		return color.Red.Sprint("ERROR")
	default:
		return "?????"
	}
}

// Destination receives formatted log lines. Log writes to a
// Destination; hosts that want to route HDS logs into their own
// telemetry implement this instead of using the default.
type Destination interface {
	Write(line string)
}

// StdoutDestination writes every line to os.Stdout, newline-terminated.
type StdoutDestination struct{}

// Write implements Destination.
func (StdoutDestination) Write(line string) {
	fmt.Fprintln(os.Stdout, line)
}

// Logger writes leveled, prefixed lines to a Destination.
type Logger struct {
	Dest  Destination
	Level Level

	// Prefix identifies the subsystem or rendition this Logger belongs
	// to, e.g. a media's bitrate.
	Prefix string
}

// New returns a Logger writing to dest at the given minimum level. A nil
// dest defaults to StdoutDestination.
func New(dest Destination, level Level, prefix string) *Logger {
	if dest == nil {
		dest = StdoutDestination{}
	}
	return &Logger{Dest: dest, Level: level, Prefix: prefix}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil || level < l.Level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("15:04:05.000")
	if l.Prefix != "" {
		l.Dest.Write(fmt.Sprintf("%s %s [%s] %s", ts, level.tag(), l.Prefix, msg))
	} else {
		l.Dest.Write(fmt.Sprintf("%s %s %s", ts, level.tag(), msg))
	}
}

// Debug logs at Debug level.
func (l *Logger) Debug(format string, args ...interface{}) { l.log(Debug, format, args...) }

// Info logs at Info level.
func (l *Logger) Info(format string, args ...interface{}) { l.log(Info, format, args...) }

// Warn logs at Warn level.
func (l *Logger) Warn(format string, args ...interface{}) { l.log(Warn, format, args...) }

// Error logs at Error level.
func (l *Logger) Error(format string, args ...interface{}) { l.log(Error, format, args...) }
