// Package logging provides the leveled logger used by the packer CLI. The
// teacher (distr1/distri) logs unconditionally through the standard log
// package (log.Printf, log.Fatal); this wraps the same *log.Logger with a
// simple ordered level filter, since spec.md's --level flag has no
// equivalent in the teacher.
package logging

import (
	"fmt"
	"io"
	"log"
)

// Level is an ordered verbosity tier, from least to most verbose.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// ParseLevel parses one of "error", "warn", "info", "debug", "trace".
func ParseLevel(s string) (Level, error) {
	switch s {
	case "error":
		return LevelError, nil
	case "warn":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return 0, fmt.Errorf("invalid level %q: want one of error, warn, info, debug, trace", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// Logger filters log.Logger output by level.
type Logger struct {
	level Level
	log   *log.Logger
}

// New returns a Logger writing to w, flag is passed through to log.New
// (e.g. 0 for bare messages, log.LstdFlags for timestamps).
func New(w io.Writer, level Level, flag int) *Logger {
	return &Logger{level: level, log: log.New(w, "", flag)}
}

func (l *Logger) logf(level Level, prefix, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	l.log.Printf(prefix+": "+format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, "error", format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, "warn", format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, "info", format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, "debug", format, args...) }
func (l *Logger) Tracef(format string, args ...interface{}) { l.logf(LevelTrace, "trace", format, args...) }
