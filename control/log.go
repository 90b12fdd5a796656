// control/log.go
// Author: momentics <momentics@gmail.com>
//
// Minimal structured logger sitting on top of the standard library's log
// package: every call still goes through log.Print under the hood (no
// third-party logging library appears anywhere in the retrieved example
// pack, see DESIGN.md), but callers attach key/value Fields instead of
// hand-formatting strings, and a level can be raised to silence Debug
// output in production.

package control

import (
	"fmt"
	"log"
	"strings"
)

// Level gates which calls reach the underlying logger.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Field is one structured key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// F builds a Field inline at the call site, e.g. control.F("endpoint", addr).
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger is a level-gated, allocation-conscious wrapper over log.Logger.
type Logger struct {
	prefix string
	level  Level
}

// NewLogger creates a Logger tagging every line with prefix (e.g. a
// component name like "tcp" or "reactor").
func NewLogger(prefix string) *Logger {
	return &Logger{prefix: prefix, level: LevelInfo}
}

// SetLevel raises or lowers the gate; calls below level are dropped
// without formatting their fields.
func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) log(level Level, tag, msg string, fields []Field) {
	if level < l.level {
		return
	}
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(l.prefix)
	b.WriteString("] ")
	b.WriteString(tag)
	b.WriteString(": ")
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(toString(f.Value))
	}
	log.Print(b.String())
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return fmt.Sprint(v)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, "debug", msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, "info", msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, "warn", msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, "error", msg, fields) }
