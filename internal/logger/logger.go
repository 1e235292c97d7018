package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// VerboseChecker reports whether debug and info lines should be written
type VerboseChecker interface {
	IsVerbose() bool
}

// Logger writes component-tagged lines; Debug and Info are gated by the verbose checker
type Logger struct {
	component      string
	verboseChecker VerboseChecker
	out            *sink
}

// sink serializes writes so a logger shared between the session goroutine
// and the caller never interleaves partial lines.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// Field is a key-value pair appended to a log line
type Field struct {
	Key   string
	Value interface{}
}

// Level names used in the log line
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// New creates a logger writing to stderr
func New(component string, verboseChecker VerboseChecker) *Logger {
	return NewWithWriter(component, verboseChecker, os.Stderr)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(component string, verboseChecker VerboseChecker, w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{
		component:      component,
		verboseChecker: verboseChecker,
		out:            &sink{w: w},
	}
}

// NewWithCallback creates a stderr logger whose verbosity is read from verboseCheck on every call
func NewWithCallback(component string, verboseCheck func() bool) *Logger {
	return New(component, &callbackChecker{callback: verboseCheck})
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return NewWithWriter("", nil, io.Discard)
}

// WithComponent returns a logger sharing the same output under another component name
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		component:      component,
		verboseChecker: l.verboseChecker,
		out:            l.out,
	}
}

// Verbose reports whether debug output is enabled
func (l *Logger) Verbose() bool {
	return l.verboseChecker != nil && l.verboseChecker.IsVerbose()
}

type callbackChecker struct {
	callback func() bool
}

func (c *callbackChecker) IsVerbose() bool {
	if c.callback == nil {
		return false
	}
	return c.callback()
}

// StaticVerbosity is a VerboseChecker with a fixed answer
type StaticVerbosity bool

// IsVerbose implements VerboseChecker
func (s StaticVerbosity) IsVerbose() bool { return bool(s) }

// Debug logs only when verbose
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.Verbose() {
		l.write(LevelDebug, msg, nil, args...)
	}
}

// Info logs only when verbose
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.Verbose() {
		l.write(LevelInfo, msg, nil, args...)
	}
}

// Warn always logs
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.write(LevelWarn, msg, nil, args...)
}

// Error always logs
func (l *Logger) Error(msg string, args ...interface{}) {
	l.write(LevelError, msg, nil, args...)
}

// DebugWithFields logs a debug line with structured fields
func (l *Logger) DebugWithFields(msg string, fields []Field, args ...interface{}) {
	if l.Verbose() {
		l.write(LevelDebug, msg, fields, args...)
	}
}

// InfoWithFields logs an info line with structured fields
func (l *Logger) InfoWithFields(msg string, fields []Field, args ...interface{}) {
	if l.Verbose() {
		l.write(LevelInfo, msg, fields, args...)
	}
}

// WarnWithFields logs a warning with structured fields
func (l *Logger) WarnWithFields(msg string, fields []Field, args ...interface{}) {
	l.write(LevelWarn, msg, fields, args...)
}

// ErrorWithFields logs an error with structured fields
func (l *Logger) ErrorWithFields(msg string, fields []Field, args ...interface{}) {
	l.write(LevelError, msg, fields, args...)
}

func (l *Logger) write(level, msg string, fields []Field, args ...interface{}) {
	if l == nil || l.out == nil {
		return
	}

	component := l.component
	if component == "" {
		component = "qupid"
	}

	formatted := msg
	if len(args) > 0 {
		formatted = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s [%s] %s", time.Now().Format("15:04:05.000"), level, component, formatted)
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(parts, " "))
	}
	b.WriteByte('\n')

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	// nothing sensible to do if the log sink itself fails
	_, _ = io.WriteString(l.out.w, b.String())
}

// F builds an arbitrary field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

func Count(value int) Field {
	return Field{Key: "count", Value: value}
}

func Duration(d time.Duration) Field {
	return Field{Key: "duration", Value: d.Round(time.Millisecond)}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// RequestID tags a line with the attempt's request identifier
func RequestID(id string) Field {
	return Field{Key: "request_id", Value: id}
}
