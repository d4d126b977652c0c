// Package log provides context-aware logging for monorepo.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

type ctxKey struct{}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value string
}

// F builds a Field.
func F(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Sink receives informational entries, e.g. from the terminal decorator.
type Sink interface {
	Info(msg string, fields ...Field)
}

// Logger provides output and verbose command logging.
type Logger struct {
	out     io.Writer
	verbose bool
	quiet   bool
}

// New creates a new logger. quiet suppresses everything, including verbose output.
func New(out io.Writer, verbose, quiet bool) *Logger {
	return &Logger{out: out, verbose: verbose, quiet: quiet}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context.
// Returns a no-op logger if none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{out: io.Discard}
}

// Printf writes formatted output.
func (l *Logger) Printf(format string, args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintf(l.out, format, args...)
}

// Println writes a line of output.
func (l *Logger) Println(args ...any) {
	if l.quiet {
		return
	}
	fmt.Fprintln(l.out, args...)
}

// Warnf writes a warning line. Warnings are shown unless quiet.
func (l *Logger) Warnf(format string, args ...any) {
	l.Printf("Warning: "+format+"\n", args...)
}

// Command logs an external command execution and returns a func that
// appends the elapsed time once the command finished.
// Only prints when verbose mode is enabled.
func (l *Logger) Command(dir, name string, args ...string) func(time.Duration) {
	if !l.IsVerbose() {
		return func(time.Duration) {}
	}
	line := "$ " + strings.TrimSpace(name+" "+strings.Join(args, " "))
	if dir != "" {
		line = "[" + dir + "] " + line
	}
	return func(d time.Duration) {
		fmt.Fprintf(l.out, "%s (%s)\n", line, d.Round(time.Millisecond))
	}
}

// Debug logs a message with key/value pairs in verbose mode.
// A trailing key without value is dropped.
func (l *Logger) Debug(msg string, keyvals ...any) {
	if !l.IsVerbose() {
		return
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	fmt.Fprintln(l.out, b.String())
}

// Info implements Sink. Entries carrying a directory field are printed
// as "[dir] msg", the way commands are echoed. Only shown in verbose mode.
func (l *Logger) Info(msg string, fields ...Field) {
	if !l.IsVerbose() {
		return
	}
	var dir string
	var b strings.Builder
	for _, f := range fields {
		switch f.Key {
		case "directory":
			dir = f.Value
		case "source":
		default:
			fmt.Fprintf(&b, " %s=%s", f.Key, f.Value)
		}
	}
	if dir != "" {
		fmt.Fprintf(l.out, "[%s] %s%s\n", dir, msg, b.String())
		return
	}
	fmt.Fprintf(l.out, "%s%s\n", msg, b.String())
}

// IsVerbose returns true if verbose output is enabled and not silenced.
func (l *Logger) IsVerbose() bool {
	return l.verbose && !l.quiet
}

// Writer returns the underlying writer.
func (l *Logger) Writer() io.Writer {
	return l.out
}
