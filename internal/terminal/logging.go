package terminal

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/raphi011/monorepo/internal/log"
)

// outputMark prefixes every logged output line.
const outputMark = ">"

// Logging decorates a Terminal, recording each call and its output to a sink.
// Return values and side effects are those of the wrapped terminal.
type Logging struct {
	base Terminal
	sink log.Sink
}

// NewLogging wraps base.
func NewLogging(base Terminal, sink log.Sink) *Logging {
	return &Logging{base: base, sink: sink}
}

// Unwrap returns the decorated terminal.
func (l *Logging) Unwrap() Terminal {
	return l.base
}

func (l *Logging) logCall(method string, args ...string) {
	l.logLine(method + "(" + strings.Join(args, ", ") + ")")
}

func (l *Logging) logLine(line string) {
	l.sink.Info(line,
		log.F("source", "terminal"),
		log.F("directory", presentDirectory(l.base)),
	)
}

// presentDirectory reads the directory of the innermost terminal so that
// nested decorators do not log each other's pwd() calls.
func presentDirectory(t Terminal) string {
	for {
		u, ok := t.(interface{ Unwrap() Terminal })
		if !ok {
			return t.PresentDirectory()
		}
		t = u.Unwrap()
	}
}

func (l *Logging) logOutput(out string) {
	if out == "" {
		return
	}
	prefix := outputMark + "   "
	l.sink.Info(prefix+strings.ReplaceAll(out, "\n", "\n"+prefix), log.F("source", "terminal"))
}

func (l *Logging) logReported() {
	if r, ok := l.base.(OutputReporter); ok {
		l.logOutput(r.Output())
	}
}

// ChangeDirectory implements Terminal.
func (l *Logging) ChangeDirectory(path string) error {
	l.logCall("cd", path)
	err := l.base.ChangeDirectory(path)
	l.logReported()
	return err
}

// PresentDirectory implements Terminal.
func (l *Logging) PresentDirectory() string {
	l.logCall("pwd")
	return l.base.PresentDirectory()
}

// PushDirectory implements Terminal.
func (l *Logging) PushDirectory(path string) error {
	l.logCall("pushd", path)
	err := l.base.PushDirectory(path)
	l.logReported()
	return err
}

// PopDirectory implements Terminal.
func (l *Logging) PopDirectory() error {
	l.logCall("popd")
	err := l.base.PopDirectory()
	l.logReported()
	return err
}

// MakeDirectory implements Terminal.
func (l *Logging) MakeDirectory(path string, perm os.FileMode) (int, error) {
	l.logCall("mkdir", path, fmt.Sprintf("%#o", perm))
	code, err := l.base.MakeDirectory(path, perm)
	l.logReported()
	return code, err
}

// RemoveDirectory implements Terminal.
func (l *Logging) RemoveDirectory(ctx context.Context, path string) (int, error) {
	l.logCall("rmdir", path)
	code, err := l.base.RemoveDirectory(ctx, path)
	l.logReported()
	return code, err
}

// RemoveFile implements Terminal.
func (l *Logging) RemoveFile(ctx context.Context, path string) (int, error) {
	l.logCall("rm", path)
	code, err := l.base.RemoveFile(ctx, path)
	l.logReported()
	return code, err
}

// List implements Terminal.
func (l *Logging) List(ctx context.Context) (string, error) {
	l.logCall("ls")
	out, err := l.base.List(ctx)
	l.logReported()
	return out, err
}

// Exec implements Terminal.
func (l *Logging) Exec(ctx context.Context, name string, args ...string) (Invocation, error) {
	l.logLine("$ " + FormatCommand(name, args...))
	inv, err := l.base.Exec(ctx, name, args...)
	l.logOutput(inv.Output)
	return inv, err
}

// Output forwards to the wrapped terminal when it reports output.
func (l *Logging) Output() string {
	if r, ok := l.base.(OutputReporter); ok {
		return r.Output()
	}
	return ""
}
