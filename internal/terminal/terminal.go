package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Status codes returned by directory primitives.
const (
	StatusOK     = 0
	StatusExists = 1 // target already exists, not a failure
	StatusFailed = 2

	// StatusNotRunnable is reported when a command could not be started.
	StatusNotRunnable = 127
)

// ErrUnbalancedStack is returned by PopDirectory when nothing was pushed.
var ErrUnbalancedStack = errors.New("popd: directory stack empty")

// Terminal is the capability set shared by every execution context and
// every decorator.
type Terminal interface {
	ChangeDirectory(path string) error
	PresentDirectory() string
	PushDirectory(path string) error
	PopDirectory() error
	MakeDirectory(path string, perm os.FileMode) (int, error)
	RemoveDirectory(ctx context.Context, path string) (int, error)
	RemoveFile(ctx context.Context, path string) (int, error)
	List(ctx context.Context) (string, error)
	Exec(ctx context.Context, name string, args ...string) (Invocation, error)
}

// OutputReporter is implemented by terminals that keep the output of the
// most recent call around for inspection.
type OutputReporter interface {
	Output() string
}

// Invocation describes one finished external command.
type Invocation struct {
	Command   string // command line as issued, shell-quoted for display
	Directory string // absolute directory the command ran in
	Output    string // combined stdout and stderr, trimmed
	ExitCode  int
}

// Err returns a *CommandError when the command exited non-zero.
func (inv Invocation) Err() error {
	if inv.ExitCode == 0 {
		return nil
	}
	return &CommandError{Invocation: inv}
}

// CommandError reports an external command that exited with a non-zero status.
type CommandError struct {
	Invocation
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Output != "" {
		msg += ":\n" + e.Output
	}
	return msg
}

// FormatCommand renders a command line for display, quoting arguments
// that contain whitespace or quotes.
func FormatCommand(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{name}, args...) {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\n\"'\\$`") {
		return s
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`").Replace(s) + `"`
}
