package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Local runs commands on the host with a virtual working directory.
type Local struct {
	dir     string
	stack   []string
	output  string
	last    Invocation
	timeout time.Duration
	env     []string
}

// Option configures a Local terminal.
type Option func(*Local)

// WithTimeout bounds every command run through the terminal.
// Zero (the default) means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Local) {
		l.timeout = d
	}
}

// WithEnv appends KEY=VALUE pairs to the environment of every command.
func WithEnv(kv ...string) Option {
	return func(l *Local) {
		l.env = append(l.env, kv...)
	}
}

// NewLocal creates a terminal rooted at dir. An empty dir uses the
// process's working directory.
func NewLocal(dir string, opts ...Option) (*Local, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	l := &Local{dir: abs}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// resolve makes path absolute relative to the current directory.
func (l *Local) resolve(path string) string {
	if path == "" {
		return l.dir
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}
	return filepath.Clean(path)
}

// ChangeDirectory sets the current directory. Existence is not checked.
func (l *Local) ChangeDirectory(path string) error {
	l.output = ""
	l.dir = l.resolve(path)
	return nil
}

// PresentDirectory returns the current absolute directory.
func (l *Local) PresentDirectory() string {
	return l.dir
}

// PushDirectory records the current directory and changes to path.
func (l *Local) PushDirectory(path string) error {
	l.stack = append(l.stack, l.dir)
	return l.ChangeDirectory(path)
}

// PopDirectory returns to the most recently pushed directory.
func (l *Local) PopDirectory() error {
	if len(l.stack) == 0 {
		return ErrUnbalancedStack
	}
	prev := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]
	return l.ChangeDirectory(prev)
}

// StackDepth returns the number of pushed directories.
func (l *Local) StackDepth() int {
	return len(l.stack)
}

// MakeDirectory creates path and its parents.
// An existing path yields StatusExists and a diagnostic in the output.
func (l *Local) MakeDirectory(path string, perm os.FileMode) (int, error) {
	target := l.resolve(path)
	l.output = ""

	if _, err := os.Stat(target); err == nil {
		l.output = fmt.Sprintf("mkdir: directory »%s« can not be created: file already exists", target)
		return StatusExists, nil
	}

	if err := os.MkdirAll(target, perm); err != nil {
		l.output = fmt.Sprintf("mkdir: directory »%s« can not be created", target)
		return StatusFailed, fmt.Errorf("create directory %s: %w", target, err)
	}
	return StatusOK, nil
}

// RemoveDirectory removes path and its content with rm -rf.
func (l *Local) RemoveDirectory(ctx context.Context, path string) (int, error) {
	inv, err := l.Exec(ctx, "rm", "-rf", l.resolve(path))
	return inv.ExitCode, err
}

// RemoveFile removes a single file with rm.
func (l *Local) RemoveFile(ctx context.Context, path string) (int, error) {
	inv, err := l.Exec(ctx, "rm", l.resolve(path))
	return inv.ExitCode, err
}

// List returns the ls -al listing of the current directory.
func (l *Local) List(ctx context.Context) (string, error) {
	inv, err := l.Exec(ctx, "ls", "-al", l.dir)
	if err != nil {
		return inv.Output, err
	}
	return inv.Output, inv.Err()
}

// Exec runs name with args in the current directory and waits for it.
func (l *Local) Exec(ctx context.Context, name string, args ...string) (Invocation, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = l.dir
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	inv := Invocation{
		Command:   FormatCommand(name, args...),
		Directory: l.dir,
	}

	runErr := cmd.Run()
	inv.Output = strings.TrimSpace(out.String())

	var err error
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case ctx.Err() != nil:
		inv.ExitCode = -1
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && l.timeout > 0 {
			err = fmt.Errorf("%s timed out after %v: %w", inv.Command, l.timeout, ctx.Err())
		} else {
			err = ctx.Err()
		}
	case errors.As(runErr, &exitErr):
		inv.ExitCode = exitErr.ExitCode()
	default:
		inv.ExitCode = StatusNotRunnable
		err = fmt.Errorf("run %s: %w", name, runErr)
		if inv.Output == "" {
			inv.Output = runErr.Error()
		}
	}

	l.output = inv.Output
	l.last = inv
	return inv, err
}

// Output returns the output captured by the most recent call.
func (l *Local) Output() string {
	return l.output
}

// Last returns the most recent invocation.
func (l *Local) Last() Invocation {
	return l.last
}
