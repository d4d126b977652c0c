package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/monorepo/internal/terminal"
)

// DefaultBinary is the git executable used unless overridden.
const DefaultBinary = "git"

// DirectoryCreationError reports that a repository directory could not be created.
type DirectoryCreationError struct {
	Dir string
	Err error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("directory %q was not created: %v", e.Dir, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error {
	return e.Err
}

// Repo runs git commands against one repository directory.
type Repo struct {
	term   terminal.Terminal
	dir    string
	binary string
}

// Option configures a Repo.
type Option func(*Repo)

// WithBinary selects the git executable.
func WithBinary(path string) Option {
	return func(r *Repo) {
		if path != "" {
			r.binary = path
		}
	}
}

// New binds a Repo to dir, creating the directory (and parents) when absent.
// A relative dir is resolved against the terminal's current directory.
func New(term terminal.Terminal, dir string, opts ...Option) (*Repo, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(term.PresentDirectory(), dir)
	}
	dir = filepath.Clean(dir)

	// only missing directories go through the terminal, keeping the
	// command log free of "already exists" diagnostics
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		code, err := term.MakeDirectory(dir, 0o755)
		if code != terminal.StatusOK && code != terminal.StatusExists {
			if err == nil {
				err = fmt.Errorf("mkdir exited with status %d", code)
			}
			return nil, &DirectoryCreationError{Dir: dir, Err: err}
		}
	}

	r := &Repo{term: term, dir: dir, binary: DefaultBinary}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Dir returns the absolute repository directory.
func (r *Repo) Dir() string {
	return r.dir
}

// At returns a Repo for another directory that shares this repo's
// terminal and git binary. A relative dir is resolved against the
// terminal's current directory.
func (r *Repo) At(dir string) (*Repo, error) {
	return New(r.term, dir, WithBinary(r.binary))
}

// Terminal returns the terminal commands are routed through.
func (r *Repo) Terminal() terminal.Terminal {
	return r.term
}

// run executes git in the repository directory and restores the
// terminal's directory afterwards, on every return path.
func (r *Repo) run(ctx context.Context, args ...string) (inv terminal.Invocation, err error) {
	if err := r.term.PushDirectory(r.dir); err != nil {
		return inv, err
	}
	defer func() {
		if popErr := r.term.PopDirectory(); popErr != nil && err == nil {
			err = popErr
		}
	}()

	inv, err = r.term.Exec(ctx, r.binary, args...)
	if err != nil {
		return inv, err
	}
	return inv, inv.Err()
}

// output runs git and returns its trimmed output.
func (r *Repo) output(ctx context.Context, args ...string) (string, error) {
	inv, err := r.run(ctx, args...)
	return inv.Output, err
}

// probe runs a git command whose exit status answers a yes/no question.
// Only a failure to run at all is reported as an error.
func (r *Repo) probe(ctx context.Context, args ...string) (bool, error) {
	_, err := r.run(ctx, args...)
	if err == nil {
		return true, nil
	}
	var cmdErr *terminal.CommandError
	if errors.As(err, &cmdErr) {
		return false, nil
	}
	return false, err
}

// Init runs git init, creating a bare repository when bare is set.
func (r *Repo) Init(ctx context.Context, bare bool) error {
	args := []string{"init"}
	if bare {
		args = append(args, "--bare")
	}
	_, err := r.run(ctx, args...)
	return err
}

// IsRepository reports whether the directory is inside a git repository.
func (r *Repo) IsRepository(ctx context.Context) (bool, error) {
	return r.probe(ctx, "rev-parse", "--git-dir")
}

// IsRepositoryRoot reports whether the directory itself is the root of a
// working tree or a bare repository, as opposed to a directory nested in one.
func (r *Repo) IsRepositoryRoot(ctx context.Context) (bool, error) {
	inv, err := r.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		var cmdErr *terminal.CommandError
		if errors.As(err, &cmdErr) {
			return false, nil
		}
		return false, err
	}
	// git prints the git dir relative to the working directory when it is
	// the directory itself or its .git child
	return inv.Output == "." || inv.Output == ".git", nil
}

// HasCommits reports whether HEAD points to a commit.
func (r *Repo) HasCommits(ctx context.Context) (bool, error) {
	return r.probe(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
}

// CurrentBranch returns the symbolic name of the checked-out branch.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return branch, nil
}

// StageAll adds files matching pattern to the index.
func (r *Repo) StageAll(ctx context.Context, pattern string) error {
	_, err := r.run(ctx, "add", pattern)
	return err
}

// Commit records the index with message.
func (r *Repo) Commit(ctx context.Context, message string, allowEmpty bool) error {
	args := []string{"commit", "-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	_, err := r.run(ctx, args...)
	return err
}

// DeleteBranch force-deletes a local branch.
func (r *Repo) DeleteBranch(ctx context.Context, name string) error {
	_, err := r.run(ctx, "branch", "-D", name)
	return err
}

// Log returns git log output built from the given switches.
// See LogArgs for the recognised keys.
func (r *Repo) Log(ctx context.Context, opts map[string]bool) (string, error) {
	args, err := LogArgs(opts)
	if err != nil {
		return "", err
	}
	return r.output(ctx, args...)
}

// logSwitches lists the recognised log options in the order they are emitted.
var logSwitches = []string{
	"oneline",
	"graph",
	"decorate",
	"stat",
	"reverse",
	"all",
	"merges",
	"no-merges",
	"first-parent",
}

// UnknownLogOptionError reports log option keys that have no switch.
type UnknownLogOptionError struct {
	Keys []string
}

func (e *UnknownLogOptionError) Error() string {
	return fmt.Sprintf("unknown log option(s): %s", strings.Join(e.Keys, ", "))
}

// LogArgs builds the git log argument list. Each key set to true adds
// --key; false keys are omitted. Unknown keys are rejected.
func LogArgs(opts map[string]bool) ([]string, error) {
	known := make(map[string]bool, len(logSwitches))
	for _, s := range logSwitches {
		known[s] = true
	}
	var unknown []string
	for k := range opts {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, &UnknownLogOptionError{Keys: unknown}
	}

	args := []string{"log"}
	for _, s := range logSwitches {
		if opts[s] {
			args = append(args, "--"+s)
		}
	}
	return args, nil
}
