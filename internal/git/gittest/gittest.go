// Package gittest provides helpers for tests that run the real git binary.
package gittest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raphi011/monorepo/internal/terminal"
)

// Env isolates git from the user's configuration and makes commits
// deterministic enough for tests.
func Env() []string {
	return []string{
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_CONFIG_GLOBAL=" + os.DevNull,
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
		"GIT_CONFIG_COUNT=2",
		"GIT_CONFIG_KEY_0=init.defaultBranch",
		"GIT_CONFIG_VALUE_0=master",
		"GIT_CONFIG_KEY_1=commit.gpgsign",
		"GIT_CONFIG_VALUE_1=false",
	}
}

// SetEnv applies Env to the test process, for code that spawns git
// through its own terminal. Tests using it cannot run in parallel.
func SetEnv(t *testing.T) {
	t.Helper()
	for _, kv := range Env() {
		k, v, _ := strings.Cut(kv, "=")
		t.Setenv(k, v)
	}
}

// TempDir creates a temp directory and resolves macOS symlinks.
func TempDir(t *testing.T) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return resolved
}

// RequireGit skips the test when git is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// RequireSubtree skips the test when the git-subtree extension is missing.
func RequireSubtree(t *testing.T) {
	t.Helper()
	RequireGit(t)
	out, _ := exec.Command("git", "subtree", "-h").CombinedOutput()
	if !strings.Contains(string(out), "git subtree") {
		t.Skip("git subtree not available")
	}
}

// Terminal returns a local terminal rooted at dir with the test git environment.
func Terminal(t *testing.T, dir string) *terminal.Local {
	t.Helper()
	term, err := terminal.NewLocal(dir, terminal.WithEnv(Env()...))
	require.NoError(t, err)
	return term
}

// Run executes git in dir and fails the test on error.
func Run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), Env()...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// InitRepo creates a repository at dir with one commit per file, in the
// order given.
func InitRepo(t *testing.T, dir string, files ...File) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	Run(t, dir, "init")
	for _, f := range files {
		Commit(t, dir, f)
	}
}

// File is a file written and committed by InitRepo and Commit.
type File struct {
	Path    string
	Content string
	Message string
}

// Commit writes f and commits it.
func Commit(t *testing.T, dir string, f File) {
	t.Helper()
	path := filepath.Join(dir, f.Path)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(f.Content), 0o644))
	msg := f.Message
	if msg == "" {
		msg = "Add " + f.Path
	}
	Run(t, dir, "add", f.Path)
	Run(t, dir, "commit", "-m", msg)
}

// InitBare creates a bare repository at dir.
func InitBare(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	Run(t, dir, "init", "--bare")
}
