package git_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphi011/monorepo/internal/git"
	"github.com/raphi011/monorepo/internal/git/gittest"
	"github.com/raphi011/monorepo/internal/log"
	"github.com/raphi011/monorepo/internal/terminal"
)

func newRepo(t *testing.T, dir string) (*git.Repo, *terminal.Local) {
	t.Helper()
	term := gittest.Terminal(t, dir)
	repo, err := git.New(term, dir)
	require.NoError(t, err)
	return repo, term
}

func TestNew_CreatesDirectory(t *testing.T) {
	t.Parallel()
	base := gittest.TempDir(t)
	term := gittest.Terminal(t, base)

	repo, err := git.New(term, "a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "a", "b"), repo.Dir())
	assert.DirExists(t, repo.Dir())

	_, err = git.New(term, "a/b")
	assert.NoError(t, err, "existing directory must be accepted")
}

// recordingSink keeps the messages logged by a terminal.
type recordingSink struct {
	msgs []string
}

func (s *recordingSink) Info(msg string, _ ...log.Field) {
	s.msgs = append(s.msgs, msg)
}

func TestNew_ExistingDirectoryLogsNothing(t *testing.T) {
	t.Parallel()
	base := gittest.TempDir(t)
	sink := &recordingSink{}
	term := terminal.NewLogging(gittest.Terminal(t, base), sink)

	repo, err := git.New(term, base)
	require.NoError(t, err)
	assert.Equal(t, base, repo.Dir())
	for _, m := range sink.msgs {
		assert.NotContains(t, m, "mkdir")
		assert.NotContains(t, m, "already exists")
	}

	_, err = git.New(term, "fresh")
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(base, "fresh"))
	assert.Contains(t, strings.Join(sink.msgs, "\n"), "mkdir", "missing directories are still created through the terminal")
}

func TestNew_DirectoryCreationError(t *testing.T) {
	t.Parallel()
	base := gittest.TempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "file"), []byte("x"), 0o644))

	_, err := git.New(gittest.Terminal(t, base), "file/sub")
	var dirErr *git.DirectoryCreationError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, filepath.Join(base, "file", "sub"), dirErr.Dir)
}

func TestInit(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	ctx := context.Background()

	t.Run("working tree", func(t *testing.T) {
		t.Parallel()
		repo, term := newRepo(t, gittest.TempDir(t))
		require.NoError(t, repo.Init(ctx, false))
		assert.DirExists(t, filepath.Join(repo.Dir(), ".git"))
		assert.Zero(t, term.StackDepth())

		ok, err := repo.IsRepository(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("bare", func(t *testing.T) {
		t.Parallel()
		repo, _ := newRepo(t, gittest.TempDir(t))
		require.NoError(t, repo.Init(ctx, true))
		assert.FileExists(t, filepath.Join(repo.Dir(), "HEAD"))
		assert.NoDirExists(t, filepath.Join(repo.Dir(), ".git"))
	})
}

func TestIsRepository_NotARepository(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	repo, term := newRepo(t, gittest.TempDir(t))

	ok, err := repo.IsRepository(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, term.StackDepth(), "stack must be balanced after a failed command")
}

func TestCommitAndLog(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	ctx := context.Background()
	repo, term := newRepo(t, gittest.TempDir(t))
	require.NoError(t, repo.Init(ctx, false))

	has, err := repo.HasCommits(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "README.md"), []byte("# hi\n"), 0o644))
	require.NoError(t, repo.StageAll(ctx, "."))
	require.NoError(t, repo.Commit(ctx, "Add README", false))
	require.NoError(t, repo.Commit(ctx, "Empty", true))

	has, err = repo.HasCommits(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	out, err := repo.Log(ctx, map[string]bool{"oneline": true, "reverse": true})
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " Add README"), "first line %q", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], " Empty"), "second line %q", lines[1])

	branch, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
	assert.Zero(t, term.StackDepth())
}

func TestCommit_NothingToCommit(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	ctx := context.Background()
	repo, term := newRepo(t, gittest.TempDir(t))
	require.NoError(t, repo.Init(ctx, false))

	err := repo.Commit(ctx, "nothing", false)
	var cmdErr *terminal.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.NotZero(t, cmdErr.ExitCode)
	assert.Equal(t, repo.Dir(), cmdErr.Directory)
	assert.Contains(t, cmdErr.Command, "git commit")
	assert.Zero(t, term.StackDepth())
}

func TestLogArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts map[string]bool
		want []string
	}{
		{"none", nil, []string{"log"}},
		{"single", map[string]bool{"oneline": true}, []string{"log", "--oneline"}},
		{"false omitted", map[string]bool{"oneline": true, "graph": false}, []string{"log", "--oneline"}},
		{
			"fixed order",
			map[string]bool{"first-parent": true, "stat": true, "oneline": true, "no-merges": true},
			[]string{"log", "--oneline", "--stat", "--no-merges", "--first-parent"},
		},
		{
			"all",
			map[string]bool{
				"oneline": true, "graph": true, "decorate": true, "stat": true, "reverse": true,
				"all": true, "merges": true, "no-merges": true, "first-parent": true,
			},
			[]string{
				"log", "--oneline", "--graph", "--decorate", "--stat", "--reverse",
				"--all", "--merges", "--no-merges", "--first-parent",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := git.LogArgs(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLog_UnknownOption(t *testing.T) {
	t.Parallel()
	_, err := git.LogArgs(map[string]bool{"oneline": true, "pretty": true, "author": false})
	var optErr *git.UnknownLogOptionError
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, []string{"author", "pretty"}, optErr.Keys)

	// rejected before any command runs
	repo, term := newRepo(t, gittest.TempDir(t))
	_, err = repo.Log(context.Background(), map[string]bool{"pretty": true})
	require.ErrorAs(t, err, &optErr)
	assert.Empty(t, term.Last().Command)
}

func TestRemotes(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	ctx := context.Background()
	repo, _ := newRepo(t, gittest.TempDir(t))
	require.NoError(t, repo.Init(ctx, false))

	out, err := repo.Remotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	url := "https://example.com/p.git"
	require.NoError(t, repo.AddRemote(ctx, "origin", url, false))

	out, err = repo.Remotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "origin\t"+url+" (fetch)\norigin\t"+url+" (push)", out)

	got, ok, err := repo.RemoteURL(ctx, "origin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, url, got)

	_, ok, err = repo.RemoteURL(ctx, "upstream")
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.AddRemote(ctx, "origin", url, false)
	var cmdErr *terminal.CommandError
	assert.ErrorAs(t, err, &cmdErr, "duplicate remote must fail")

	require.NoError(t, repo.RemoveRemote(ctx, "origin"))
	_, ok, err = repo.RemoteURL(ctx, "origin")
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.RemoveRemote(ctx, "origin")
	assert.ErrorAs(t, err, &cmdErr, "removing an unknown remote must fail")
}

func TestPush_CreatesRemoteBranch(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	ctx := context.Background()
	base := gittest.TempDir(t)
	remoteDir := filepath.Join(base, "remote.git")
	gittest.InitBare(t, remoteDir)

	repo, term := newRepo(t, filepath.Join(base, "work"))
	require.NoError(t, repo.Init(ctx, false))
	require.NoError(t, repo.Commit(ctx, "Initial", true))
	require.NoError(t, repo.AddRemote(ctx, "origin", remoteDir, false))

	_, err := repo.Push(ctx, "origin")
	require.NoError(t, err)

	_, err = repo.PushRef(ctx, "origin", "master", "release")
	require.NoError(t, err)
	assert.Zero(t, term.StackDepth())

	remote, err := gogit.PlainOpen(remoteDir)
	require.NoError(t, err)
	for _, name := range []string{"master", "release"} {
		ref, err := remote.Reference(plumbing.NewBranchReferenceName(name), true)
		require.NoError(t, err, "branch %s", name)
		commit, err := remote.CommitObject(ref.Hash())
		require.NoError(t, err)
		assert.Equal(t, "Initial\n", commit.Message)
	}
}

func TestDeleteBranch(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	ctx := context.Background()
	dir := gittest.TempDir(t)
	gittest.InitRepo(t, dir, gittest.File{Path: "a.txt", Content: "a"})
	gittest.Run(t, dir, "branch", "topic")

	repo, _ := newRepo(t, dir)
	require.NoError(t, repo.DeleteBranch(ctx, "topic"))

	r, err := gogit.PlainOpen(dir)
	require.NoError(t, err)
	_, err = r.Reference(plumbing.NewBranchReferenceName("topic"), false)
	assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
}

func TestSubtree(t *testing.T) {
	t.Parallel()
	gittest.RequireSubtree(t)
	ctx := context.Background()
	base := gittest.TempDir(t)

	upstream := filepath.Join(base, "upstream")
	gittest.InitRepo(t, upstream,
		gittest.File{Path: "README.md", Content: "# p\n"},
		gittest.File{Path: "src/main.go", Content: "package main\n"},
	)

	repo, term := newRepo(t, filepath.Join(base, "mono"))
	require.NoError(t, repo.Init(ctx, false))
	require.NoError(t, repo.Commit(ctx, "Initial", true))
	require.NoError(t, repo.AddRemote(ctx, "p", upstream, true))

	require.NoError(t, repo.SubtreeAdd(ctx, "libs/p", "p", "master", false))
	assert.FileExists(t, filepath.Join(repo.Dir(), "libs", "p", "README.md"))

	gittest.Commit(t, upstream, gittest.File{Path: "CHANGELOG.md", Content: "v2\n"})
	require.NoError(t, repo.SubtreePull(ctx, "libs/p", "p", "master", false))
	assert.FileExists(t, filepath.Join(repo.Dir(), "libs", "p", "CHANGELOG.md"))

	sha, err := repo.SubtreeSplit(ctx, "libs/p", "split/p")
	require.NoError(t, err)
	assert.Len(t, sha, 40)
	assert.Zero(t, term.StackDepth())

	r, err := gogit.PlainOpen(repo.Dir())
	require.NoError(t, err)
	ref, err := r.Reference(plumbing.NewBranchReferenceName("split/p"), true)
	require.NoError(t, err)
	assert.Equal(t, sha, ref.Hash().String())

	commit, err := r.CommitObject(ref.Hash())
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File("README.md")
	assert.NoError(t, err, "split tree must have the subproject at its root")
}

func TestSubtreeAdd_Failure(t *testing.T) {
	t.Parallel()
	gittest.RequireSubtree(t)
	ctx := context.Background()
	repo, term := newRepo(t, gittest.TempDir(t))
	require.NoError(t, repo.Init(ctx, false))
	require.NoError(t, repo.Commit(ctx, "Initial", true))

	err := repo.SubtreeAdd(ctx, "libs/x", "missing", "master", false)
	var cmdErr *terminal.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Command, "subtree add --prefix libs/x missing master")
	assert.Zero(t, term.StackDepth())
}

func TestIsRepositoryRoot(t *testing.T) {
	t.Parallel()
	gittest.RequireGit(t)
	ctx := context.Background()
	base := gittest.TempDir(t)

	work, _ := newRepo(t, filepath.Join(base, "work"))
	require.NoError(t, work.Init(ctx, false))
	bare, _ := newRepo(t, filepath.Join(base, "bare.git"))
	require.NoError(t, bare.Init(ctx, true))
	// relative to the terminal, which is rooted at the working tree
	nested, err := work.At("lib/p")
	require.NoError(t, err)
	plain, _ := newRepo(t, filepath.Join(base, "plain"))

	tests := []struct {
		name string
		repo *git.Repo
		want bool
	}{
		{"working tree", work, true},
		{"bare", bare, true},
		{"nested in working tree", nested, false},
		{"not a repository", plain, false},
	}
	for _, tt := range tests {
		got, err := tt.repo.IsRepositoryRoot(ctx)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	inside, err := nested.IsRepository(ctx)
	require.NoError(t, err)
	assert.True(t, inside, "nested directory is still inside a repository")
}
