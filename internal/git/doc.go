// Package git provides repository operations via the git CLI.
//
// A [Repo] is bound to one directory and runs every command through a
// [terminal.Terminal]: it pushes its directory, executes git, and pops back,
// so the terminal's directory stack is balanced whenever a method returns.
// The package performs no filesystem or network access of its own, which
// keeps it substitutable with a logging decorator or a test double.
//
// Shelling out to git rather than using a Go git library keeps
// compatibility with user configuration (SSH keys, credential helpers) and
// gives access to git-subtree, which has no library equivalent.
//
// # Repository Operations
//
//   - [Repo.Init], [Repo.IsRepository], [Repo.HasCommits]
//   - [Repo.StageAll], [Repo.Commit], [Repo.Log]
//   - [Repo.CurrentBranch], [Repo.DeleteBranch]
//
// # Remotes
//
//   - [Repo.AddRemote], [Repo.Remotes], [Repo.RemoteURL]
//   - [Repo.Push], [Repo.PushRef]
//
// # Subtrees
//
//   - [Repo.SubtreeAdd]: merge a remote's history under a prefix
//   - [Repo.SubtreePull]: merge new upstream commits into a prefix
//   - [Repo.SubtreeSplit]: extract a prefix's history into a branch
//
// # Failures
//
// A non-zero exit status is returned as a [*terminal.CommandError] carrying
// the command, directory and captured output. Command-specific error text is
// not interpreted and nothing is retried.
package git
