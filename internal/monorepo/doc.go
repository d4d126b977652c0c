// Package monorepo implements the workflows that move subprojects into and
// out of a monorepo with git subtree.
//
// An [Engine] combines a [git.Repo] rooted at the monorepo with the path of
// its package registry. Every workflow follows the same order: load the
// registry, run the git steps, then record the outcome and save. The
// registry is written only after all git steps succeeded, so an entry
// always describes repository state that already exists.
//
// A registry write that fails after a successful merge is reported as
// [*registry.WriteError] together with the result. The merge is not undone.
//
// # Workflows
//
//   - [Engine.Init]: make the directory a repository with a first commit
//   - [Engine.Add]: import a repository under a directory (subtree add + pull)
//   - [Engine.Pull]: merge upstream changes of a registered package
//   - [Engine.Split]: extract a directory's history and push it to a repository
package monorepo
