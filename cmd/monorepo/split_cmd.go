package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/hooks"
	"github.com/raphi011/monorepo/internal/monorepo"
	"github.com/raphi011/monorepo/internal/output"
)

func newSplitCmd(a *app) *cobra.Command {
	var (
		dir    string
		branch string
		hf     hookFlags
	)

	cmd := &cobra.Command{
		Use:     "split <name> <repository>",
		Short:   "Push the history of a subdirectory to its own repository",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(2),
		Long: `Push the history of a package directory to a repository of its own.

The directory defaults to the registered directory of <name>, then to
<name>. Its history is split into a temporary branch, pushed to --branch
(default: the current branch) of <repository> and the temporary branch is
deleted again. A local <repository> path that holds no repository yet is
created as a bare repository.

The package is recorded in the registry when it was not registered for
<repository> before.`,
		Example: `  monorepo split utils ../utils.git
  monorepo split utils git@github.com:org/utils.git --dir lib/utils -b main`,
		ValidArgsFunction: a.completePackages,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			planned, err := hf.plan(a.cfg.Hooks, hooks.TriggerSplit)
			if err != nil {
				return err
			}

			eng, term, err := a.engine()
			if err != nil {
				return err
			}

			res, err := eng.Split(ctx, monorepo.SplitOptions{
				Name:       args[0],
				Repository: args[1],
				Directory:  dir,
				Branch:     branch,
			})
			if err != nil {
				return err
			}

			out.Success("Split directory %s to %s (branch %s, commit %s)", res.Directory, res.Repository, res.Ref, shortCommit(res.Commit))
			if res.Registered {
				out.Println("Registered project " + res.Name)
			}
			planned.run(ctx, term, res, a.workDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Package directory (default: registered directory, then name)")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Target branch (default: current branch)")
	hf.register(cmd, a)

	return cmd
}

func shortCommit(sha string) string {
	return sha[:min(7, len(sha))]
}
