package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/hooks"
	"github.com/raphi011/monorepo/internal/monorepo"
	"github.com/raphi011/monorepo/internal/output"
)

func newPullCmd(a *app) *cobra.Command {
	var (
		squash squashFlags
		hf     hookFlags
	)

	cmd := &cobra.Command{
		Use:     "pull <name> [ref]",
		Short:   "Merge upstream changes of a registered package",
		GroupID: GroupCore,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Merge new commits of a registered package's repository into its directory.

ref defaults to the current branch of the monorepo. The registry is not
changed.`,
		Example: `  monorepo pull utils
  monorepo pull utils v2 --squash`,
		ValidArgsFunction: a.completePackages,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			planned, err := hf.plan(a.cfg.Hooks, hooks.TriggerPull)
			if err != nil {
				return err
			}

			eng, term, err := a.engine()
			if err != nil {
				return err
			}

			opts := monorepo.PullOptions{Name: args[0], Squash: squash.value(a.cfg.Squash)}
			if len(args) > 1 {
				opts.Ref = args[1]
			}

			res, err := eng.Pull(ctx, opts)
			if err != nil {
				return err
			}

			out.Success("Pulled project %s into directory %s", res.Name, res.Directory)
			planned.run(ctx, term, res, a.workDir)
			return nil
		},
	}

	squash.register(cmd)
	hf.register(cmd, a)

	return cmd
}
