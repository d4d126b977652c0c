package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/hooks"
	"github.com/raphi011/monorepo/internal/log"
	"github.com/raphi011/monorepo/internal/monorepo"
	"github.com/raphi011/monorepo/internal/output"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		dir    string
		squash squashFlags
		hf     hookFlags
	)

	cmd := &cobra.Command{
		Use:     "add <name> <repository> [ref]",
		Short:   "Import a repository into a subdirectory",
		Aliases: []string{"a"},
		GroupID: GroupCore,
		Args:    cobra.RangeArgs(2, 3),
		Long: `Import a repository into a subdirectory of the monorepo.

The repository is added as remote <name> and merged with git subtree into
--dir (default: <name>). ref defaults to the current branch of the
monorepo. The package is recorded in the registry only after the merge
succeeded. An existing entry of the same name is replaced.

An empty directory is initialized as a git repository first.`,
		Example: `  monorepo add utils https://github.com/org/utils.git
  monorepo add utils ../utils main --dir lib/utils
  monorepo add utils ../utils --squash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			planned, err := hf.plan(a.cfg.Hooks, hooks.TriggerAdd)
			if err != nil {
				return err
			}

			eng, term, err := a.engine()
			if err != nil {
				return err
			}

			opts := monorepo.AddOptions{
				Name:       args[0],
				Repository: args[1],
				Directory:  dir,
				Squash:     squash.value(a.cfg.Squash),
			}
			if len(args) > 2 {
				opts.Ref = args[2]
			}

			res, err := eng.Add(ctx, opts)
			if err != nil {
				return err
			}
			if res.Replaced {
				l.Warnf("package %q was already registered, its entry was replaced", res.Name)
			}

			out.Success("Added project %s in directory %s", res.Name, res.Directory)
			planned.run(ctx, term, res, a.workDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Package directory relative to the monorepo root (default: name)")
	squash.register(cmd)
	hf.register(cmd, a)

	return cmd
}
