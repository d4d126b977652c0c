package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/hooks"
	"github.com/raphi011/monorepo/internal/monorepo"
	"github.com/raphi011/monorepo/internal/registry"
)

func newHookCmd(a *app) *cobra.Command {
	var (
		dryRun bool
		args   []string
	)

	cmd := &cobra.Command{
		Use:         "hook <hook> <package>",
		Short:       "Run a configured hook for a registered package",
		GroupID:     GroupConfig,
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{noGitAnnotation: "true"},
		Long: `Run a configured hook for a registered package, ignoring its "on" list.

Placeholders are filled from the registry entry. {trigger} expands to
"manual".`,
		Example: `  monorepo hook build utils
  monorepo hook notify utils --arg channel=#releases
  monorepo hook build utils --dry-run`,
		ValidArgsFunction: func(cmd *cobra.Command, cargs []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(cargs) == 0 {
				return a.completeHooks(cmd, cargs, toComplete)
			}
			return a.completePackages(cmd, cargs[1:], toComplete)
		},
		RunE: func(cmd *cobra.Command, cargs []string) error {
			ctx := cmd.Context()

			hf := hookFlags{name: cargs[0], args: args}
			planned, err := hf.plan(a.cfg.Hooks, hooks.TriggerManual)
			if err != nil {
				return err
			}

			reg, err := registry.Load(a.registryPath())
			if err != nil {
				return err
			}
			pkg, ok := reg.Get(cargs[1])
			if !ok {
				return &monorepo.UnknownPackageError{Name: cargs[1], Suggestions: reg.Suggest(cargs[1])}
			}

			term, err := a.terminal()
			if err != nil {
				return err
			}
			res := &monorepo.Result{Name: cargs[1], Repository: pkg.Repository, Directory: pkg.Directory}
			hctx := planned.context(res, a.workDir)
			hctx.DryRun = dryRun
			return hooks.RunAll(ctx, term, planned.matches, hctx)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the command instead of running it")
	cmd.Flags().StringSliceVarP(&args, "arg", "a", nil, "Set hook variable KEY=VALUE (KEY=- reads stdin)")

	return cmd
}
