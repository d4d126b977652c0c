package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/config"
	"github.com/raphi011/monorepo/internal/hooks"
	"github.com/raphi011/monorepo/internal/monorepo"
	"github.com/raphi011/monorepo/internal/terminal"
)

// squashFlags resolves --squash/--no-squash against the configured default.
type squashFlags struct {
	squash   bool
	noSquash bool
}

func (f *squashFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.squash, "squash", false, "Merge upstream history as a single commit")
	cmd.Flags().BoolVar(&f.noSquash, "no-squash", false, "Keep the full upstream history (overrides config)")
	cmd.MarkFlagsMutuallyExclusive("squash", "no-squash")
}

func (f *squashFlags) value(def bool) bool {
	switch {
	case f.squash:
		return true
	case f.noSquash:
		return false
	}
	return def
}

// hookFlags selects the hooks run after a successful workflow.
type hookFlags struct {
	name   string
	noHook bool
	args   []string
}

func (f *hookFlags) register(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVar(&f.name, "hook", "", "Run only the named hook")
	cmd.Flags().BoolVar(&f.noHook, "no-hook", false, "Skip hooks")
	cmd.Flags().StringSliceVarP(&f.args, "arg", "a", nil, "Set hook variable KEY=VALUE (KEY=- reads stdin)")
	cmd.MarkFlagsMutuallyExclusive("hook", "no-hook")
	cmd.RegisterFlagCompletionFunc("hook", a.completeHooks)
}

// plannedHooks are resolved before the workflow runs so a typo in --hook
// fails before anything is changed.
type plannedHooks struct {
	matches []hooks.HookMatch
	env     map[string]string
	trigger hooks.Trigger
}

func (f *hookFlags) plan(cfg config.HooksConfig, trigger hooks.Trigger) (*plannedHooks, error) {
	matches, err := hooks.SelectHooks(cfg, f.name, f.noHook, trigger)
	if err != nil {
		return nil, err
	}
	env, err := hooks.ParseEnv(f.args)
	if err != nil {
		return nil, err
	}
	return &plannedHooks{matches: matches, env: env, trigger: trigger}, nil
}

// run executes the planned hooks for res. Failures are only warnings since
// the workflow itself already succeeded.
func (p *plannedHooks) run(ctx context.Context, term terminal.Terminal, res *monorepo.Result, monorepoDir string) {
	if len(p.matches) == 0 {
		return
	}
	hooks.RunAllNonFatal(ctx, term, p.matches, p.context(res, monorepoDir))
}

// context describes res to the hooks. A nil res leaves the package
// fields empty.
func (p *plannedHooks) context(res *monorepo.Result, monorepoDir string) hooks.Context {
	hctx := hooks.Context{
		Monorepo: monorepoDir,
		Trigger:  p.trigger,
		Env:      p.env,
	}
	if res != nil {
		hctx.Name = res.Name
		hctx.Repository = res.Repository
		hctx.Dir = res.Directory
	}
	return hctx
}
