package main

import (
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/log"
	"github.com/raphi011/monorepo/internal/registry"
)

// completePackages completes the first positional argument with the names
// of registered packages.
func (a *app) completePackages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if a.cfg == nil {
		// completion bypasses PersistentPreRunE
		a.loadConfig(cmd, log.New(io.Discard, false, true))
	}
	reg, err := registry.Load(a.registryPath())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return reg.Names(), cobra.ShellCompDirectiveNoFileComp
}

// completeHooks completes hook names from the effective configuration.
func (a *app) completeHooks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if a.cfg == nil {
		a.loadConfig(cmd, log.New(io.Discard, false, true))
	}
	return slices.Sorted(maps.Keys(a.cfg.Hooks.Hooks)), cobra.ShellCompDirectiveNoFileComp
}
