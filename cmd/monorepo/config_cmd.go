package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/config"
	"github.com/raphi011/monorepo/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage configuration",
		Aliases:     []string{"cfg"},
		GroupID:     GroupConfig,
		Annotations: map[string]string{noGitAnnotation: "true"},
		Long: `Manage monorepo configuration.

Global config: ~/.config/monorepo/config.toml ($MONOREPO_CONFIG overrides)
Local config:  .monorepo.toml (at the monorepo root)`,
		Example: `  monorepo config init          # Create default global config
  monorepo config init --local  # Create local monorepo config
  monorepo config show          # Show effective config
  monorepo config hooks         # List available hooks`,
	}

	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigHooksCmd(a))

	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  monorepo config init           # Create global config
  monorepo config init --local   # Create .monorepo.toml here
  monorepo config init -f        # Overwrite existing config
  monorepo config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			content := config.DefaultConfig()
			if local {
				content = config.DefaultLocalConfig()
			}
			if stdout {
				out.Print(content)
				return nil
			}

			if !local {
				path, err := config.Init(force)
				if err != nil {
					return err
				}
				out.Success("Created config file: %s", path)
				return nil
			}

			path := filepath.Join(a.workDir, config.LocalConfigFileName)
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("local config already exists: %s (use -f to overwrite)", path)
				}
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return err
			}
			out.Success("Created local config: %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create .monorepo.toml in the current directory instead of global config")

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			timeout := "none"
			if a.cfg.CommandTimeout > 0 {
				timeout = a.cfg.CommandTimeout.String()
			}
			rows := [][]string{
				{"registry", a.registryPath()},
				{"squash", fmt.Sprint(a.cfg.Squash)},
				{"git_binary", a.cfg.GitBinary},
				{"command_timeout", timeout},
				{"log_format", a.logFormat},
				{"hooks", fmt.Sprint(len(a.cfg.Hooks.Hooks))},
			}
			out.Print(output.RenderTable([]string{"KEY", "VALUE"}, rows))
			return nil
		},
	}
}

func newConfigHooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hooks",
		Short: "List configured hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if len(a.cfg.Hooks.Hooks) == 0 {
				out.Muted("No hooks configured")
				return nil
			}

			var rows [][]string
			for _, name := range slices.Sorted(maps.Keys(a.cfg.Hooks.Hooks)) {
				hook := a.cfg.Hooks.Hooks[name]
				on := strings.Join(hook.On, ",")
				if on == "" {
					on = "-"
				}
				rows = append(rows, []string{name, on, hook.Description, hook.Command})
			}
			out.Print(output.RenderTable([]string{"NAME", "ON", "DESCRIPTION", "COMMAND"}, rows))
			return nil
		},
	}
}
