package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/output"
)

func newInitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Prepare the current directory as a monorepo",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Prepare the current directory as a monorepo.

Initializes a git repository with an empty initial commit when there is
none yet and writes an empty registry file. Running it again is safe.`,
		Example: `  monorepo init                  # Use monorepo.yml
  monorepo init -c packages.yml  # Use a different registry file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			eng, _, err := a.engine()
			if err != nil {
				return err
			}
			res, err := eng.Init(ctx)
			if err != nil {
				return err
			}

			out.Success("Initialized monorepo in %s", a.workDir)
			if res.Registered {
				out.Println("Created registry " + eng.RegistryPath())
			}
			return nil
		},
	}

	return cmd
}
