package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/output"
	"github.com/raphi011/monorepo/internal/registry"
)

// PackageDisplay is the JSON form of a registered package.
type PackageDisplay struct {
	Name       string `json:"name"`
	Directory  string `json:"directory"`
	Repository string `json:"repository"`
}

func newListCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List registered packages",
		Aliases:     []string{"ls"},
		GroupID:     GroupCore,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noGitAnnotation: "true"},
		Example: `  monorepo list          # Table of packages
  monorepo list --json   # Output as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			reg, err := registry.Load(a.registryPath())
			if err != nil {
				return err
			}

			if jsonOutput {
				packages := make([]PackageDisplay, 0, len(reg.Packages))
				for _, row := range output.PackageRows(reg) {
					packages = append(packages, PackageDisplay{Name: row[0], Directory: row[1], Repository: row[2]})
				}
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(packages)
			}

			if len(reg.Packages) == 0 {
				out.Muted("No packages registered")
				return nil
			}
			out.Print(output.RenderTable(output.PackageHeaders, output.PackageRows(reg)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// registryPath resolves the registry flag against the monorepo root.
func (a *app) registryPath() string {
	if filepath.IsAbs(a.registry) {
		return a.registry
	}
	return filepath.Join(a.workDir, a.registry)
}
