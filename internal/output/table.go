package output

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/monorepo/internal/registry"
)

// PackageHeaders are the columns of the package table.
var PackageHeaders = []string{"NAME", "DIRECTORY", "REPOSITORY"}

// RenderTable creates a formatted table with proper column alignment.
// No borders are rendered. Returns "" when there are no rows.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// PackageRows returns one row per registered package, ordered by name.
func PackageRows(reg *registry.Registry) [][]string {
	names := reg.Names()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		pkg, _ := reg.Get(name)
		rows = append(rows, []string{name, pkg.Directory, pkg.Repository})
	}
	return rows
}
