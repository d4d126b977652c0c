package output

import "charm.land/lipgloss/v2"

var (
	// SuccessStyle marks completed workflows (green)
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	// MutedStyle is used for hints such as an empty registry (gray)
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	// headerStyle is applied to table headers
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)

	// cellStyle is applied to table cells
	cellStyle = lipgloss.NewStyle().PaddingRight(2)
)
