package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the title and column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		// Terminal states
		"done":     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"encoded":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"attached": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"uploaded": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Active states
		"running": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Skipped / warning
		"skipped": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Error
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"aborted": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		// Pending
		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
