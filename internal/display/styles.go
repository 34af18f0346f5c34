package display

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474")).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true).
			Width(3).
			Align(lipgloss.Right)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1e1e2a")).
			Padding(0, 1)

	// Land lines take the mana color of their basic type.
	landColors = map[string]lipgloss.Color{
		"Plains":   lipgloss.Color("#f8f4d8"),
		"Island":   lipgloss.Color("#60a0e0"),
		"Swamp":    lipgloss.Color("#b080d0"),
		"Mountain": lipgloss.Color("#e06060"),
		"Forest":   lipgloss.Color("#4ade80"),
	}
)
