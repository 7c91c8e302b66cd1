package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#15202b")).
			Background(lipgloss.Color("#4fb3bf")).
			Padding(0, 1)

	editHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4fb3bf")).
			Padding(0, 1)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#00838f", Dark: "#4fb3bf"}).
				Render

	completeMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#56FF4E")).
				Render

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5F5F")).
				Render

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#A49FA5"})

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4fb3bf")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#15202b", Dark: "#E0E0E0"})

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4fb3bf")).
			Padding(1, 2)
)
var docStyle = lipgloss.NewStyle().Margin(1, 2)
