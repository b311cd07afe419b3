package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#06B6D4") // Cyan
	successColor   = lipgloss.Color("#10B981") // Green
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB")
	dividerColor   = lipgloss.Color("#374151")

	titleStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(textColor).
			Bold(true).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Bold(true)

	selectedChatStyle = lipgloss.NewStyle().
				Foreground(secondaryColor).
				Bold(true)

	chatStyle = lipgloss.NewStyle().
			Foreground(textColor)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	botLabelStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	dividerStyle = lipgloss.NewStyle().
			Foreground(dividerColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	infoToastStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(successColor).
			Padding(0, 1)

	errorToastStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(errorColor).
			Padding(0, 1)
)
