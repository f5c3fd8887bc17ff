package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("#10b981")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorCyan   = lipgloss.Color("#22d3ee")
	colorYellow = lipgloss.Color("#fbbf24")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	onlineDotStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	offlineDotStyle = lipgloss.NewStyle().Foreground(colorRed)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	placeholderStyle = lipgloss.NewStyle().Foreground(colorGray)

	recordingStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	busyStyle = lipgloss.NewStyle().Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	metadataStyle = lipgloss.NewStyle().Foreground(colorGray)

	candidateStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	selectedCandidateStyle = lipgloss.NewStyle().
				Foreground(colorCyan).
				Bold(true)

	footerStyle = lipgloss.NewStyle().Foreground(colorGray)
)
