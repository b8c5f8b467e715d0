package cmd

import "github.com/charmbracelet/lipgloss"

const (
	padding   = 4
	maxWidth  = 60
	aptxBlue  = "#1b4f91"
	aptxCyan  = "#5bc8e0"
	black     = "#191724"

	greenLight = "#56949f"
	greenDark  = "#9ccfd8"
)

var (
	accent = lipgloss.AdaptiveColor{Dark: greenDark, Light: greenLight}
	main   = lipgloss.AdaptiveColor{Dark: aptxCyan, Light: aptxBlue}

	listStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Margin(1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent)
	listTitleStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(main).
			Bold(true)
)
