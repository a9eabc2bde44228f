package ci

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorDim   = lipgloss.Color("#6b7280")

	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	failureStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	progressStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	spinner   = "[..]"
)
