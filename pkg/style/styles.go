package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	Header  = lipgloss.NewStyle().Foreground(HeadingColor).Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)
	Success = lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	Error   = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	Code    = lipgloss.NewStyle().Foreground(PrimaryColor).Background(SurfaceColor)
	Path    = lipgloss.NewStyle().Foreground(SecondaryColor).Italic(true)
)

// Indicators
const (
	SuccessIndicator = "✓"
	ErrorIndicator   = "✗"
)

func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
