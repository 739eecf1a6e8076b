package ui

import "github.com/charmbracelet/lipgloss"

// --- Theme Colors ---

var (
	ColorPrimary   = lipgloss.Color("#7f57b4") // purple
	ColorSecondary = lipgloss.Color("#436b77") // teal
	ColorAccent    = lipgloss.Color("#a7754e") // warm
	ColorText      = lipgloss.Color("#d7d9da") // main text
	ColorMuted     = lipgloss.Color("#9ba0bf") // muted text
	ColorSuccess   = lipgloss.Color("#3f866b") // green
	ColorError     = lipgloss.Color("#6d424b") // red
	ColorWarning   = lipgloss.Color("#c78854") // warning
)

// --- Reusable Styles ---

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	MetaKeyStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)
)
