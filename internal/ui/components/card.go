package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CardState selects how a block card is drawn.
type CardState int

const (
	CardNormal CardState = iota
	CardFocused
	// CardGhost is the source card of an active drag.
	CardGhost
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(colorLabel).
			Bold(true)

	cardGhostStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3a3f52")).
			Faint(true)
)

// Card renders one block as a compact bordered card.
func Card(title, body string, width int, state CardState) string {
	w := safeBoxWidth(width)
	style := cardStyle.Width(w)
	header := cardTitleStyle
	border := colorBorder

	switch state {
	case CardFocused:
		border = colorAccent
		style = style.BorderForeground(border)
		header = boxHeaderStyle
	case CardGhost:
		border = lipgloss.Color("#1f2530")
		style = style.BorderForeground(border)
		header = cardGhostStyle
		body = cardGhostStyle.Render(SanitizeText(body))
	}

	if strings.TrimSpace(body) == "" {
		body = boxMutedStyle.Render("(empty)")
	}
	return titled(title, style.Render(body), header, border)
}
