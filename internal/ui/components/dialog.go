package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var dialogStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBorder).
	Padding(1, 2).
	Width(44)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	header := boxHeaderStyle.Render(SanitizeOneLine(title))
	body := boxMutedStyle.Render(SanitizeText(message))
	hint := boxMutedStyle.Render("\ny: confirm | n: cancel")
	return dialogStyle.Render(header + "\n\n" + body + hint)
}

// MenuDialog renders a pick-one menu with the cursor row highlighted.
func MenuDialog(title string, options []string, cursor int) string {
	lines := make([]string, 0, len(options))
	for i, opt := range options {
		if i == cursor {
			lines = append(lines, boxHeaderStyle.Render("> "+SanitizeOneLine(opt)))
			continue
		}
		lines = append(lines, boxValueStyle.Render("  "+SanitizeOneLine(opt)))
	}
	header := boxHeaderStyle.Render(SanitizeOneLine(title))
	hint := boxMutedStyle.Render("\nenter: add | esc: cancel")
	return dialogStyle.Render(header + "\n\n" + strings.Join(lines, "\n") + "\n" + hint)
}
