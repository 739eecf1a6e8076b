package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const hintSeparator = "  "

var (
	hintLabelStyle = lipgloss.NewStyle().Foreground(colorMuted)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#16161d")).
			Background(lipgloss.Color("#9ba0bf")).
			Bold(true).
			Padding(0, 1)

	statusLineStyle = lipgloss.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorBorder)
)

// Hint renders one "Label key" pair for the status bar.
func Hint(key, label string) string {
	return hintLabelStyle.Render(label+" ") + hintKeyStyle.Render(key)
}

// StatusBar lays hints out under a rule. With a positive width, hints that
// overflow a row start a new centered row.
func StatusBar(hints []string, width int) string {
	if len(hints) == 0 {
		return ""
	}
	if width <= 0 {
		return statusLineStyle.Render(strings.Join(hints, hintSeparator))
	}
	rows := packHints(hints, width)
	for i, row := range rows {
		rows[i] = lipgloss.PlaceHorizontal(width, lipgloss.Center, row)
	}
	return statusLineStyle.Width(width).Render(strings.Join(rows, "\n"))
}

// packHints fills rows greedily. A hint wider than width gets its own row.
func packHints(hints []string, width int) []string {
	var (
		rows []string
		row  strings.Builder
	)
	for _, h := range hints {
		used := lipgloss.Width(row.String())
		if used > 0 && used+len(hintSeparator)+lipgloss.Width(h) > width {
			rows = append(rows, row.String())
			row.Reset()
			used = 0
		}
		if used > 0 {
			row.WriteString(hintSeparator)
		}
		row.WriteString(h)
	}
	if row.Len() > 0 {
		rows = append(rows, row.String())
	}
	return rows
}
