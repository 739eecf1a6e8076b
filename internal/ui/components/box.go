package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorBorder = lipgloss.Color("#273540")
	colorAccent = lipgloss.Color("#7f57b4")
	colorMuted  = lipgloss.Color("#9ba0bf")
	colorText   = lipgloss.Color("#d7d9da")
	colorLabel  = lipgloss.Color("#436b77")
)

var (
	boxBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	boxBorderActive = boxBorder.BorderForeground(colorAccent)

	boxHeaderStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	boxMutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	boxValueStyle = lipgloss.NewStyle().Foreground(colorText)
	boxLabelStyle = lipgloss.NewStyle().Foreground(colorLabel).Bold(true)

	errorBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7a2f3a")).
			Padding(1, 2)

	errorHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e06c75")).
				Bold(true)

	errorBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6b5b5"))
)

// boxWidth uses ~70% of the terminal, clamped to [40, 80].
func boxWidth(width int) int {
	if width <= 0 {
		return 0
	}
	w := width * 70 / 100
	w = max(w, 40)
	return min(w, 80)
}

func safeBoxWidth(width int) int {
	w := boxWidth(width)
	if width > 0 && w > width {
		return width
	}
	return w
}

// BoxContentWidth returns the inner content width excluding border and padding.
func BoxContentWidth(width int) int {
	w := safeBoxWidth(width)
	if w <= 6 {
		return 0
	}
	return w - 6
}

// ClampTextWidth truncates text to the given visual width.
func ClampTextWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	cleaned := SanitizeOneLine(text)
	if lipgloss.Width(cleaned) <= width {
		return cleaned
	}
	return truncateRunes(cleaned, width)
}

// ErrorBox renders a red bordered box for errors.
func ErrorBox(title, message string, width int) string {
	header := ""
	if title != "" {
		header = errorHeaderStyle.Render(title) + "\n\n"
	}
	return errorBorder.Width(safeBoxWidth(width)).Render(header + errorBodyStyle.Render(SanitizeText(message)))
}

// TitledBox renders a box with the title set into its top border.
func TitledBox(title, content string, width int) string {
	return titled(title, boxBorder.Width(safeBoxWidth(width)).Render(content), boxHeaderStyle, colorBorder)
}

// ActiveTitledBox is TitledBox with the highlighted border.
func ActiveTitledBox(title, content string, width int) string {
	return titled(title, boxBorderActive.Width(safeBoxWidth(width)).Render(content), boxHeaderStyle, colorAccent)
}

// titled rewrites the top border line of an already rendered rounded box.
func titled(title, boxed string, headerStyle lipgloss.Style, borderColor lipgloss.Color) string {
	if title == "" {
		return boxed
	}
	lines := strings.Split(boxed, "\n")
	lineWidth := lipgloss.Width(lines[0])
	if lineWidth < 4 {
		return boxed
	}

	border := lipgloss.RoundedBorder()
	middle := lineWidth - 2
	label := fmt.Sprintf(" [ %s ] ", SanitizeOneLine(title))
	if lipgloss.Width(label) > middle {
		label = truncateRunes(label, middle)
	}
	left := max((middle-lipgloss.Width(label))/2, 0)
	right := max(middle-lipgloss.Width(label)-left, 0)

	edge := lipgloss.NewStyle().Foreground(borderColor)
	lines[0] = edge.Render(border.TopLeft+strings.Repeat(border.Top, left)) +
		headerStyle.Render(label) +
		edge.Render(strings.Repeat(border.Top, right)+border.TopRight)
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// InfoRow renders a label: value row for detail views.
func InfoRow(label, value string) string {
	return boxMutedStyle.Render(SanitizeOneLine(label)+": ") + boxValueStyle.Render(SanitizeOneLine(value))
}

// TableRow is a single row in a key-value table.
type TableRow struct {
	Label string
	Value string
}

// Table renders aligned key-value rows inside a titled box.
func Table(title string, rows []TableRow, width int) string {
	if len(rows) == 0 {
		return ""
	}
	labelWidth := 0
	for _, r := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(SanitizeOneLine(r.Label)))
	}
	labelWidth = min(labelWidth, 24)

	contentWidth := BoxContentWidth(width)
	if contentWidth <= 0 {
		contentWidth = labelWidth + 40
	}
	valueWidth := max(contentWidth-labelWidth-2, 4)

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		label := boxLabelStyle.Render(padRight(ClampTextWidth(r.Label, labelWidth), labelWidth))
		lines = append(lines, label+"  "+boxValueStyle.Render(ClampTextWidth(r.Value, valueWidth)))
	}
	return TitledBox(title, strings.Join(lines, "\n"), width)
}

// CenterLine centers a single line within the standard box width.
func CenterLine(s string, width int) string {
	w := safeBoxWidth(width)
	pad := (w - lipgloss.Width(s)) / 2
	if w <= 0 || pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
