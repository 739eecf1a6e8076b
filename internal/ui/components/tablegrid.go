package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a single column for TableGrid. Width excludes separators.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

const gridLeftOffset = 2

var (
	gridLineStyle = lipgloss.NewStyle().Foreground(colorBorder)

	gridActiveRowStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(lipgloss.Color("#1f2530")).
				Bold(true)
)

// TableGrid renders rows under a header and rule, padded to tableWidth.
// activeRow highlights one data row; pass -1 for none.
func TableGrid(columns []TableColumn, rows [][]string, tableWidth, activeRow int) string {
	if tableWidth <= 0 || len(columns) == 0 {
		return ""
	}
	border := lipgloss.RoundedBorder()
	cols := fitColumns(columns, tableWidth)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	out := []string{
		gridRow(cols, headers, border.Left, tableWidth, boxLabelStyle),
		gridRule(cols, border.Middle, border.Top, tableWidth),
	}
	for i, row := range rows {
		style := lipgloss.NewStyle()
		if i == activeRow {
			style = gridActiveRowStyle
		}
		out = append(out, gridRow(cols, row, border.Left, tableWidth, style))
	}
	return strings.Join(out, "\n")
}

// fitColumns stretches or shrinks the last column so the row fills tableWidth.
func fitColumns(columns []TableColumn, tableWidth int) []TableColumn {
	fitted := append([]TableColumn{}, columns...)
	used := len(fitted) - 1
	for i := range fitted {
		fitted[i].Width = max(fitted[i].Width, 1)
		used += fitted[i].Width
	}
	avail := max(tableWidth-gridLeftOffset, len(fitted))
	last := len(fitted) - 1
	fitted[last].Width = max(fitted[last].Width+avail-used, 1)
	return fitted
}

func gridRow(cols []TableColumn, cells []string, sep string, tableWidth int, style lipgloss.Style) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gridLeftOffset))
	for i, col := range cols {
		if i > 0 {
			b.WriteString(gridLineStyle.Inline(true).Render(sep))
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		b.WriteString(style.Inline(true).Render(gridCell(text, col.Width, col.Align)))
	}
	return padRight(b.String(), tableWidth)
}

func gridRule(cols []TableColumn, cross, horiz string, tableWidth int) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = strings.Repeat(horiz, col.Width)
	}
	line := strings.Repeat(" ", gridLeftOffset) + strings.Join(parts, cross)
	return gridLineStyle.Inline(true).Render(padRight(line, tableWidth))
}

func gridCell(text string, width int, align lipgloss.Position) string {
	clamped := ClampTextWidth(text, width)
	pad := width - lipgloss.Width(clamped)
	if pad <= 0 {
		return truncateRunes(clamped, width)
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + clamped
	case lipgloss.Center:
		return strings.Repeat(" ", pad/2) + clamped + strings.Repeat(" ", pad-pad/2)
	default:
		return clamped + strings.Repeat(" ", pad)
	}
}
