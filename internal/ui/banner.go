package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
┬  ┌─┐┌┐ ┌─┐┬─┐┌─┐┌┬┐┌─┐
│  ├─┤├┴┐├─┘├┬┘│ │ │ │ │
┴─┘┴ ┴└─┘┴  ┴└─└─┘ ┴ └─┘`

const bannerSubtitle = "Laboratory Protocol Authoring • Command-Line Interface"

// RenderBanner returns the library screen banner.
func RenderBanner() string {
	lines := splitLines(bannerArt)
	width := lipgloss.Width(bannerSubtitle)

	var b strings.Builder
	art := BannerStyle.Width(width).Align(lipgloss.Center)
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(art.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Width(width).Align(lipgloss.Center).Render(bannerSubtitle))
	return b.String()
}

// RenderBrand is the one-line header used while editing.
func RenderBrand() string {
	return BannerStyle.Render("labproto") + MutedStyle.Render(" · protocol editor")
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
