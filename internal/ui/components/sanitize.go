package components

import (
	"regexp"
	"strings"
	"unicode"
)

// Terminal escapes: CSI sequences and OSC strings ended by BEL or ST.
var escapeSeq = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

// isBidiControl reports directional marks, embeddings, overrides and isolates.
func isBidiControl(r rune) bool {
	return r == '‎' || r == '‏' ||
		(r >= '‪' && r <= '‮') ||
		(r >= '⁦' && r <= '⁩')
}

func keepRune(r rune) rune {
	switch {
	case r == '\n', r == '\t':
		return r
	case isBidiControl(r), unicode.IsControl(r):
		return -1
	}
	return r
}

// SanitizeText makes server-provided text safe to print: escape sequences
// and control runes are dropped, newlines and tabs survive.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	return strings.Map(keepRune, escapeSeq.ReplaceAllString(s, ""))
}

// SanitizeOneLine is SanitizeText folded onto a single trimmed line.
func SanitizeOneLine(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(SanitizeText(s)), " "))
}
