package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeOneLineDropsEscapesAndFoldsWhitespace(t *testing.T) {
	in := "\x1b]8;;https://lab.invalid\x07Plate\x1b]8;;\x07\ncount\t\x1b[31mred\x1b[0m"
	assert.Equal(t, "Plate count red", SanitizeOneLine(in))
}

func TestSanitizeTextKeepsLayoutWhitespace(t *testing.T) {
	assert.Equal(t, "step 1\n\tmix", SanitizeText("step 1\n\tmix\x00"))
}

func TestSanitizeTextRemovesBidiControls(t *testing.T) {
	for _, r := range []rune{'‎', '‪', '‮', '⁦', '⁩'} {
		assert.Equal(t, "ab", SanitizeText("a"+string(r)+"b"), "%U", r)
	}
	assert.Equal(t, "", SanitizeText(""))
}
