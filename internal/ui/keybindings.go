package ui

import tea "github.com/charmbracelet/bubbletea"

// --- Key Helpers ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func isQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+c")
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "escape", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter", "return")
}

func isSave(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+s")
}

// isMoveUp and isMoveDown reorder the focused block.
func isMoveUp(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+up", "alt+up", "K")
}

func isMoveDown(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+down", "alt+down", "J")
}

func isNextField(msg tea.KeyMsg) bool {
	return isKey(msg, "tab")
}

func isPrevField(msg tea.KeyMsg) bool {
	return isKey(msg, "shift+tab")
}

// isTyping reports whether msg is a single printable rune.
func isTyping(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !msg.Alt
}
