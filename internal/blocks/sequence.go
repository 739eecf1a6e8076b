// Package blocks holds protocol block definitions and the ordered-sequence
// operations the editor applies to them. Every operation returns a new slice
// and leaves its input untouched.
package blocks

import "fmt"

// Append adds b to the end of the sequence.
func Append(items []Definition, b Definition) []Definition {
	out := make([]Definition, 0, len(items)+1)
	out = append(out, items...)
	return append(out, b)
}

// UpdateByID replaces the element whose ID matches updated.ID. An unknown ID
// returns the input unchanged.
func UpdateByID(items []Definition, updated Definition) []Definition {
	idx := IndexOf(items, updated.ID)
	if idx < 0 {
		return items
	}
	out := append([]Definition{}, items...)
	out[idx] = updated
	return out
}

// Move removes the element at from and reinserts it at to. The destination
// index is measured against the sequence after removal.
func Move(items []Definition, from, to int) ([]Definition, error) {
	n := len(items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return items, fmt.Errorf("move %d -> %d in %d blocks: %w", from, to, n, ErrIndexOutOfRange)
	}
	moved := items[from]
	rest := make([]Definition, 0, n)
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	out := make([]Definition, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out, nil
}

// Remove drops the element with the given ID. Unknown IDs are a no-op.
func Remove(items []Definition, id string) []Definition {
	idx := IndexOf(items, id)
	if idx < 0 {
		return items
	}
	out := make([]Definition, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}

// IndexOf returns the position of id, or -1.
func IndexOf(items []Definition, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
