package components

// List is a scrollable list of labels with a cursor.
type List struct {
	Items    []string
	Cursor   int
	Offset   int
	PageSize int
}

// NewList creates a list with the given page size.
func NewList(pageSize int) *List {
	return &List{PageSize: pageSize}
}

// SetItems replaces items, keeping the cursor in range.
func (l *List) SetItems(items []string) {
	l.Items = items
	l.Select(l.Cursor)
}

// Down moves the cursor down.
func (l *List) Down() {
	l.Select(l.Cursor + 1)
}

// Up moves the cursor up.
func (l *List) Up() {
	l.Select(l.Cursor - 1)
}

// Select moves the cursor to idx, clamped to the list, and scrolls it into view.
func (l *List) Select(idx int) {
	if len(l.Items) == 0 {
		l.Cursor, l.Offset = 0, 0
		return
	}
	l.Cursor = min(max(idx, 0), len(l.Items)-1)
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.PageSize > 0 && l.Cursor >= l.Offset+l.PageSize {
		l.Offset = l.Cursor - l.PageSize + 1
	}
}

// Visible returns the items currently on screen.
func (l *List) Visible() []string {
	if len(l.Items) == 0 {
		return nil
	}
	end := min(l.Offset+l.PageSize, len(l.Items))
	return l.Items[l.Offset:end]
}

// Selected returns the index of the selected item.
func (l *List) Selected() int {
	return l.Cursor
}

// IsSelected reports whether absIdx is the cursor.
func (l *List) IsSelected(absIdx int) bool {
	return absIdx == l.Cursor
}

// RelToAbs converts a visible index to an absolute one.
func (l *List) RelToAbs(relIdx int) int {
	return l.Offset + relIdx
}
