package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListNewList(t *testing.T) {
	list := NewList(10)
	assert.Equal(t, 10, list.PageSize)
	assert.Equal(t, 0, list.Cursor)
	assert.Nil(t, list.Items)
	assert.Nil(t, list.Visible())
}

func TestListDownScrollsPage(t *testing.T) {
	list := NewList(3)
	list.SetItems([]string{"a", "b", "c", "d", "e"})

	list.Down()
	list.Down()
	assert.Equal(t, 2, list.Cursor)
	assert.Equal(t, 0, list.Offset)

	list.Down()
	assert.Equal(t, 3, list.Cursor)
	assert.Equal(t, 1, list.Offset)

	list.Down()
	list.Down()
	assert.Equal(t, 4, list.Cursor)
	assert.Equal(t, 2, list.Offset)
	assert.Equal(t, []string{"c", "d", "e"}, list.Visible())
}

func TestListUpScrollsBack(t *testing.T) {
	list := NewList(3)
	list.SetItems([]string{"a", "b", "c", "d", "e"})
	list.Select(4)

	list.Up()
	list.Up()
	assert.Equal(t, 2, list.Cursor)
	assert.Equal(t, 2, list.Offset)

	list.Up()
	assert.Equal(t, 1, list.Cursor)
	assert.Equal(t, 1, list.Offset)

	list.Up()
	list.Up()
	assert.Equal(t, 0, list.Cursor)
	assert.Equal(t, 0, list.Offset)
}

func TestListSelectClamps(t *testing.T) {
	list := NewList(2)
	list.SetItems([]string{"a", "b", "c"})

	list.Select(99)
	assert.Equal(t, 2, list.Cursor)
	assert.Equal(t, 1, list.Offset)

	list.Select(-5)
	assert.Equal(t, 0, list.Cursor)
	assert.Equal(t, 0, list.Offset)
}

func TestListSetItemsKeepsCursorInRange(t *testing.T) {
	list := NewList(5)
	list.SetItems([]string{"a", "b", "c", "d"})
	list.Select(3)

	list.SetItems([]string{"a", "b"})
	assert.Equal(t, 1, list.Cursor)

	list.SetItems(nil)
	assert.Equal(t, 0, list.Cursor)
	assert.Equal(t, 0, list.Offset)
}

func TestListRelToAbs(t *testing.T) {
	list := NewList(3)
	list.SetItems([]string{"a", "b", "c", "d", "e"})
	list.Select(4)

	assert.Equal(t, 2, list.RelToAbs(0))
	assert.True(t, list.IsSelected(list.RelToAbs(2)))
}
