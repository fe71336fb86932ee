package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMove(t *testing.T) {
	in := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"b", "c", "a", "d"}, Move(in, 0, 2))
	assert.Equal(t, []string{"d", "a", "b", "c"}, Move(in, 3, 0))
	assert.Equal(t, in, Move(in, 1, 9))
	assert.Equal(t, []string{"a", "b", "c", "d"}, in, "input must not change")
}

func TestDropZoneRoundTrip(t *testing.T) {
	assert.Equal(t, "droppable-none", DropZoneID(""))
	assert.Equal(t, "droppable-s1", DropZoneID("s1"))

	id, ok := ParseDropZone("droppable-none")
	assert.True(t, ok)
	assert.Equal(t, "", id)

	id, ok = ParseDropZone("droppable-s1")
	assert.True(t, ok)
	assert.Equal(t, "s1", id)

	_, ok = ParseDropZone("task-1")
	assert.False(t, ok)
}

func TestScroller_DragMapsDoubleTravel(t *testing.T) {
	var s Scroller
	assert.True(t, s.Press([]Element{{Tag: "div", Classes: []string{"board"}}}, 300, 100, 50))

	left, ok := s.Drag(260, 100)
	assert.True(t, ok)
	assert.Equal(t, 130, left)

	s.Release()
	_, ok = s.Drag(200, 100)
	assert.False(t, ok)
}

func TestScroller_RefusesInteractiveTargets(t *testing.T) {
	cases := map[string][]Element{
		"task card": {{Tag: "span"}, {Tag: "div", Classes: []string{"task-card"}}},
		"section":   {{Tag: "div", Classes: []string{"section-card-content"}}},
		"button":    {{Tag: "BUTTON"}},
		"combobox":  {{Tag: "div", Role: "combobox"}},
		"option":    {{Tag: "li", Role: "option"}},
		"radix":     {{Tag: "div", Attrs: map[string]string{"data-radix-select-content": ""}}},
	}
	for name, path := range cases {
		var s Scroller
		assert.False(t, s.Press(path, 10, 0, 0), name)
		assert.False(t, s.Dragging(), name)
	}
}
