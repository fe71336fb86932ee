package board

import (
	"slices"
	"strings"
	"sync"
)

// scrollSpeed multiplies pointer travel into scroll distance.
const scrollSpeed = 2

// Element describes one node on the path from the pressed element up to the
// scroll container.
type Element struct {
	Tag     string            `json:"tag"`
	Classes []string          `json:"classes,omitempty"`
	Role    string            `json:"role,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

var (
	interactiveClasses = []string{"task-card", "section-card-content"}
	interactiveTags    = []string{"input", "textarea", "button", "select"}
	interactiveRoles   = []string{"combobox", "option"}
	interactiveAttrs   = []string{"data-radix-select-trigger", "data-radix-select-content"}
)

// Interactive reports whether any element on the path owns its own pointer
// handling, in which case the board must not start a scroll drag.
func Interactive(path []Element) bool {
	for _, el := range path {
		if slices.Contains(interactiveTags, strings.ToLower(el.Tag)) {
			return true
		}
		if slices.Contains(interactiveRoles, el.Role) {
			return true
		}
		for _, c := range el.Classes {
			if slices.Contains(interactiveClasses, c) {
				return true
			}
		}
		for _, a := range interactiveAttrs {
			if _, ok := el.Attrs[a]; ok {
				return true
			}
		}
	}
	return false
}

// Scroller maps horizontal pointer travel on the board to a scroll offset.
type Scroller struct {
	mu         sync.Mutex
	dragging   bool
	startX     int
	scrollLeft int
}

// Press starts a scroll drag unless the target is interactive.
func (s *Scroller) Press(path []Element, pageX, offsetLeft, scrollLeft int) bool {
	if Interactive(path) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = true
	s.startX = pageX - offsetLeft
	s.scrollLeft = scrollLeft
	return true
}

// Drag returns the container's new scroll offset; ok is false when no drag is active.
func (s *Scroller) Drag(pageX, offsetLeft int) (scrollLeft int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dragging {
		return 0, false
	}
	x := pageX - offsetLeft
	walk := (x - s.startX) * scrollSpeed
	return s.scrollLeft - walk, true
}

func (s *Scroller) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = false
}

func (s *Scroller) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}
