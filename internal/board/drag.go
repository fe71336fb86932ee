// Package board implements drag-and-drop reordering of tasks and sections on
// a project board, plus the pointer-to-scroll mapping of the board container.
package board

import (
	"sync"

	"taskreward/internal/model"
)

// Board is the view of the entity store the engine reads and writes.
// Sections returns the current project's sections ordered by Order.
type Board interface {
	Tasks() []model.Task
	Sections() []model.Section
	ProjectID() string
	ReplaceTasks(tasks []model.Task)
	ReplaceSections(sections []model.Section)
}

// Outcome says what a drop committed.
type Outcome string

const (
	OutcomeNone           Outcome = "none"
	OutcomeTaskReorder    Outcome = "task_reorder"
	OutcomeSectionReorder Outcome = "section_reorder"
)

// State is the transient drag state, used for highlighting.
type State struct {
	ActiveTask    *model.Task    `json:"activeTask,omitempty"`
	ActiveSection *model.Section `json:"activeSection,omitempty"`
	OverSectionID string         `json:"overSectionId,omitempty"`
}

func (s State) Dragging() bool {
	return s.ActiveTask != nil || s.ActiveSection != nil
}

// Engine holds the single active-drag slot.
type Engine struct {
	mu    sync.Mutex
	state State
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() State {
	out := State{OverSectionID: e.state.OverSectionID}
	if e.state.ActiveTask != nil {
		t := e.state.ActiveTask.Clone()
		out.ActiveTask = &t
	}
	if e.state.ActiveSection != nil {
		s := *e.state.ActiveSection
		out.ActiveSection = &s
	}
	return out
}

// Start begins a drag of id. Tasks are looked up before sections; completed
// tasks cannot be dragged. Any earlier unfinished drag is dropped.
func (e *Engine) Start(b Board, id string) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = State{}
	if t, ok := activeTask(b.Tasks(), id); ok {
		e.state.ActiveTask = &t
		return e.snapshot()
	}
	for _, s := range b.Sections() {
		if s.ID == id {
			sec := s
			e.state.ActiveSection = &sec
			break
		}
	}
	return e.snapshot()
}

// Over re-parents a dragged task live and records the hovered section for a
// dragged section. It never changes order.
func (e *Engine) Over(b Board, activeID, overID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if overID == "" {
		e.state.OverSectionID = ""
		return e.snapshot()
	}

	tasks := b.Tasks()
	if dragged, ok := activeTask(tasks, activeID); ok {
		target, move := e.taskTarget(b, tasks, dragged, overID)
		if move {
			next := make([]model.Task, len(tasks))
			for i, t := range tasks {
				if t.ID == dragged.ID {
					t.SectionID = target
				}
				next[i] = t
			}
			b.ReplaceTasks(next)
			if e.state.ActiveTask != nil && e.state.ActiveTask.ID == dragged.ID {
				e.state.ActiveTask.SectionID = target
			}
		}
	}

	if e.state.ActiveSection != nil {
		target, ok := resolveSection(b.Sections(), tasks, overID)
		if ok && target != e.state.ActiveSection.ID {
			e.state.OverSectionID = target
		} else {
			e.state.OverSectionID = ""
		}
	}
	return e.snapshot()
}

// taskTarget decides which section the dragged task should live in while
// hovering overID. The section must belong to the board's project.
func (e *Engine) taskTarget(b Board, tasks []model.Task, dragged model.Task, overID string) (string, bool) {
	if over, _, ok := model.FindTask(tasks, overID); ok {
		if over.SectionID != dragged.SectionID && over.ProjectID == dragged.ProjectID {
			return over.SectionID, true
		}
		if over.SectionID != dragged.SectionID {
			return "", false
		}
	}
	sectionID, ok := ParseDropZone(overID)
	if !ok || sectionID == dragged.SectionID {
		return "", false
	}
	if sectionID != "" && !hasSection(b.Sections(), sectionID) {
		return "", false
	}
	return sectionID, true
}

// End commits the final order and always clears the drag state.
func (e *Engine) End(b Board, activeID, overID string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { e.state = State{} }()

	if overID == "" || activeID == overID {
		return OutcomeNone
	}

	if e.state.ActiveTask != nil {
		if reorderTasks(b, activeID, overID) {
			return OutcomeTaskReorder
		}
		return OutcomeNone
	}

	if e.state.ActiveSection != nil {
		if reorderSections(b, e.state.ActiveSection.ID, overID) {
			return OutcomeSectionReorder
		}
	}
	return OutcomeNone
}

// Cancel abandons the drag without committing anything.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = State{}
}

func reorderTasks(b Board, activeID, overID string) bool {
	tasks := b.Tasks()
	dragged, ok := activeTask(tasks, activeID)
	if !ok {
		return false
	}
	over, _, ok := model.FindTask(tasks, overID)
	if !ok || over.SectionID != dragged.SectionID {
		return false
	}

	projectID := b.ProjectID()
	inColumn := func(t model.Task) bool {
		return t.SectionID == dragged.SectionID && t.ProjectID == projectID && !t.Completed
	}

	var column []model.Task
	from, to := -1, -1
	for _, t := range tasks {
		if !inColumn(t) {
			continue
		}
		switch t.ID {
		case activeID:
			from = len(column)
		case overID:
			to = len(column)
		}
		column = append(column, t)
	}
	if from == -1 || to == -1 {
		return false
	}

	reordered := Move(column, from, to)
	next := make([]model.Task, len(tasks))
	k := 0
	for i, t := range tasks {
		if inColumn(t) {
			next[i] = reordered[k]
			k++
			continue
		}
		next[i] = t
	}
	b.ReplaceTasks(next)
	return true
}

func reorderSections(b Board, activeID, overID string) bool {
	sections := b.Sections()
	target, ok := resolveSection(sections, b.Tasks(), overID)
	if !ok || target == activeID {
		return false
	}

	from, to := -1, -1
	for i, s := range sections {
		switch s.ID {
		case activeID:
			from = i
		case target:
			to = i
		}
	}
	if from == -1 || to == -1 {
		return false
	}

	next := Move(sections, from, to)
	for i := range next {
		next[i].Order = i
	}
	b.ReplaceSections(next)
	return true
}

// resolveSection maps a hovered id to one of the board's sections: a drop zone
// yields its section, a task yields the section it sits in.
func resolveSection(sections []model.Section, tasks []model.Task, overID string) (string, bool) {
	target := overID
	if id, ok := ParseDropZone(overID); ok {
		target = id
	}
	if t, _, ok := model.FindTask(tasks, overID); ok && t.SectionID != "" {
		target = t.SectionID
	}
	if target == "" || !hasSection(sections, target) {
		return "", false
	}
	return target, true
}

func activeTask(tasks []model.Task, id string) (model.Task, bool) {
	t, _, ok := model.FindTask(tasks, id)
	if !ok || t.Completed {
		return model.Task{}, false
	}
	return t, true
}

func hasSection(sections []model.Section, id string) bool {
	for _, s := range sections {
		if s.ID == id {
			return true
		}
	}
	return false
}
