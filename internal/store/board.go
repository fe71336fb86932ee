package store

import (
	"taskreward/internal/board"
	"taskreward/internal/model"
)

// projectBoard exposes one project to the drag engine. The store lock must be
// held for its whole lifetime.
type projectBoard struct {
	s         *Store
	projectID string
}

func (b projectBoard) Tasks() []model.Task {
	return model.CloneTasks(b.s.tasks)
}

func (b projectBoard) Sections() []model.Section {
	p, _, ok := model.FindProject(b.s.projects, b.projectID)
	if !ok {
		return nil
	}
	return p.SortedSections()
}

func (b projectBoard) ProjectID() string {
	return b.projectID
}

func (b projectBoard) ReplaceTasks(tasks []model.Task) {
	b.s.commitTasks(tasks)
}

func (b projectBoard) ReplaceSections(sections []model.Section) {
	next := model.CloneProjects(b.s.projects)
	for i := range next {
		if next[i].ID == b.projectID {
			next[i].Sections = append([]model.Section{}, sections...)
		}
	}
	b.s.commitProjects(next)
}

func (s *Store) selectedBoard() projectBoard {
	return projectBoard{s: s, projectID: s.prefs.SelectedProjectID}
}

// DragStart begins a drag on the selected project's board.
func (s *Store) DragStart(id string) board.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Start(s.selectedBoard(), id)
}

func (s *Store) DragOver(activeID, overID string) board.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Over(s.selectedBoard(), activeID, overID)
}

func (s *Store) DragEnd(activeID, overID string) board.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.End(s.selectedBoard(), activeID, overID)
}

func (s *Store) DragCancel() {
	s.drag.Cancel()
}

func (s *Store) DragState() board.State {
	return s.drag.State()
}

// BoardView groups a project's active tasks into columns. An empty id means
// the selected project.
func (s *Store) BoardView(projectID string) (board.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if projectID == "" {
		projectID = s.prefs.SelectedProjectID
	}
	p, _, ok := model.FindProject(s.projects, projectID)
	if !ok {
		return board.View{}, false
	}
	return board.BuildView(p, s.tasks), true
}
