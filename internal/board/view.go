package board

import "taskreward/internal/model"

// Column is one droppable container of the board.
type Column struct {
	DropZone string         `json:"dropZone"`
	Section  *model.Section `json:"section,omitempty"`
	Tasks    []model.Task   `json:"tasks"`
}

// View is a project's board: the no-section column first, then sections by order.
type View struct {
	ProjectID string   `json:"projectId"`
	Columns   []Column `json:"columns"`
}

// BuildView groups the project's active tasks into columns, keeping task array order.
// Tasks whose section is not on the board land in the no-section column.
func BuildView(p model.Project, tasks []model.Task) View {
	sections := p.SortedSections()
	cols := make([]Column, 0, len(sections)+1)
	cols = append(cols, Column{DropZone: DropZoneID(""), Tasks: []model.Task{}})
	index := map[string]int{"": 0}
	for _, s := range sections {
		sec := s
		index[s.ID] = len(cols)
		cols = append(cols, Column{DropZone: DropZoneID(s.ID), Section: &sec, Tasks: []model.Task{}})
	}

	for _, t := range tasks {
		if t.ProjectID != p.ID || t.Completed {
			continue
		}
		i, ok := index[t.SectionID]
		if !ok {
			i = 0
		}
		cols[i].Tasks = append(cols[i].Tasks, t.Clone())
	}
	return View{ProjectID: p.ID, Columns: cols}
}
