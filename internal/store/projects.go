package store

import (
	"strings"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/notify"
)

type ProjectDraft struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type ProjectPatch struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

func (s *Store) CreateProject(d ProjectDraft) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(d.Name)
	if name == "" {
		return model.Project{}, s.reject(invalid("project name is required"))
	}
	p := model.Project{
		ID:       model.NewID("proj"),
		Name:     name,
		Icon:     orDefault(d.Icon, "Folder"),
		Color:    orDefault(d.Color, "bg-blue-500"),
		Sections: []model.Section{},
	}
	s.commitProjects(append(model.CloneProjects(s.projects), p))
	notify.Success(s.notifier, "Project created", p.Name)
	s.appendLog("Project created", "Created project: "+p.Name, nil)
	return p.Clone(), nil
}

func (s *Store) UpdateProject(id string, patch ProjectPatch) (model.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, idx, found := model.FindProject(s.projects, id)
	if !found {
		return model.Project{}, false, nil
	}
	p := cur.Clone()
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Project{}, true, s.reject(invalid("project name is required"))
		}
		p.Name = name
	}
	if patch.Icon != nil {
		p.Icon = *patch.Icon
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}

	next := model.CloneProjects(s.projects)
	next[idx] = p
	s.commitProjects(next)
	notify.Success(s.notifier, "Project updated", p.Name)
	s.appendLog("Project updated", "Updated project: "+p.Name, nil)
	return p.Clone(), true, nil
}

// DeleteProject removes the project and every task in it. The default
// project is refused with ErrProtected.
func (s *Store) DeleteProject(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == model.DefaultProjectID {
		return false, s.reject(errDefaultProject)
	}
	p, _, found := model.FindProject(s.projects, id)
	if !found {
		return false, nil
	}

	inProject := func(t model.Task) bool { return t.ProjectID == id }
	cascaded := selectTasks(s.tasks, inProject)

	next := make([]model.Project, 0, len(s.projects))
	for _, x := range s.projects {
		if x.ID != id {
			next = append(next, x.Clone())
		}
	}
	s.commitProjects(next)
	s.commitTasks(removeTasks(s.tasks, inProject))
	if s.prefs.SelectedProjectID == id {
		prefs := s.prefs
		prefs.SelectedProjectID = model.DefaultProjectID
		s.commitPrefs(prefs)
	}

	notify.Success(s.notifier, "Project deleted", p.Name)
	s.appendLog("Project deleted", "Deleted project: "+p.Name, activity.ProjectDelete{Project: p.Clone(), Tasks: cascaded})
	return true, nil
}

func (s *Store) SelectProject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, found := model.FindProject(s.projects, id); !found {
		return false
	}
	prefs := s.prefs
	prefs.SelectedProjectID = id
	s.commitPrefs(prefs)
	return true
}

func (s *Store) SetTaskViewMode(mode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode != ViewList && mode != ViewGrid {
		return s.reject(invalid("view mode must be list or grid"))
	}
	prefs := s.prefs
	prefs.TaskViewMode = mode
	s.commitPrefs(prefs)
	return nil
}
