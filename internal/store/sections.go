package store

import (
	"strings"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/notify"
)

// CreateSection appends a section ordered after every existing one.
// An empty projectID means the selected project.
func (s *Store) CreateSection(projectID, name string) (model.Section, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Section{}, false, s.reject(invalid("section name is required"))
	}
	if projectID == "" {
		projectID = s.prefs.SelectedProjectID
	}
	p, idx, found := model.FindProject(s.projects, projectID)
	if !found {
		return model.Section{}, false, nil
	}

	sec := model.Section{
		ID:        model.NewID("sec"),
		Name:      name,
		ProjectID: p.ID,
		Order:     p.NextSectionOrder(),
	}
	next := model.CloneProjects(s.projects)
	next[idx].Sections = append(next[idx].Sections, sec)
	s.commitProjects(next)
	notify.Success(s.notifier, "Section created", sec.Name)
	s.appendLog("Section created", "Created section: "+sec.Name, nil)
	return sec, true, nil
}

func (s *Store) RenameSection(sectionID, name string) (model.Section, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	sec, p, found := model.FindSection(s.projects, sectionID)
	if !found {
		return model.Section{}, false, nil
	}
	if name == "" {
		return model.Section{}, true, s.reject(invalid("section name is required"))
	}
	sec.Name = name
	s.commitProjects(replaceSection(s.projects, p.ID, sec))
	notify.Success(s.notifier, "Section renamed", sec.Name)
	s.appendLog("Section renamed", "Renamed section to: "+sec.Name, nil)
	return sec, true, nil
}

// DeleteSection removes the section and its tasks. The log entry carries
// both so undo restores everything. An empty projectID means the project the
// section lives in.
func (s *Store) DeleteSection(projectID, sectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec, p, found := model.FindSection(s.projects, sectionID)
	if !found || (projectID != "" && p.ID != projectID) {
		return false
	}

	inSection := func(t model.Task) bool { return t.SectionID == sectionID }
	cascaded := selectTasks(s.tasks, inSection)

	next := model.CloneProjects(s.projects)
	for i := range next {
		if next[i].ID != p.ID {
			continue
		}
		kept := make([]model.Section, 0, len(next[i].Sections))
		for _, x := range next[i].Sections {
			if x.ID != sectionID {
				kept = append(kept, x)
			}
		}
		next[i].Sections = kept
	}
	s.commitProjects(next)
	s.commitTasks(removeTasks(s.tasks, inSection))

	notify.Success(s.notifier, "Section deleted", sec.Name)
	s.appendLog("Section deleted", "Deleted section: "+sec.Name, activity.SectionDelete{
		ProjectID: p.ID,
		Section:   sec,
		Tasks:     cascaded,
	})
	return true
}

// MoveSection re-homes a section and all of its tasks in another project.
func (s *Store) MoveSection(sectionID, targetProjectID string) (model.Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec, from, found := model.FindSection(s.projects, sectionID)
	if !found || from.ID == targetProjectID {
		return model.Section{}, false
	}
	to, _, found := model.FindProject(s.projects, targetProjectID)
	if !found {
		return model.Section{}, false
	}

	sec.ProjectID = to.ID
	sec.Order = to.NextSectionOrder()

	next := model.CloneProjects(s.projects)
	for i := range next {
		switch next[i].ID {
		case from.ID:
			kept := make([]model.Section, 0, len(next[i].Sections))
			for _, x := range next[i].Sections {
				if x.ID != sectionID {
					kept = append(kept, x)
				}
			}
			next[i].Sections = kept
		case to.ID:
			next[i].Sections = append(next[i].Sections, sec)
		}
	}
	s.commitProjects(next)

	tasks := model.CloneTasks(s.tasks)
	for i := range tasks {
		if tasks[i].SectionID == sectionID {
			tasks[i].ProjectID = to.ID
		}
	}
	s.commitTasks(tasks)

	notify.Success(s.notifier, "Section moved", sec.Name+" → "+to.Name)
	s.appendLog("Section moved", "Moved section "+sec.Name+" to project "+to.Name, nil)
	return sec, true
}

func replaceSection(ps []model.Project, projectID string, sec model.Section) []model.Project {
	next := model.CloneProjects(ps)
	for i := range next {
		if next[i].ID != projectID {
			continue
		}
		for j := range next[i].Sections {
			if next[i].Sections[j].ID == sec.ID {
				next[i].Sections[j] = sec
			}
		}
	}
	return next
}
