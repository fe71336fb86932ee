package store

import (
	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/notify"
)

// Undo replays the inverse of log entry logID and removes the entry.
// It reports false, without side effects, for a missing entry or one that
// carries no undo payload.
func (s *Store) Undo(logID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.log.Find(logID)
	if !found || e.Undo == nil {
		return false
	}

	var title string
	switch u := e.Undo.(type) {
	case activity.TaskComplete:
		s.uncompleteLocked(u.TaskID)
		title = "Task moved back to active"

	case activity.TaskDelete:
		s.restoreTasks([]model.Task{u.Task})
		title = "Task restored"

	case activity.TaskCreate:
		if _, _, ok := model.FindTask(s.tasks, u.TaskID); ok {
			s.commitTasks(removeTasks(s.tasks, func(t model.Task) bool { return t.ID == u.TaskID }))
		}
		title = "Task creation undone"

	case activity.CategoryDelete:
		if _, _, ok := model.FindCategory(s.categories, u.Category.ID); !ok {
			s.commitCategories(append(append([]model.Category{}, s.categories...), u.Category))
		}
		title = "Category restored"

	case activity.ProjectDelete:
		if _, _, ok := model.FindProject(s.projects, u.Project.ID); !ok {
			s.commitProjects(append(model.CloneProjects(s.projects), u.Project.Clone()))
		}
		s.restoreTasks(u.Tasks)
		title = "Project restored"

	case activity.SectionDelete:
		if p, idx, ok := model.FindProject(s.projects, u.ProjectID); ok {
			if _, exists := p.Section(u.Section.ID); !exists {
				next := model.CloneProjects(s.projects)
				next[idx].Sections = append(next[idx].Sections, u.Section)
				s.commitProjects(next)
			}
		}
		s.restoreTasks(u.Tasks)
		title = "Section restored"

	case activity.ThemeChange:
		prefs := s.prefs
		prefs.DarkMode = u.PreviousDark
		s.commitPrefs(prefs)
		title = "Theme changed back"

	case activity.RewardChange:
		switch {
		case u.Previous != nil:
			s.commitRewards(*u.Previous)
		case u.RewardType != "" && u.PreviousValue != nil:
			s.commitRewards(s.rewards.With(u.RewardType, *u.PreviousValue))
		}
		title = "Rewards restored"

	default:
		return false
	}

	s.commitLog(s.log.Remove(logID))
	notify.Success(s.notifier, title, e.Description)
	return true
}

// restoreTasks appends snapshots whose ids are not already present.
func (s *Store) restoreTasks(ts []model.Task) {
	if len(ts) == 0 {
		return
	}
	next := model.CloneTasks(s.tasks)
	added := false
	for _, t := range ts {
		if _, _, exists := model.FindTask(next, t.ID); exists {
			continue
		}
		next = append(next, t.Clone())
		added = true
	}
	if added {
		s.commitTasks(next)
	}
}
