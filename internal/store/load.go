package store

import (
	"fmt"
	"time"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/persist"
)

// load reads every persisted collection. Missing keys keep their defaults;
// an unreadable key is an error since continuing would overwrite it.
func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.p == nil {
		return nil
	}

	var tasks []model.Task
	if ok, err := s.p.Load(persist.KeyTasks, &tasks); err != nil {
		return fmt.Errorf("load tasks: %w", err)
	} else if ok && tasks != nil {
		s.tasks = model.NormalizeTasks(tasks)
	}

	var categories []model.Category
	if ok, err := s.p.Load(persist.KeyCategories, &categories); err != nil {
		return fmt.Errorf("load categories: %w", err)
	} else if ok && categories != nil {
		s.categories = categories
	}

	var projects []model.ProjectRecord
	if ok, err := s.p.Load(persist.KeyProjects, &projects); err != nil {
		return fmt.Errorf("load projects: %w", err)
	} else if ok && len(projects) > 0 {
		s.projects = ensureDefaultProject(model.MigrateProjects(projects))
	}

	var entries activity.Log
	if ok, err := s.p.Load(persist.KeyActivityLog, &entries); err != nil {
		return fmt.Errorf("load activity log: %w", err)
	} else if ok && entries != nil {
		s.log = entries.Trim(s.maxLog)
	}

	var rewards model.EarnedRewards
	if ok, err := s.p.Load(persist.KeyEarnedRewards, &rewards); err != nil {
		return fmt.Errorf("load rewards: %w", err)
	} else if ok {
		s.rewards = rewards
	}

	var dark bool
	if ok, err := s.p.Load(persist.KeyDarkMode, &dark); err != nil {
		return fmt.Errorf("load dark mode: %w", err)
	} else if ok {
		s.prefs.DarkMode = dark
	}

	var view string
	if ok, err := s.p.Load(persist.KeyTaskViewMode, &view); err != nil {
		return fmt.Errorf("load view mode: %w", err)
	} else if ok && (view == ViewList || view == ViewGrid) {
		s.prefs.TaskViewMode = view
	}

	var selected string
	if ok, err := s.p.Load(persist.KeySelectedProjectID, &selected); err != nil {
		return fmt.Errorf("load selected project: %w", err)
	} else if ok {
		s.prefs.SelectedProjectID = selected
	}
	s.prefs.SelectedProjectID = s.validSelection(s.prefs.SelectedProjectID)

	var last time.Time
	if ok, err := s.p.Load(persist.KeyLastSyncTime, &last); err != nil {
		return fmt.Errorf("load last sync time: %w", err)
	} else if ok {
		s.lastSync = last
	}
	return nil
}

// ensureDefaultProject puts the undeletable root project back in front if
// stored data lost it.
func ensureDefaultProject(ps []model.Project) []model.Project {
	if _, _, ok := model.FindProject(ps, model.DefaultProjectID); ok {
		return ps
	}
	return append([]model.Project{model.DefaultProject()}, ps...)
}

// validSelection falls back to the first project when id no longer exists.
func (s *Store) validSelection(id string) string {
	if _, _, ok := model.FindProject(s.projects, id); ok {
		return id
	}
	if len(s.projects) > 0 {
		return s.projects[0].ID
	}
	return model.DefaultProjectID
}
