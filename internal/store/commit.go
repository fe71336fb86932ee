package store

import (
	"taskreward/internal/activity"
	"taskreward/internal/logx"
	"taskreward/internal/model"
	"taskreward/internal/persist"
)

// Commits replace one collection, write it under its key and mark the store
// as changed. Persistence failures are logged; the in-memory state stands.

func (s *Store) commitTasks(next []model.Task) {
	s.tasks = next
	s.saveLocked(persist.KeyTasks, next)
	s.touch()
}

func (s *Store) commitCategories(next []model.Category) {
	s.categories = next
	s.saveLocked(persist.KeyCategories, next)
	s.touch()
}

func (s *Store) commitProjects(next []model.Project) {
	s.projects = next
	s.saveLocked(persist.KeyProjects, next)
	s.touch()
}

func (s *Store) commitRewards(next model.EarnedRewards) {
	s.rewards = next
	s.saveLocked(persist.KeyEarnedRewards, next)
	s.touch()
}

func (s *Store) commitLog(next activity.Log) {
	s.log = next
	s.saveLocked(persist.KeyActivityLog, next)
	s.touch()
}

// commitPrefs does not mark the store dirty; preferences are not synced.
func (s *Store) commitPrefs(next Prefs) {
	prev := s.prefs
	s.prefs = next
	if prev.DarkMode != next.DarkMode {
		s.saveLocked(persist.KeyDarkMode, next.DarkMode)
	}
	if prev.TaskViewMode != next.TaskViewMode {
		s.saveLocked(persist.KeyTaskViewMode, next.TaskViewMode)
	}
	if prev.SelectedProjectID != next.SelectedProjectID {
		s.saveLocked(persist.KeySelectedProjectID, next.SelectedProjectID)
	}
	s.version++
}

func (s *Store) touch() {
	s.version++
	s.dirty = true
}

func (s *Store) saveLocked(key string, v any) {
	if s.p == nil {
		return
	}
	if err := s.p.Save(key, v); err != nil {
		logx.Error(s.logger, "persist_failed", err, logx.Fields{"key": key})
	}
}
