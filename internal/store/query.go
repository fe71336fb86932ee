package store

import (
	"strings"
	"time"

	"taskreward/internal/activity"
	"taskreward/internal/model"
)

const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// TaskFilter narrows Tasks. Section nil means any section; a pointer to ""
// means tasks with no section.
type TaskFilter struct {
	ProjectID string
	Section   *string
	Status    string
	Query     string
}

func (f TaskFilter) match(t model.Task) bool {
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.Section != nil && !t.InSection(*f.Section) {
		return false
	}
	switch f.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" && !taskMatches(t, q) {
		return false
	}
	return true
}

func taskMatches(t model.Task, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(t.Title), lowerQuery) ||
		strings.Contains(strings.ToLower(t.Description), lowerQuery)
}

// Snapshot is a consistent copy of the whole store.
type Snapshot struct {
	Tasks       []model.Task        `json:"tasks"`
	Categories  []model.Category    `json:"categories"`
	Projects    []model.Project     `json:"projects"`
	ActivityLog activity.Log        `json:"activityLog"`
	Rewards     model.EarnedRewards `json:"earnedRewards"`
	Prefs       Prefs               `json:"prefs"`
	LastSync    *time.Time          `json:"lastSyncTime,omitempty"`
	Version     uint64              `json:"version"`
	Dirty       bool                `json:"hasUnsyncedChanges"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Tasks:       model.CloneTasks(s.tasks),
		Categories:  append([]model.Category{}, s.categories...),
		Projects:    model.CloneProjects(s.projects),
		ActivityLog: append(activity.Log{}, s.log...),
		Rewards:     s.rewards,
		Prefs:       s.prefs,
		Version:     s.version,
		Dirty:       s.dirty,
	}
	if !s.lastSync.IsZero() {
		at := s.lastSync
		snap.LastSync = &at
	}
	return snap
}

func (s *Store) Tasks(f TaskFilter) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return selectTasks(s.tasks, f.match)
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _, ok := model.FindTask(s.tasks, id)
	return t.Clone(), ok
}

// CompletedTasks lists completed tasks, most recently created first.
func (s *Store) CompletedTasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := selectTasks(s.tasks, func(t model.Task) bool { return t.Completed })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ActiveTaskCount counts uncompleted tasks in a project.
func (s *Store) ActiveTaskCount(projectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tasks {
		if t.ProjectID == projectID && !t.Completed {
			n++
		}
	}
	return n
}

type SearchResult struct {
	Tasks    []model.Task    `json:"tasks"`
	Projects []model.Project `json:"projects"`
}

// Search matches task titles and descriptions and project names, ignoring case.
// A blank query matches nothing.
func (s *Store) Search(query string) SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := SearchResult{Tasks: []model.Task{}, Projects: []model.Project{}}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res
	}
	res.Tasks = selectTasks(s.tasks, func(t model.Task) bool { return taskMatches(t, q) })
	for _, p := range s.projects {
		if strings.Contains(strings.ToLower(p.Name), q) {
			res.Projects = append(res.Projects, p.Clone())
		}
	}
	return res
}

func (s *Store) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Category{}, s.categories...)
}

// Category returns false for unknown ids, including dangling task references.
func (s *Store) Category(id string) (model.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, _, ok := model.FindCategory(s.categories, id)
	return c, ok
}

func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneProjects(s.projects)
}

func (s *Store) Project(id string) (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _, ok := model.FindProject(s.projects, id)
	return p.Clone(), ok
}

func (s *Store) Rewards() model.EarnedRewards {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewards
}

func (s *Store) Activity() activity.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(activity.Log{}, s.log...)
}

func (s *Store) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// LastSync reports when the last push was acknowledged.
func (s *Store) LastSync() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync, !s.lastSync.IsZero()
}
