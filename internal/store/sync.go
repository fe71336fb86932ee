package store

import (
	"time"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/persist"
)

// Export is the state pushed to the cloud, tagged with the version it was
// taken at.
type Export struct {
	Version     uint64
	Categories  []model.Category
	Projects    []model.Project
	Tasks       []model.Task
	Rewards     model.EarnedRewards
	ActivityLog activity.Log
}

func (s *Store) Export() Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Export{
		Version:     s.version,
		Categories:  append([]model.Category{}, s.categories...),
		Projects:    model.CloneProjects(s.projects),
		Tasks:       model.CloneTasks(s.tasks),
		Rewards:     s.rewards,
		ActivityLog: append(activity.Log{}, s.log...),
	}
}

// Remote is the data pulled from the cloud at startup.
type Remote struct {
	Projects   []model.ProjectRecord
	Categories []model.Category
	Tasks      []model.Task
	Rewards    *model.EarnedRewards
}

// ApplyRemote overrides local collections with every non-empty remote one.
// Loaded state equals the remote copy, so it does not mark the store dirty.
func (s *Store) ApplyRemote(r Remote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirty := s.dirty
	if len(r.Projects) > 0 {
		s.commitProjects(ensureDefaultProject(model.MigrateProjects(r.Projects)))
		if sel := s.validSelection(s.prefs.SelectedProjectID); sel != s.prefs.SelectedProjectID {
			prefs := s.prefs
			prefs.SelectedProjectID = sel
			s.commitPrefs(prefs)
		}
	}
	if len(r.Categories) > 0 {
		s.commitCategories(append([]model.Category{}, r.Categories...))
	}
	if len(r.Tasks) > 0 {
		s.commitTasks(model.NormalizeTasks(r.Tasks))
	}
	if r.Rewards != nil {
		s.commitRewards(*r.Rewards)
	}
	s.dirty = dirty
}

// MarkSynced records a successful push of the export taken at version. The
// dirty flag is cleared only if nothing changed since that export.
func (s *Store) MarkSynced(at time.Time, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSync = at.UTC()
	s.saveLocked(persist.KeyLastSyncTime, s.lastSync)
	if s.version == version {
		s.dirty = false
	}
}

// MarkDirty flags the store for another push when the cloud is known to hold
// an older copy. It also bumps the version, so a push already in flight
// cannot clear the flag.
func (s *Store) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
}
