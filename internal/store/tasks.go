package store

import (
	"fmt"
	"strings"
	"time"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/notify"
	"taskreward/internal/reward"
)

// TaskDraft is the input for CreateTask. Zero values take the defaults of the
// new-task form: minutes reward, the selected project, priority 2.
type TaskDraft struct {
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Category          string           `json:"category"`
	RewardType        model.RewardType `json:"rewardType"`
	RewardAmount      int              `json:"rewardAmount"`
	RewardDescription string           `json:"rewardDescription"`
	ScheduledDate     *time.Time       `json:"scheduledDate"`
	ProjectID         string           `json:"projectId"`
	SectionID         string           `json:"sectionId"`
	Priority          model.Priority   `json:"priority"`
}

// TaskPatch changes only the fields that are set. Completion is not
// patchable; use CompleteTask and UncompleteTask.
type TaskPatch struct {
	Title             *string           `json:"title"`
	Description       *string           `json:"description"`
	Category          *string           `json:"category"`
	RewardType        *model.RewardType `json:"rewardType"`
	RewardAmount      *int              `json:"rewardAmount"`
	RewardDescription *string           `json:"rewardDescription"`
	ScheduledDate     *time.Time        `json:"scheduledDate"`
	ClearSchedule     bool              `json:"clearSchedule"`
	ProjectID         *string           `json:"projectId"`
	SectionID         *string           `json:"sectionId"`
	Priority          *model.Priority   `json:"priority"`
}

func normalizeRewardType(k model.RewardType) (model.RewardType, error) {
	if k == "" {
		return model.RewardMinutes, nil
	}
	parsed, ok := model.ParseRewardType(string(k))
	if !ok {
		return "", invalid(fmt.Sprintf("unknown reward type %q", k))
	}
	return parsed, nil
}

// checkPlacement enforces that a task's section belongs to its project.
func (s *Store) checkPlacement(projectID, sectionID string) error {
	p, _, ok := model.FindProject(s.projects, projectID)
	if !ok {
		return invalid(fmt.Sprintf("unknown project %q", projectID))
	}
	if sectionID == "" {
		return nil
	}
	if _, ok := p.Section(sectionID); !ok {
		return invalid(fmt.Sprintf("section %q is not in project %q", sectionID, projectID))
	}
	return nil
}

func (s *Store) CreateTask(d TaskDraft) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.Task{}, s.reject(invalid("task title is required"))
	}
	kind, err := normalizeRewardType(d.RewardType)
	if err != nil {
		return model.Task{}, s.reject(err)
	}
	projectID := d.ProjectID
	if projectID == "" {
		projectID = s.prefs.SelectedProjectID
	}
	if err := s.checkPlacement(projectID, d.SectionID); err != nil {
		return model.Task{}, s.reject(err)
	}

	t := model.Task{
		ID:                model.NewID("task"),
		Title:             title,
		Description:       d.Description,
		Category:          d.Category,
		RewardType:        kind,
		RewardAmount:      d.RewardAmount,
		RewardDescription: d.RewardDescription,
		CreatedAt:         s.stamp(),
		ProjectID:         projectID,
		SectionID:         d.SectionID,
		Priority:          d.Priority.Normalize(),
	}
	if d.ScheduledDate != nil {
		at := d.ScheduledDate.UTC()
		t.ScheduledDate = &at
	}

	next := append(model.CloneTasks(s.tasks), t)
	s.commitTasks(next)
	notify.Success(s.notifier, "Task created", t.Title)
	s.appendLog("Task created", "Created task: "+t.Title, activity.TaskCreate{TaskID: t.ID})
	return t.Clone(), nil
}

// UpdateTask applies p. ok is false when the task does not exist.
func (s *Store) UpdateTask(id string, p TaskPatch) (task model.Task, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, idx, found := model.FindTask(s.tasks, id)
	if !found {
		return model.Task{}, false, nil
	}
	t := cur.Clone()

	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return model.Task{}, true, s.reject(invalid("task title is required"))
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.RewardType != nil {
		kind, err := normalizeRewardType(*p.RewardType)
		if err != nil {
			return model.Task{}, true, s.reject(err)
		}
		t.RewardType = kind
	}
	if p.RewardAmount != nil {
		t.RewardAmount = *p.RewardAmount
	}
	if cur.Completed && (t.RewardType != cur.RewardType || t.RewardAmount != cur.RewardAmount) {
		return model.Task{}, true, s.reject(invalid("reward of a completed task cannot change; uncomplete it first"))
	}
	if p.RewardDescription != nil {
		t.RewardDescription = *p.RewardDescription
	}
	if p.ClearSchedule {
		t.ScheduledDate = nil
	} else if p.ScheduledDate != nil {
		at := p.ScheduledDate.UTC()
		t.ScheduledDate = &at
	}
	if p.ProjectID != nil && *p.ProjectID != t.ProjectID {
		t.ProjectID = *p.ProjectID
		t.SectionID = ""
	}
	if p.SectionID != nil {
		t.SectionID = *p.SectionID
	}
	if p.Priority != nil {
		t.Priority = p.Priority.Normalize()
	}
	if err := s.checkPlacement(t.ProjectID, t.SectionID); err != nil {
		return model.Task{}, true, s.reject(err)
	}

	next := model.CloneTasks(s.tasks)
	next[idx] = t
	s.commitTasks(next)
	notify.Success(s.notifier, "Task updated", t.Title)
	s.appendLog("Task updated", "Updated task: "+t.Title, nil)
	return t.Clone(), true, nil
}

// CompleteTask credits the task's reward. ok is false when the task is
// missing or already completed.
func (s *Store) CompleteTask(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, idx, found := model.FindTask(s.tasks, id)
	if !found || cur.Completed {
		return model.Task{}, false
	}

	t := cur.Clone()
	t.Completed = true
	next := model.CloneTasks(s.tasks)
	next[idx] = t
	s.commitTasks(next)
	if t.RewardType.IsLedgerKind() {
		s.commitRewards(reward.Credit(s.rewards, t))
	}

	notify.Success(s.notifier, reward.Describe(t), t.Title)
	s.appendLog(
		"Task completed",
		fmt.Sprintf("Task %q completed. Earned: %s", t.Title, reward.Describe(t)),
		activity.TaskComplete{TaskID: t.ID},
	)
	return t.Clone(), true
}

// UncompleteTask debits the task's reward. It logs without an undo payload.
func (s *Store) UncompleteTask(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.uncompleteLocked(id)
	if !ok {
		return model.Task{}, false
	}
	notify.Info(s.notifier, "Task moved back to active", t.Title)
	s.appendLog(
		"Task reopened",
		fmt.Sprintf("Task %q moved back to active. Deducted: %s", t.Title, reward.DescribeReversal(t)),
		nil,
	)
	return t.Clone(), true
}

func (s *Store) uncompleteLocked(id string) (model.Task, bool) {
	cur, idx, found := model.FindTask(s.tasks, id)
	if !found || !cur.Completed {
		return model.Task{}, false
	}
	t := cur.Clone()
	t.Completed = false
	next := model.CloneTasks(s.tasks)
	next[idx] = t
	s.commitTasks(next)
	if t.RewardType.IsLedgerKind() {
		s.commitRewards(reward.Debit(s.rewards, t))
	}
	return t, true
}

func (s *Store) DeleteTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, _, found := model.FindTask(s.tasks, id)
	if !found {
		return false
	}
	s.commitTasks(removeTasks(s.tasks, func(x model.Task) bool { return x.ID == id }))
	notify.Success(s.notifier, "Task deleted", t.Title)
	s.appendLog("Task deleted", "Deleted task: "+t.Title, activity.TaskDelete{Task: t.Clone()})
	return true
}

// removeTasks returns a copy of ts without the tasks drop matches.
func removeTasks(ts []model.Task, drop func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(ts))
	for _, t := range ts {
		if !drop(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// selectTasks returns copies of the tasks keep matches.
func selectTasks(ts []model.Task, keep func(model.Task) bool) []model.Task {
	out := []model.Task{}
	for _, t := range ts {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}
