package cloudsync

import (
	"taskreward/internal/activity"
	"taskreward/internal/cloud"
	"taskreward/internal/model"
	"taskreward/internal/store"
)

// ToSyncRequest shapes an export for POST data. The newest activity entries
// are sent oldest first.
func ToSyncRequest(e store.Export) cloud.SyncRequest {
	out := cloud.SyncRequest{
		Categories:   make([]cloud.CategoryJSON, 0, len(e.Categories)),
		Projects:     make([]cloud.ProjectJSON, 0, len(e.Projects)),
		Tasks:        make([]cloud.PushedTask, 0, len(e.Tasks)),
		Rewards:      cloud.RewardsJSON{Points: e.Rewards.Points, Minutes: e.Rewards.Minutes, Rubles: e.Rewards.Rubles},
		ActivityLogs: pushedLogs(e.ActivityLog),
	}
	for _, c := range e.Categories {
		out.Categories = append(out.Categories, cloud.CategoryJSON{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color})
	}
	for _, p := range e.Projects {
		pj := cloud.ProjectJSON{ID: p.ID, Name: p.Name, Icon: p.Icon, Color: p.Color, Sections: make([]cloud.SectionJSON, 0, len(p.Sections))}
		for _, s := range p.Sections {
			order := s.Order
			pj.Sections = append(pj.Sections, cloud.SectionJSON{ID: s.ID, Name: s.Name, ProjectID: p.ID, Order: &order})
		}
		out.Projects = append(out.Projects, pj)
	}
	for _, t := range e.Tasks {
		pt := cloud.PushedTask{
			ID:                t.ID,
			Title:             t.Title,
			Description:       t.Description,
			Category:          t.Category,
			RewardType:        string(t.RewardType),
			RewardAmount:      t.RewardAmount,
			RewardDescription: t.RewardDescription,
			Completed:         t.Completed,
			CreatedAt:         t.CreatedAt.UTC(),
			ProjectID:         t.ProjectID,
			SectionID:         t.SectionID,
			Priority:          int(t.Priority),
		}
		if t.ScheduledDate != nil {
			d := t.ScheduledDate.UTC()
			pt.ScheduledDate = &d
		}
		out.Tasks = append(out.Tasks, pt)
	}
	return out
}

func pushedLogs(log activity.Log) []cloud.PushedLog {
	newest := log.Newest(cloud.MaxPushedLogs)
	out := make([]cloud.PushedLog, 0, len(newest))
	for i := len(newest) - 1; i >= 0; i-- {
		e := newest[i]
		out = append(out, cloud.PushedLog{ID: e.ID, Action: e.Action, Description: e.Description, Timestamp: e.Timestamp.UTC()})
	}
	return out
}

// ToRemote converts a pulled payload for store.ApplyRemote. Sections pulled
// without an order get one from their position.
func ToRemote(d cloud.DataResponse) store.Remote {
	var r store.Remote
	for _, p := range d.Projects {
		rec := model.ProjectRecord{ID: p.ID, Name: p.Name, Icon: p.Icon, Color: p.Color, Sections: make([]model.SectionRecord, 0, len(p.Sections))}
		for _, s := range p.Sections {
			rec.Sections = append(rec.Sections, model.SectionRecord{ID: s.ID, Name: s.Name, ProjectID: s.ProjectID, Order: s.Order})
		}
		r.Projects = append(r.Projects, rec)
	}
	for _, c := range d.Categories {
		r.Categories = append(r.Categories, model.Category{ID: c.ID, Name: c.Name, Icon: c.Icon, Color: c.Color})
	}
	for _, t := range d.Tasks {
		task := model.Task{
			ID:                t.ID,
			Title:             t.Title,
			Description:       t.Description,
			Category:          t.CategoryID,
			RewardType:        model.RewardType(t.RewardType),
			RewardAmount:      t.RewardAmount,
			RewardDescription: t.RewardDescription,
			Completed:         t.Completed,
			CreatedAt:         t.CreatedAt,
			ProjectID:         t.ProjectID,
			Priority:          model.Priority(t.Priority),
		}
		if kind, ok := model.ParseRewardType(t.RewardType); ok {
			task.RewardType = kind
		}
		if t.SectionID != nil {
			task.SectionID = *t.SectionID
		}
		if t.ScheduledDate != nil {
			d := *t.ScheduledDate
			task.ScheduledDate = &d
		}
		if task.ProjectID == "" {
			task.ProjectID = model.DefaultProjectID
		}
		r.Tasks = append(r.Tasks, task)
	}
	rw := model.EarnedRewards{Points: d.Rewards.Points, Minutes: d.Rewards.Minutes, Rubles: d.Rewards.Rubles}
	r.Rewards = &rw
	return r
}
