package model

import (
	"strings"
	"time"
)

type RewardType string

const (
	RewardPoints  RewardType = "points"
	RewardMinutes RewardType = "minutes"
	RewardRubles  RewardType = "rubles"
	RewardPrize   RewardType = "prize"
)

// ParseRewardType accepts the canonical kinds plus "money" as an alias of rubles.
func ParseRewardType(s string) (RewardType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "points":
		return RewardPoints, true
	case "minutes":
		return RewardMinutes, true
	case "rubles", "money":
		return RewardRubles, true
	case "prize":
		return RewardPrize, true
	default:
		return "", false
	}
}

// IsLedgerKind reports whether completing a task of this kind moves the ledger.
func (r RewardType) IsLedgerKind() bool {
	return r == RewardPoints || r == RewardMinutes || r == RewardRubles
}

// Unit is the plural noun used in notifications.
func (r RewardType) Unit() string {
	switch r {
	case RewardPoints:
		return "points"
	case RewardMinutes:
		return "minutes"
	case RewardRubles:
		return "rubles"
	default:
		return "prize"
	}
}

type Priority int

const (
	PriorityUrgent Priority = 1
	PriorityHigh   Priority = 2
	PriorityMedium Priority = 3
	PriorityLow    Priority = 4

	DefaultPriority = PriorityHigh
)

func (p Priority) Valid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

// Normalize maps out-of-range values (including the zero value of old records) to the default.
func (p Priority) Normalize() Priority {
	if !p.Valid() {
		return DefaultPriority
	}
	return p
}

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	RewardType        RewardType `json:"rewardType"`
	RewardAmount      int        `json:"rewardAmount"`
	RewardDescription string     `json:"rewardDescription,omitempty"`
	Completed         bool       `json:"completed"`
	CreatedAt         time.Time  `json:"createdAt"`
	ScheduledDate     *time.Time `json:"scheduledDate,omitempty"`
	ProjectID         string     `json:"projectId"`
	SectionID         string     `json:"sectionId,omitempty"`
	Priority          Priority   `json:"priority"`
}

// InSection reports whether the task belongs to sectionID; "" means the no-section bucket.
func (t Task) InSection(sectionID string) bool {
	return t.SectionID == sectionID
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.ScheduledDate != nil {
		d := *t.ScheduledDate
		t.ScheduledDate = &d
	}
	return t
}

func CloneTasks(ts []Task) []Task {
	out := make([]Task, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}

func FindTask(ts []Task, id string) (Task, int, bool) {
	for i, t := range ts {
		if t.ID == id {
			return t, i, true
		}
	}
	return Task{}, -1, false
}
