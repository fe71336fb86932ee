package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EarnedRewards is the running ledger of everything earned so far.
type EarnedRewards struct {
	Points  int `json:"points"`
	Minutes int `json:"minutes"`
	Rubles  int `json:"rubles"`
}

func (r EarnedRewards) Get(kind RewardType) int {
	switch kind {
	case RewardPoints:
		return r.Points
	case RewardMinutes:
		return r.Minutes
	case RewardRubles:
		return r.Rubles
	default:
		return 0
	}
}

// With returns a copy with kind set to v. Non-ledger kinds leave r unchanged.
func (r EarnedRewards) With(kind RewardType, v int) EarnedRewards {
	switch kind {
	case RewardPoints:
		r.Points = v
	case RewardMinutes:
		r.Minutes = v
	case RewardRubles:
		r.Rubles = v
	}
	return r
}

func (r EarnedRewards) Plus(d EarnedRewards) EarnedRewards {
	return EarnedRewards{
		Points:  r.Points + d.Points,
		Minutes: r.Minutes + d.Minutes,
		Rubles:  r.Rubles + d.Rubles,
	}
}

func (r EarnedRewards) IsZero() bool {
	return r.Points == 0 && r.Minutes == 0 && r.Rubles == 0
}

// RewardsPatch sets the ledger kinds that are non-nil and leaves the rest.
type RewardsPatch struct {
	Points  *int `json:"points,omitempty"`
	Minutes *int `json:"minutes,omitempty"`
	Rubles  *int `json:"rubles,omitempty"`
}

func (p RewardsPatch) Apply(r EarnedRewards) EarnedRewards {
	if p.Points != nil {
		r.Points = *p.Points
	}
	if p.Minutes != nil {
		r.Minutes = *p.Minutes
	}
	if p.Rubles != nil {
		r.Rubles = *p.Rubles
	}
	return r
}

// NewID returns a prefixed random identifier, e.g. "task-1f0c2d9e".
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	if prefix == "" {
		return id
	}
	return fmt.Sprintf("%s-%s", prefix, id[:12])
}
