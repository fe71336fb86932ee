package store

import (
	"fmt"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/notify"
	"taskreward/internal/reward"
)

// AddManualReward adds three non-negative deltas in one update.
func (s *Store) AddManualReward(delta model.EarnedRewards) (model.EarnedRewards, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := reward.AddManual(s.rewards, delta)
	if err != nil {
		return s.rewards, s.reject(err)
	}
	s.commitRewards(next)
	desc := reward.DescribeManual(delta)
	notify.Success(s.notifier, "Rewards added", desc)
	s.appendLog("Rewards added", "Manually added rewards: "+desc, nil)
	return next, nil
}

// SetReward overwrites one ledger kind, logging the previous value for undo.
func (s *Store) SetReward(kind model.RewardType, value int) (model.EarnedRewards, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !kind.IsLedgerKind() {
		return s.rewards, s.reject(invalid(fmt.Sprintf("reward type %q has no balance", kind)))
	}
	prev := s.rewards.Get(kind)
	next := s.rewards.With(kind, value)
	s.commitRewards(next)

	diff := value - prev
	sign := ""
	if diff >= 0 {
		sign = "+"
	}
	newValue := value
	s.appendLog(
		"Rewards changed",
		fmt.Sprintf("%s: %d → %d (%s%d)", kind.Unit(), prev, value, sign, diff),
		activity.RewardChange{RewardType: kind, PreviousValue: &prev, NewValue: &newValue},
	)
	return next, nil
}

// PatchRewards overwrites the kinds set in p, logging the previous snapshot.
// Kinds absent from p keep whatever concurrent credits left in them.
func (s *Store) PatchRewards(p model.RewardsPatch) model.EarnedRewards {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.rewards
	next := p.Apply(prev)
	if prev == next {
		return prev
	}
	s.commitRewards(next)
	s.appendLog(
		"Rewards changed",
		fmt.Sprintf("points %d → %d, minutes %d → %d, rubles %d → %d",
			prev.Points, next.Points, prev.Minutes, next.Minutes, prev.Rubles, next.Rubles),
		activity.RewardChange{Previous: &prev},
	)
	return next
}

// ToggleTheme flips dark mode and returns the new value.
func (s *Store) ToggleTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.prefs.DarkMode
	prefs := s.prefs
	prefs.DarkMode = !prev
	s.commitPrefs(prefs)

	desc := "Dark theme enabled"
	if prev {
		desc = "Light theme enabled"
	}
	notify.Success(s.notifier, desc, "")
	s.appendLog("Theme changed", desc, activity.ThemeChange{PreviousDark: prev})
	return prefs.DarkMode
}
