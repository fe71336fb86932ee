// Package reward applies and reverses reward deltas on the earned-rewards ledger.
// Functions here are pure; the store decides when to call them.
package reward

import (
	"fmt"
	"strings"

	"taskreward/internal/model"
)

var (
	ErrNothingToAdd  = fmt.Errorf("%w: enter at least one reward", model.ErrValidation)
	ErrNegativeDelta = fmt.Errorf("%w: manual rewards cannot be negative", model.ErrValidation)
)

// Credit adds the task's reward to the ledger. Prize tasks leave it unchanged.
func Credit(r model.EarnedRewards, t model.Task) model.EarnedRewards {
	if !t.RewardType.IsLedgerKind() {
		return r
	}
	return r.With(t.RewardType, r.Get(t.RewardType)+t.RewardAmount)
}

// Debit is the exact inverse of Credit.
func Debit(r model.EarnedRewards, t model.Task) model.EarnedRewards {
	if !t.RewardType.IsLedgerKind() {
		return r
	}
	return r.With(t.RewardType, r.Get(t.RewardType)-t.RewardAmount)
}

// ValidateManual rejects an all-zero delta or any negative component.
func ValidateManual(delta model.EarnedRewards) error {
	if delta.Points < 0 || delta.Minutes < 0 || delta.Rubles < 0 {
		return ErrNegativeDelta
	}
	if delta.IsZero() {
		return ErrNothingToAdd
	}
	return nil
}

// AddManual adds all three components in one step.
func AddManual(r model.EarnedRewards, delta model.EarnedRewards) (model.EarnedRewards, error) {
	if err := ValidateManual(delta); err != nil {
		return r, err
	}
	return r.Plus(delta), nil
}

// Signed formats an amount with its unit, e.g. "+15 points" or "-5 minutes".
func Signed(kind model.RewardType, amount int) string {
	sign := ""
	if amount >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%d %s", sign, amount, kind.Unit())
}

// Describe is the text shown when a task is completed.
func Describe(t model.Task) string {
	if !t.RewardType.IsLedgerKind() {
		if d := strings.TrimSpace(t.RewardDescription); d != "" {
			return d
		}
		return "prize"
	}
	return Signed(t.RewardType, t.RewardAmount)
}

// DescribeReversal is the text logged when a completed task is reopened.
func DescribeReversal(t model.Task) string {
	if !t.RewardType.IsLedgerKind() {
		return Describe(t)
	}
	return Signed(t.RewardType, -t.RewardAmount)
}

// DescribeManual lists only the non-zero components, comma separated.
func DescribeManual(delta model.EarnedRewards) string {
	parts := make([]string, 0, 3)
	for _, k := range []model.RewardType{model.RewardPoints, model.RewardMinutes, model.RewardRubles} {
		if v := delta.Get(k); v > 0 {
			parts = append(parts, Signed(k, v))
		}
	}
	return strings.Join(parts, ", ")
}
