package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/model"
)

func TestCreditDebitInverse(t *testing.T) {
	start := model.EarnedRewards{Points: 7, Minutes: 30, Rubles: 100}
	cases := []model.Task{
		{RewardType: model.RewardPoints, RewardAmount: 15},
		{RewardType: model.RewardMinutes, RewardAmount: -5},
		{RewardType: model.RewardRubles, RewardAmount: 0},
		{RewardType: model.RewardPrize, RewardAmount: 99, RewardDescription: "cinema"},
	}
	for _, task := range cases {
		got := Debit(Credit(start, task), task)
		assert.Equal(t, start, got, "kind %s", task.RewardType)
	}
}

func TestCredit_PrizeLeavesLedger(t *testing.T) {
	start := model.EarnedRewards{Points: 1}
	got := Credit(start, model.Task{RewardType: model.RewardPrize, RewardAmount: 50})
	assert.Equal(t, start, got)
}

func TestCredit_NegativePenalty(t *testing.T) {
	got := Credit(model.EarnedRewards{}, model.Task{RewardType: model.RewardMinutes, RewardAmount: -20})
	assert.Equal(t, -20, got.Minutes)
}

func TestAddManual(t *testing.T) {
	start := model.EarnedRewards{Points: 1, Minutes: 2, Rubles: 3}

	_, err := AddManual(start, model.EarnedRewards{})
	require.ErrorIs(t, err, ErrNothingToAdd)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = AddManual(start, model.EarnedRewards{Points: -1, Minutes: 5})
	assert.ErrorIs(t, err, ErrNegativeDelta)

	got, err := AddManual(start, model.EarnedRewards{Points: 10, Rubles: 50})
	require.NoError(t, err)
	assert.Equal(t, model.EarnedRewards{Points: 11, Minutes: 2, Rubles: 53}, got)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "+15 points", Describe(model.Task{RewardType: model.RewardPoints, RewardAmount: 15}))
	assert.Equal(t, "-5 minutes", Describe(model.Task{RewardType: model.RewardMinutes, RewardAmount: -5}))
	assert.Equal(t, "+0 rubles", Describe(model.Task{RewardType: model.RewardRubles}))
	assert.Equal(t, "cinema", Describe(model.Task{RewardType: model.RewardPrize, RewardDescription: "cinema"}))
	assert.Equal(t, "prize", Describe(model.Task{RewardType: model.RewardPrize}))
	assert.Equal(t, "-15 points", DescribeReversal(model.Task{RewardType: model.RewardPoints, RewardAmount: 15}))
}

func TestDescribeManual_OnlyNonZero(t *testing.T) {
	assert.Equal(t, "+10 points, +50 rubles", DescribeManual(model.EarnedRewards{Points: 10, Rubles: 50}))
	assert.Equal(t, "+3 minutes", DescribeManual(model.EarnedRewards{Minutes: 3}))
}
