package reward_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/activity"
	"taskreward/internal/model"
	"taskreward/internal/reward"
	"taskreward/internal/store"
)

func jsonReq(method, path string, body any) *http.Request {
	var b []byte
	if body != nil {
		b, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func call(fn http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}

func TestRewards_GetAndPut(t *testing.T) {
	s := store.New(store.Options{})
	h := reward.NewHandler(s)

	rr := call(h.Rewards, jsonReq(http.MethodPut, "/api/rewards", map[string]any{"rewardType": "money", "value": 250}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 250, s.Rewards().Rubles)

	rr = call(h.Rewards, jsonReq(http.MethodPut, "/api/rewards", map[string]any{"points": 9}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.EarnedRewards{Points: 9, Rubles: 250}, s.Rewards())

	rr = call(h.Rewards, jsonReq(http.MethodPut, "/api/rewards", map[string]any{"rewardType": "prize", "value": 1}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(h.Rewards, jsonReq(http.MethodPut, "/api/rewards", map[string]any{"rewardType": "gold", "value": 1}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(h.Rewards, jsonReq(http.MethodPut, "/api/rewards", map[string]any{"rewardType": "points"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(h.Rewards, jsonReq(http.MethodGet, "/api/rewards", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got model.EarnedRewards
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 9, got.Points)

	rr = call(h.Rewards, jsonReq(http.MethodDelete, "/api/rewards", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// completingStore lands a task completion right before each ledger patch.
type completingStore struct {
	*store.Store
	taskID string
}

func (c completingStore) PatchRewards(p model.RewardsPatch) model.EarnedRewards {
	c.Store.CompleteTask(c.taskID)
	return c.Store.PatchRewards(p)
}

func TestRewards_PutKeepsConcurrentCredit(t *testing.T) {
	s := store.New(store.Options{})
	task, err := s.CreateTask(store.TaskDraft{Title: "Walk", RewardType: model.RewardMinutes, RewardAmount: 30})
	require.NoError(t, err)
	h := reward.NewHandler(completingStore{Store: s, taskID: task.ID})

	rr := call(h.Rewards, jsonReq(http.MethodPut, "/api/rewards", map[string]any{"points": 5}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, model.EarnedRewards{Points: 5, Minutes: 30}, s.Rewards())

	done, ok := s.Task(task.ID)
	require.True(t, ok)
	require.True(t, done.Completed)
	s.UncompleteTask(task.ID)
	assert.Equal(t, model.EarnedRewards{Points: 5}, s.Rewards())
}

func TestManual_RejectsAllZero(t *testing.T) {
	s := store.New(store.Options{})
	h := reward.NewHandler(s)

	rr := call(h.Manual, jsonReq(http.MethodPost, "/api/rewards/manual", map[string]any{"points": 0, "minutes": 0, "rubles": 0}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, s.Activity())

	rr = call(h.Manual, jsonReq(http.MethodPost, "/api/rewards/manual", map[string]any{"points": 5, "minutes": 10}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, model.EarnedRewards{Points: 5, Minutes: 10}, s.Rewards())
	assert.Len(t, s.Activity(), 1)
}

func TestActivityUndo(t *testing.T) {
	s := store.New(store.Options{})
	h := reward.NewHandler(s)

	task, err := s.CreateTask(store.TaskDraft{Title: "Read", RewardType: model.RewardPoints, RewardAmount: 15})
	require.NoError(t, err)
	s.CompleteTask(task.ID)
	require.Equal(t, 15, s.Rewards().Points)

	rr := call(h.Activity, jsonReq(http.MethodGet, "/api/activity", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var log activity.Log
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &log))
	require.Len(t, log, 2)
	completeID := log[0].ID

	rr = call(h.ActivitySub, jsonReq(http.MethodPost, "/api/activity/"+completeID+"/undo", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Undone  bool                `json:"undone"`
		Rewards model.EarnedRewards `json:"rewards"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.Undone)
	assert.Equal(t, 0, out.Rewards.Points)

	rr = call(h.ActivitySub, jsonReq(http.MethodPost, "/api/activity/"+completeID+"/undo", nil))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.False(t, out.Undone)

	rr = call(h.ActivitySub, jsonReq(http.MethodGet, "/api/activity/"+completeID+"/undo", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = call(h.ActivitySub, jsonReq(http.MethodPost, "/api/activity/"+completeID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestToggleTheme(t *testing.T) {
	s := store.New(store.Options{})
	h := reward.NewHandler(s)

	rr := call(h.ToggleTheme, jsonReq(http.MethodPost, "/api/theme/toggle", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.False(t, out["darkMode"])
	assert.False(t, s.Prefs().DarkMode)
}
