package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/auth"
	"taskreward/internal/logx"
)

type harness struct {
	repo   *Repo
	auth   *auth.Service
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := OpenDB(DriverSQLite, filepath.Join(t.TempDir(), "cloud", "test.db"), logx.Discard())
	require.NoError(t, err)
	repo := NewRepo(db)
	svc, err := auth.NewService(repo, auth.Options{Secret: "s3cret", Logger: logx.Discard()})
	require.NoError(t, err)
	return &harness{
		repo:   repo,
		auth:   svc,
		router: NewRouter(RouterOptions{Auth: svc, Repo: repo, Logger: logx.Discard()}),
	}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func (h *harness) register(t *testing.T, email string) string {
	t.Helper()
	rr := h.do(t, http.MethodPost, "/api/auth", "", map[string]any{
		"action":   "register",
		"email":    email,
		"password": "secret1",
		"username": "user",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out.Token
}

func (h *harness) pull(t *testing.T, token string) DataResponse {
	t.Helper()
	rr := h.do(t, http.MethodGet, "/api/data", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out DataResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestRegister_SeedsDefaults(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "seed@example.test")

	data := h.pull(t, token)
	require.Len(t, data.Categories, 5)
	assert.Equal(t, "Work", data.Categories[0].Name)
	assert.Equal(t, "Home", data.Categories[4].Name)
	require.Len(t, data.Projects, 1)
	assert.Equal(t, "default", data.Projects[0].ID)
	assert.Equal(t, "Main project", data.Projects[0].Name)
	assert.NotNil(t, data.Projects[0].Sections)
	assert.Equal(t, RewardsJSON{}, data.Rewards)
	assert.Empty(t, data.Tasks)

	_, err := h.repo.CreateUser(context.Background(), "seed@example.test", "x", "hash")
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestData_RequiresBearer(t *testing.T) {
	h := newHarness(t)
	rr := h.do(t, http.MethodGet, "/api/data", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = h.do(t, http.MethodGet, "/api/data", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPushThenPull(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "push@example.test")

	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	sched := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	order := 1
	push := SyncRequest{
		Categories: []CategoryJSON{{ID: "c1", Name: "Errands", Icon: "Cart", Color: "bg-pink-500"}},
		Projects: []ProjectJSON{
			{ID: "default", Name: "Main project", Icon: "Folder", Color: "bg-blue-500", Sections: []SectionJSON{
				{ID: "s1", Name: "Today", ProjectID: "default", Order: &order},
			}},
		},
		Tasks: []PushedTask{
			{ID: "t1", Title: "Old", Category: "c1", RewardType: "points", RewardAmount: 5, CreatedAt: created, ProjectID: "default", Priority: 2},
			{ID: "t2", Title: "New", Category: "c1", RewardType: "minutes", RewardAmount: 30, CreatedAt: created.Add(time.Hour), ScheduledDate: &sched, ProjectID: "default", SectionID: "s1", Priority: 1},
		},
		Rewards: RewardsJSON{Points: 15, Minutes: 30},
		ActivityLogs: []PushedLog{
			{ID: "l1", Action: "Task completed", Description: "Old", Timestamp: created},
		},
	}
	rr := h.do(t, http.MethodPost, "/api/data", token, push)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"message":"Data synced successfully"}`, rr.Body.String())

	rr = h.do(t, http.MethodGet, "/api/data", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var raw struct {
		Tasks []map[string]any `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	require.Len(t, raw.Tasks, 2)
	assert.Equal(t, "2024-05-01T10:30:00Z", raw.Tasks[0]["created_at"], "newest created first")
	assert.Equal(t, "2024-05-03T00:00:00Z", raw.Tasks[0]["scheduled_date"])

	data := h.pull(t, token)
	assert.Equal(t, []CategoryJSON{{ID: "c1", Name: "Errands", Icon: "Cart", Color: "bg-pink-500"}}, data.Categories, "pushed set replaces the seeded one")
	require.Len(t, data.Projects, 1)
	require.Len(t, data.Projects[0].Sections, 1)
	assert.Equal(t, 1, *data.Projects[0].Sections[0].Order)
	assert.Equal(t, "t2", data.Tasks[0].ID)
	assert.Equal(t, "s1", *data.Tasks[0].SectionID)
	assert.Nil(t, data.Tasks[1].SectionID)
	assert.Equal(t, RewardsJSON{Points: 15, Minutes: 30}, data.Rewards)
	require.Len(t, data.ActivityLogs, 1)
	assert.True(t, created.Equal(data.ActivityLogs[0].CreatedAt))

	// A second push drops t1 and renames t2; the activity entry is not duplicated.
	push.Tasks = push.Tasks[1:]
	push.Tasks[0].Title = "Renamed"
	push.Tasks[0].Completed = true
	rr = h.do(t, http.MethodPost, "/api/data", token, push)
	require.Equal(t, http.StatusOK, rr.Code)

	data = h.pull(t, token)
	require.Len(t, data.Tasks, 1)
	assert.Equal(t, "Renamed", data.Tasks[0].Title)
	assert.True(t, data.Tasks[0].Completed)
	assert.True(t, created.Add(time.Hour).Equal(data.Tasks[0].CreatedAt))
	assert.Len(t, data.ActivityLogs, 1)
}

func TestSync_IsolatesUsers(t *testing.T) {
	h := newHarness(t)
	alice := h.register(t, "alice@example.test")
	bob := h.register(t, "bob@example.test")

	push := SyncRequest{
		Projects: []ProjectJSON{{ID: "default", Name: "Alice main"}},
		Tasks:    []PushedTask{{ID: "t1", Title: "Alice task", ProjectID: "default", CreatedAt: time.Now()}},
	}
	require.Equal(t, http.StatusOK, h.do(t, http.MethodPost, "/api/data", alice, push).Code)

	b := h.pull(t, bob)
	assert.Empty(t, b.Tasks)
	require.Len(t, b.Projects, 1)
	assert.Equal(t, "Main project", b.Projects[0].Name)
	assert.Len(t, b.Categories, 5)
}

func TestSync_ActivityCaps(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "logs@example.test")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var logs []PushedLog
	for i := 0; i < 120; i++ {
		logs = append(logs, PushedLog{ID: fmt.Sprintf("l%03d", i), Action: "a", Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}
	for start := 0; start < 120; start += 40 {
		rr := h.do(t, http.MethodPost, "/api/data", token, SyncRequest{ActivityLogs: logs[start : start+40]})
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := h.do(t, http.MethodPost, "/api/data", token, SyncRequest{ActivityLogs: logs})
	require.Equal(t, http.StatusOK, rr.Code)

	data := h.pull(t, token)
	require.Len(t, data.ActivityLogs, MaxPulledLogs)
	assert.Equal(t, "l119", data.ActivityLogs[0].ID)
}

func TestData_MethodNotAllowed(t *testing.T) {
	h := newHarness(t)
	token := h.register(t, "m@example.test")
	rr := h.do(t, http.MethodDelete, "/api/data", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	_, err := OpenDB("postgres", "x", logx.Discard())
	assert.Error(t, err)
}
