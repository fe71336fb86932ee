package cloudsync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/activity"
	"taskreward/internal/auth"
	"taskreward/internal/cloud"
	"taskreward/internal/logx"
	"taskreward/internal/model"
	"taskreward/internal/notify"
	"taskreward/internal/persist"
	"taskreward/internal/store"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type local struct {
	store  *store.Store
	tokens *TokenStore
	feed   *notify.Feed
}

func newLocal(t *testing.T, c *clock) local {
	t.Helper()
	p := persist.NewMemoryStore()
	feed := notify.NewFeed(20)
	return local{
		store:  store.New(store.Options{Persister: p, Notifier: feed, Logger: logx.Discard(), Now: c.Now}),
		tokens: NewTokenStore(p),
		feed:   feed,
	}
}

func newCloudServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := cloud.OpenDB(cloud.DriverSQLite, filepath.Join(t.TempDir(), "cloud.db"), logx.Discard())
	require.NoError(t, err)
	repo := cloud.NewRepo(db)
	svc, err := auth.NewService(repo, auth.Options{Secret: "sync-test", Logger: logx.Discard()})
	require.NoError(t, err)
	srv := httptest.NewServer(cloud.NewRouter(cloud.RouterOptions{Auth: svc, Repo: repo, Logger: logx.Discard()}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncer_RoundTripThroughCloud(t *testing.T) {
	srv := newCloudServer(t)
	client := NewClient(srv.URL+"/api/auth", srv.URL+"/api/data", 5*time.Second)
	ctx := context.Background()
	c := newClock()

	res, err := client.Register(ctx, "sync@example.test", "secret1", "sync")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	_, err = client.Register(ctx, "sync@example.test", "secret1", "sync")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "User already exists", apiErr.Message)

	u, err := client.Verify(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "sync@example.test", u.Email)

	a := newLocal(t, c)
	require.NoError(t, a.tokens.Save(res.Token))
	syncA := New(Options{Store: a.store, Client: client, Tokens: a.tokens, Notifier: a.feed, Logger: logx.Discard(), Now: c.Now})

	// The first pull brings in the seeded categories.
	require.NoError(t, syncA.LoadInitial(ctx))
	assert.Len(t, a.store.Categories(), 5)
	assert.False(t, a.store.Dirty())

	sec, _, err := a.store.CreateSection(model.DefaultProjectID, "Today")
	require.NoError(t, err)
	sched := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	task, err := a.store.CreateTask(store.TaskDraft{
		Title:         "Write report",
		Category:      "work",
		RewardType:    model.RewardPoints,
		RewardAmount:  20,
		ScheduledDate: &sched,
		SectionID:     sec.ID,
	})
	require.NoError(t, err)
	_, ok := a.store.CompleteTask(task.ID)
	require.True(t, ok)
	require.True(t, a.store.Dirty())

	require.NoError(t, syncA.SyncNow(ctx))
	assert.False(t, a.store.Dirty())
	st := syncA.Status()
	assert.True(t, st.LoggedIn)
	require.NotNil(t, st.LastSync)

	// A second device logs in and pulls what the first pushed.
	login, err := client.Login(ctx, "sync@example.test", "secret1")
	require.NoError(t, err)
	b := newLocal(t, c)
	require.NoError(t, b.tokens.Save(login.Token))
	syncB := New(Options{Store: b.store, Client: client, Tokens: b.tokens, Logger: logx.Discard()})
	require.NoError(t, syncB.LoadInitial(ctx))

	got, ok := b.store.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Write report", got.Title)
	assert.True(t, got.Completed)
	assert.Equal(t, sec.ID, got.SectionID)
	assert.Equal(t, model.DefaultProjectID, got.ProjectID)
	require.NotNil(t, got.ScheduledDate)
	assert.True(t, sched.Equal(*got.ScheduledDate))
	assert.Equal(t, 20, b.store.Rewards().Points)

	p, ok := b.store.Project(model.DefaultProjectID)
	require.True(t, ok)
	require.Len(t, p.Sections, 1)
	assert.Equal(t, "Today", p.Sections[0].Name)

	require.NoError(t, client.Logout(ctx, login.Token))
	_, err = client.Pull(ctx, login.Token)
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
}

func TestSyncNow_OlderCompletionDoesNotMoveLastSync(t *testing.T) {
	var calls int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(arrived)
			<-release
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Data synced successfully"})
	}))
	defer srv.Close()

	c := newClock()
	l := newLocal(t, c)
	require.NoError(t, l.tokens.Save("tok"))
	s := New(Options{Store: l.store, Client: NewClient("", srv.URL, 5*time.Second), Tokens: l.tokens, Logger: logx.Discard(), Now: c.Now})

	_, err := l.store.CreateCategory(store.CategoryDraft{Name: "Errands"})
	require.NoError(t, err)

	first := make(chan error, 1)
	go func() { first <- s.SyncNow(context.Background()) }()
	<-arrived

	require.NoError(t, s.SyncNow(context.Background()))
	later, ok := l.store.LastSync()
	require.True(t, ok)

	close(release)
	require.NoError(t, <-first)
	after, _ := l.store.LastSync()
	assert.Equal(t, later, after)
	assert.False(t, l.store.Dirty())
}

func TestSyncNow_StaleOverwriteIsPushedAgain(t *testing.T) {
	var (
		calls  int32
		mu     sync.Mutex
		stored cloud.SyncRequest
	)
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req cloud.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			close(arrived)
			<-release
		}
		mu.Lock()
		stored = req
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Data synced successfully"})
	}))
	defer srv.Close()

	hasLate := func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range stored.Categories {
			if c.Name == "Late" {
				return true
			}
		}
		return false
	}

	c := newClock()
	l := newLocal(t, c)
	require.NoError(t, l.tokens.Save("tok"))
	s := New(Options{Store: l.store, Client: NewClient("", srv.URL, 5*time.Second), Tokens: l.tokens, Logger: logx.Discard(), Now: c.Now})

	first := make(chan error, 1)
	go func() { first <- s.SyncNow(context.Background()) }()
	<-arrived

	_, err := l.store.CreateCategory(store.CategoryDraft{Name: "Late"})
	require.NoError(t, err)
	require.NoError(t, s.SyncNow(context.Background()))
	require.True(t, hasLate())
	require.False(t, l.store.Dirty())

	close(release)
	require.NoError(t, <-first)
	assert.False(t, hasLate(), "the older push landed last")
	assert.True(t, l.store.Dirty())

	s.syncIfDirty()
	assert.True(t, hasLate())
	assert.False(t, l.store.Dirty())
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSyncNow_MutationDuringPushKeepsDirty(t *testing.T) {
	c := newClock()
	l := newLocal(t, c)
	require.NoError(t, l.tokens.Save("tok"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = l.store.CreateCategory(store.CategoryDraft{Name: "Late"})
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok"})
	}))
	defer srv.Close()

	s := New(Options{Store: l.store, Client: NewClient("", srv.URL, 5*time.Second), Tokens: l.tokens, Logger: logx.Discard()})
	require.NoError(t, s.SyncNow(context.Background()))
	_, ok := l.store.LastSync()
	assert.True(t, ok)
	assert.True(t, l.store.Dirty())
}

func TestSyncNow_FailureNotifiesAndKeepsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "db down"})
	}))
	defer srv.Close()

	c := newClock()
	l := newLocal(t, c)
	require.NoError(t, l.tokens.Save("tok"))
	s := New(Options{Store: l.store, Client: NewClient("", srv.URL, 5*time.Second), Tokens: l.tokens, Notifier: l.feed, Logger: logx.Discard()})
	_, err := l.store.CreateCategory(store.CategoryDraft{Name: "Errands"})
	require.NoError(t, err)

	err = s.SyncNow(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "db down", apiErr.Message)
	assert.True(t, l.store.Dirty())
	_, ok := l.store.LastSync()
	assert.False(t, ok)
	assert.Len(t, l.store.Categories(), 1)

	recent := l.feed.Recent()
	require.NotEmpty(t, recent)
	assert.Equal(t, notify.LevelError, recent[0].Level)
	assert.Equal(t, "Sync failed", recent[0].Title)
	assert.Contains(t, s.Status().LastError, "db down")
}

func TestSyncIfDirty_SkipsCleanStore(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok"})
	}))
	defer srv.Close()

	l := newLocal(t, newClock())
	require.NoError(t, l.tokens.Save("tok"))
	s := New(Options{Store: l.store, Client: NewClient("", srv.URL, 5*time.Second), Tokens: l.tokens, Logger: logx.Discard()})

	s.syncIfDirty()
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	_, err := l.store.CreateCategory(store.CategoryDraft{Name: "Errands"})
	require.NoError(t, err)
	s.syncIfDirty()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	s.syncIfDirty()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSyncNow_RequiresLoginAndConfig(t *testing.T) {
	l := newLocal(t, newClock())
	s := New(Options{Store: l.store, Client: NewClient("", "http://127.0.0.1:1/api/data", time.Second), Tokens: l.tokens, Logger: logx.Discard()})
	assert.ErrorIs(t, s.SyncNow(context.Background()), ErrNotLoggedIn)

	off := New(Options{Store: l.store, Logger: logx.Discard()})
	assert.ErrorIs(t, off.SyncNow(context.Background()), ErrDisabled)
	assert.False(t, off.Status().Enabled)
}

func TestStartStop(t *testing.T) {
	l := newLocal(t, newClock())
	s := New(Options{Store: l.store, Logger: logx.Discard(), Interval: time.Hour})
	require.NoError(t, s.Start())
	s.Stop()
}

func TestToSyncRequest_ActivityNewestFiftyOldestFirst(t *testing.T) {
	var log activity.Log
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		log = log.Prepend(activity.Entry{ID: fmt.Sprintf("log-%02d", i), Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}
	req := ToSyncRequest(store.Export{ActivityLog: log})
	require.Len(t, req.ActivityLogs, cloud.MaxPushedLogs)
	assert.True(t, req.ActivityLogs[0].Timestamp.Equal(base.Add(10*time.Minute)))
	assert.True(t, req.ActivityLogs[49].Timestamp.Equal(base.Add(59*time.Minute)))
}

func TestToRemote_MigratesSectionsAndDefaults(t *testing.T) {
	sid := "s2"
	remote := ToRemote(cloud.DataResponse{
		Projects: []cloud.ProjectJSON{{ID: "p1", Name: "Work", Sections: []cloud.SectionJSON{
			{ID: "s1", Name: "A"},
			{ID: "s2", Name: "B"},
		}}},
		Tasks: []cloud.PulledTask{
			{ID: "t1", Title: "x", RewardType: "money", ProjectID: "p1", SectionID: &sid},
			{ID: "t2", Title: "y", RewardType: "points"},
		},
		Rewards: cloud.RewardsJSON{Rubles: 100},
	})

	projects := model.MigrateProjects(remote.Projects)
	require.Len(t, projects[0].Sections, 2)
	assert.Equal(t, 1, projects[0].Sections[0].Order)
	assert.Equal(t, 2, projects[0].Sections[1].Order)
	assert.Equal(t, "p1", projects[0].Sections[1].ProjectID)

	assert.Equal(t, model.RewardRubles, remote.Tasks[0].RewardType)
	assert.Equal(t, "s2", remote.Tasks[0].SectionID)
	assert.Equal(t, model.DefaultProjectID, remote.Tasks[1].ProjectID)
	require.NotNil(t, remote.Rewards)
	assert.Equal(t, 100, remote.Rewards.Rubles)
}
