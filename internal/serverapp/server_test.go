package serverapp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/auth"
	"taskreward/internal/cloud"
	"taskreward/internal/cloudsync"
	"taskreward/internal/logx"
	"taskreward/internal/model"
	"taskreward/internal/notify"
	"taskreward/internal/persist"
	"taskreward/internal/store"
)

type testApp struct {
	t       *testing.T
	handler http.Handler
	store   *store.Store
	feed    *notify.Feed
}

func newTestApp(t *testing.T, syncer func(*store.Store, *notify.Feed) *cloudsync.Syncer) *testApp {
	t.Helper()
	feed := notify.NewFeed(20)
	s := store.New(store.Options{Persister: persist.NewMemoryStore(), Notifier: feed, Logger: logx.Discard()})
	opts := Options{Store: s, Feed: feed, Logger: logx.Discard()}
	if syncer != nil {
		opts.Syncer = syncer(s, feed)
	}
	h, err := NewHandler(opts)
	require.NoError(t, err)
	return &testApp{t: t, handler: h, store: s, feed: feed}
}

func (a *testApp) json(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var b []byte
	if body != nil {
		var err error
		b, err = json.Marshal(body)
		require.NoError(a.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func TestNewHandler_RequiresStore(t *testing.T) {
	_, err := NewHandler(Options{})
	assert.Error(t, err)
}

func TestServer_Health(t *testing.T) {
	app := newTestApp(t, nil)

	rr := app.json(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = app.json(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var ready map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ready))
	assert.Equal(t, true, ready["ok"])

	rr = app.json(http.MethodPost, "/healthz", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestServer_TaskFlowUpdatesRewardsAndFeed(t *testing.T) {
	app := newTestApp(t, nil)

	rr := app.json(http.MethodPost, "/api/tasks", map[string]any{
		"title":        "Stretch",
		"rewardType":   "minutes",
		"rewardAmount": 15,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created model.Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, model.DefaultProjectID, created.ProjectID)

	rr = app.json(http.MethodPost, "/api/tasks/"+created.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = app.json(http.MethodGet, "/api/rewards", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var rewards model.EarnedRewards
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rewards))
	assert.Equal(t, 15, rewards.Minutes)

	rr = app.json(http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var feed struct {
		Notifications []notify.Notice `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &feed))
	require.Len(t, feed.Notifications, 2)
	assert.Equal(t, "Stretch", feed.Notifications[0].Description)
	assert.Equal(t, "Task created", feed.Notifications[1].Title)

	rr = app.json(http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Len(t, snap.Tasks, 1)
	assert.True(t, snap.Tasks[0].Completed)
	assert.True(t, snap.Dirty)
	assert.Len(t, snap.ActivityLog, 2)
}

func TestServer_RoutesMounted(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{
		"/api/tasks",
		"/api/projects",
		"/api/categories",
		"/api/search?q=x",
		"/api/activity",
		"/api/board/state",
		"/api/sync/status",
	} {
		rr := app.json(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, "%s: %s", path, rr.Body.String())
	}

	rr := app.json(http.MethodPost, "/api/theme/toggle", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, app.store.Prefs().DarkMode)

	rr = app.json(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_SyncWithoutCloud(t *testing.T) {
	app := newTestApp(t, nil)

	rr := app.json(http.MethodPost, "/api/sync", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = app.json(http.MethodGet, "/api/sync", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	app = newTestApp(t, func(s *store.Store, feed *notify.Feed) *cloudsync.Syncer {
		client := cloudsync.NewClient("http://127.0.0.1:1/api/auth", "http://127.0.0.1:1/api/data", time.Second)
		return cloudsync.New(cloudsync.Options{
			Store:    s,
			Client:   client,
			Tokens:   cloudsync.NewTokenStore(persist.NewMemoryStore()),
			Notifier: feed,
			Logger:   logx.Discard(),
		})
	})
	rr = app.json(http.MethodPost, "/api/sync", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = app.json(http.MethodGet, "/api/sync/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var st cloudsync.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.True(t, st.Enabled)
	assert.False(t, st.LoggedIn)
}

func TestServer_SyncAgainstCloud(t *testing.T) {
	db, err := cloud.OpenDB(cloud.DriverSQLite, filepath.Join(t.TempDir(), "cloud.db"), logx.Discard())
	require.NoError(t, err)
	repo := cloud.NewRepo(db)
	svc, err := auth.NewService(repo, auth.Options{Secret: "serverapp-test", Logger: logx.Discard()})
	require.NoError(t, err)
	cloudSrv := httptest.NewServer(cloud.NewRouter(cloud.RouterOptions{Auth: svc, Repo: repo, Logger: logx.Discard()}))
	t.Cleanup(cloudSrv.Close)

	_, token, err := svc.Register(context.Background(), "app@example.test", "secret1", "app")
	require.NoError(t, err)

	app := newTestApp(t, func(s *store.Store, feed *notify.Feed) *cloudsync.Syncer {
		tokens := cloudsync.NewTokenStore(persist.NewMemoryStore())
		require.NoError(t, tokens.Save(token))
		return cloudsync.New(cloudsync.Options{
			Store:    s,
			Client:   cloudsync.NewClient(cloudSrv.URL+"/api/auth", cloudSrv.URL+"/api/data", 5*time.Second),
			Tokens:   tokens,
			Notifier: feed,
			Logger:   logx.Discard(),
		})
	})

	rr := app.json(http.MethodPost, "/api/sync/pull", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, app.store.Categories(), 5)

	rr = app.json(http.MethodPost, "/api/tasks", map[string]any{"title": "Synced task", "rewardType": "points", "rewardAmount": 3})
	require.Equal(t, http.StatusCreated, rr.Code)
	require.True(t, app.store.Dirty())

	rr = app.json(http.MethodPost, "/api/sync", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var st cloudsync.Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.False(t, st.Dirty)
	assert.NotNil(t, st.LastSync)

	u, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	data, err := repo.Data(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, data.Tasks, 1)
	assert.Equal(t, "Synced task", data.Tasks[0].Title)
}
