package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"taskreward/internal/board"
	"taskreward/internal/cloudsync"
	"taskreward/internal/httpmw"
	"taskreward/internal/notify"
	"taskreward/internal/project"
	"taskreward/internal/reward"
	"taskreward/internal/store"
	"taskreward/internal/task"
)

type Options struct {
	Store  *store.Store
	Syncer *cloudsync.Syncer
	Feed   *notify.Feed
	Logger *log.Logger

	// SyncTimeout bounds a push or pull started from the API.
	SyncTimeout time.Duration
	// BodyLimit of 0 means httpmw.DefaultBodyLimit.
	BodyLimit int64
	Now       func() time.Time
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Feed == nil {
		opts.Feed = notify.NewFeed(0)
	}
	if opts.SyncTimeout <= 0 {
		opts.SyncTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskreward",
			"time":    opts.Now().UTC().Format(time.RFC3339),
		})
	})

	taskHandler := task.NewHandler(opts.Store)
	mux.HandleFunc("/api/tasks", taskHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/", taskHandler.TasksSub)

	projectHandler := project.NewHandler(opts.Store)
	mux.HandleFunc("/api/projects", projectHandler.ProjectsRoot)
	mux.HandleFunc("/api/projects/", projectHandler.ProjectsSub)
	mux.HandleFunc("/api/sections/", projectHandler.SectionsSub)
	mux.HandleFunc("/api/categories", projectHandler.CategoriesRoot)
	mux.HandleFunc("/api/categories/", projectHandler.CategoriesSub)
	mux.HandleFunc("/api/search", projectHandler.Search)
	mux.HandleFunc("/api/view-mode", projectHandler.ViewMode)

	rewardHandler := reward.NewHandler(opts.Store)
	mux.HandleFunc("/api/rewards", rewardHandler.Rewards)
	mux.HandleFunc("/api/rewards/manual", rewardHandler.Manual)
	mux.HandleFunc("/api/activity", rewardHandler.Activity)
	mux.HandleFunc("/api/activity/", rewardHandler.ActivitySub)
	mux.HandleFunc("/api/theme/toggle", rewardHandler.ToggleTheme)

	boardHandler := board.NewHandler(opts.Store)
	mux.HandleFunc("/api/board/state", boardHandler.GetState)
	mux.HandleFunc("/api/board/cmd", boardHandler.Command)

	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, opts.Store.Snapshot())
	})

	mux.HandleFunc("/api/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"notifications": opts.Feed.Recent()})
	})

	sh := &syncHandler{syncer: opts.Syncer, timeout: opts.SyncTimeout}
	mux.HandleFunc("/api/sync", sh.push)
	mux.HandleFunc("/api/sync/pull", sh.pull)
	mux.HandleFunc("/api/sync/status", sh.status)

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if len(opts.Store.Projects()) == 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "store not loaded",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskreward",
			"version": opts.Store.Version(),
			"time":    opts.Now().UTC().Format(time.RFC3339),
		})
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithBodyLimit(opts.BodyLimit),
	), nil
}

type syncHandler struct {
	syncer  *cloudsync.Syncer
	timeout time.Duration
}

// POST /api/sync
func (h *syncHandler) push(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.syncer == nil {
		writeSyncErr(w, cloudsync.ErrDisabled)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.syncer.SyncNow(ctx); err != nil {
		writeSyncErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.syncer.Status())
}

// POST /api/sync/pull
func (h *syncHandler) pull(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.syncer == nil {
		writeSyncErr(w, cloudsync.ErrDisabled)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.syncer.LoadInitial(ctx); err != nil {
		writeSyncErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.syncer.Status())
}

// GET /api/sync/status
func (h *syncHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.syncer == nil {
		writeJSON(w, http.StatusOK, cloudsync.Status{})
		return
	}
	writeJSON(w, http.StatusOK, h.syncer.Status())
}

func writeSyncErr(w http.ResponseWriter, err error) {
	var apiErr *cloudsync.APIError
	switch {
	case errors.Is(err, cloudsync.ErrDisabled):
		writeErr(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, cloudsync.ErrNotLoggedIn):
		writeErr(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &apiErr) && apiErr.Unauthorized():
		writeErr(w, http.StatusUnauthorized, apiErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeErr(w, http.StatusGatewayTimeout, "sync timed out")
	default:
		writeErr(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
