package cloud

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"taskreward/internal/auth"
	"taskreward/internal/httpmw"
	"taskreward/internal/logx"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

type DataHandler struct {
	repo   *Repo
	logger *log.Logger
}

func NewDataHandler(repo *Repo, logger *log.Logger) *DataHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &DataHandler{repo: repo, logger: logger}
}

// ServeHTTP expects RequireBearer to have put the user in the context.
func (h *DataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch r.Method {
	case http.MethodGet:
		data, err := h.repo.Data(r.Context(), u.ID)
		if err != nil {
			logx.Error(h.logger, "data_load_failed", err, logx.Fields{"user_id": u.ID})
			writeErr(w, http.StatusInternalServerError, "could not load data")
			return
		}
		writeJSON(w, http.StatusOK, data)

	case http.MethodPost:
		var in SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := h.repo.Sync(r.Context(), u.ID, in); err != nil {
			logx.Error(h.logger, "data_sync_failed", err, logx.Fields{"user_id": u.ID})
			writeErr(w, http.StatusInternalServerError, "could not sync data")
			return
		}
		logx.Info(h.logger, "data_synced", logx.Fields{
			"user_id": u.ID,
			"tasks":   len(in.Tasks),
		})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Data synced successfully"})

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type RouterOptions struct {
	Auth        *auth.Service
	Repo        *Repo
	Logger      *log.Logger
	CORSOrigins []string
}

// NewRouter mounts POST /api/auth and GET|POST /api/data.
func NewRouter(opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Handle("/api/auth", auth.NewHandler(opts.Auth)).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/api/data", opts.Auth.RequireBearer(NewDataHandler(opts.Repo, opts.Logger))).
		Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Authorization"}),
		handlers.MaxAge(86400),
	)

	return httpmw.Chain(cors(r),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithBodyLimit(httpmw.DefaultBodyLimit),
	)
}
