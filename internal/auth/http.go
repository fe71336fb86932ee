package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskreward/internal/logx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

type actionRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// ServeHTTP handles POST /api/auth with an "action" of register, login,
// verify or logout.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var in actionRequest
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch in.Action {
	case "register":
		h.register(w, r, in)
	case "login":
		h.login(w, r, in)
	case "verify":
		h.verify(w, r)
	case "logout":
		h.logout(w, r)
	default:
		writeErr(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, in actionRequest) {
	u, token, err := h.service.Register(r.Context(), in.Email, in.Password, in.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			writeErr(w, http.StatusBadRequest, "Email, password and username are required")
		case errors.Is(err, ErrPasswordTooShort):
			writeErr(w, http.StatusBadRequest, "Password must be at least 6 characters")
		case errors.Is(err, ErrInvalidEmail):
			writeErr(w, http.StatusBadRequest, "Invalid email")
		case errors.Is(err, ErrUserExists):
			writeErr(w, http.StatusBadRequest, "User already exists")
		default:
			logx.Error(h.service.logger, "register_failed", err, nil)
			writeErr(w, http.StatusInternalServerError, "Could not register")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "token": token})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, in actionRequest) {
	u, token, err := h.service.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			writeErr(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, ErrInvalidCredential):
			writeErr(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			logx.Error(h.service.logger, "login_failed", err, nil)
			writeErr(w, http.StatusInternalServerError, "Could not log in")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "token": token})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	u, _, err := h.service.Verify(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			writeErr(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenRevoked):
			writeErr(w, http.StatusUnauthorized, "Invalid token")
		default:
			writeErr(w, http.StatusInternalServerError, "Could not verify token")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)
	if token == "" {
		writeErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenRevoked) {
			writeErr(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		logx.Error(h.service.logger, "logout_failed", err, nil)
		writeErr(w, http.StatusInternalServerError, "Could not log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
