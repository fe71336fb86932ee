package reward

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskreward/internal/activity"
	"taskreward/internal/model"
)

// Service is the slice of the entity store the reward endpoints need.
type Service interface {
	Rewards() model.EarnedRewards
	SetReward(kind model.RewardType, value int) (model.EarnedRewards, error)
	PatchRewards(p model.RewardsPatch) model.EarnedRewards
	AddManualReward(delta model.EarnedRewards) (model.EarnedRewards, error)
	Activity() activity.Log
	Undo(logID string) bool
	ToggleTheme() bool
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
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
	dec := json.NewDecoder(r.Body)
	return dec.Decode(out)
}

func writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrProtected):
		writeErr(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

// /api/rewards
func (h *Handler) Rewards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, h.svc.Rewards())
		return

	case http.MethodPut:
		// Either {"rewardType":"minutes","value":40} for one kind,
		// or {"points":..,"minutes":..,"rubles":..} for the whole ledger.
		var in struct {
			RewardType *string `json:"rewardType"`
			Value      *int    `json:"value"`
			Points     *int    `json:"points"`
			Minutes    *int    `json:"minutes"`
			Rubles     *int    `json:"rubles"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}

		if in.RewardType != nil {
			if in.Value == nil {
				writeErr(w, 400, `missing field "value"`)
				return
			}
			kind, ok := model.ParseRewardType(*in.RewardType)
			if !ok {
				writeErr(w, 400, "unknown reward type: "+*in.RewardType)
				return
			}
			next, err := h.svc.SetReward(kind, *in.Value)
			if err != nil {
				writeStoreErr(w, err)
				return
			}
			writeJSON(w, 200, next)
			return
		}

		writeJSON(w, 200, h.svc.PatchRewards(model.RewardsPatch{
			Points:  in.Points,
			Minutes: in.Minutes,
			Rubles:  in.Rubles,
		}))
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// POST /api/rewards/manual
func (h *Handler) Manual(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in model.EarnedRewards
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	next, err := h.svc.AddManualReward(in)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, 200, next)
}

// GET /api/activity
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	log := h.svc.Activity()
	if log == nil {
		log = activity.Log{}
	}
	writeJSON(w, 200, log)
}

// POST /api/activity/{id}/undo
func (h *Handler) ActivitySub(w http.ResponseWriter, r *http.Request) {
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/activity/"), "/")
	parts := strings.Split(tail, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "undo" {
		writeErr(w, 404, "not found")
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	undone := h.svc.Undo(parts[0])
	writeJSON(w, 200, map[string]any{
		"ok":      true,
		"undone":  undone,
		"rewards": h.svc.Rewards(),
	})
}

// POST /api/theme/toggle
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, map[string]any{"darkMode": h.svc.ToggleTheme()})
}
