package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"taskreward/internal/model"
	"taskreward/internal/store"
)

// Service is the slice of the entity store the task endpoints need.
type Service interface {
	Tasks(f store.TaskFilter) []model.Task
	Task(id string) (model.Task, bool)
	CreateTask(d store.TaskDraft) (model.Task, error)
	UpdateTask(id string, p store.TaskPatch) (model.Task, bool, error)
	CompleteTask(id string) (model.Task, bool)
	UncompleteTask(id string) (model.Task, bool)
	DeleteTask(id string) bool
}

type Handler struct {
	svc Service
	now func() time.Time
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
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
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

func writeICS(w http.ResponseWriter, name, body string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// parseSchedule accepts a plain date or an RFC 3339 timestamp.
func parseSchedule(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, errors.New("scheduledDate must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}

// ListFilter reads the task list query: project, section ("none" for tasks
// without one), status and q.
func ListFilter(r *http.Request) (store.TaskFilter, error) {
	q := r.URL.Query()
	f := store.TaskFilter{
		ProjectID: strings.TrimSpace(q.Get("project")),
		Status:    strings.ToLower(strings.TrimSpace(q.Get("status"))),
		Query:     q.Get("q"),
	}
	switch f.Status {
	case "", store.StatusAll, store.StatusActive, store.StatusCompleted:
	default:
		return store.TaskFilter{}, errors.New("status must be all, active or completed")
	}
	if q.Has("section") {
		sec := strings.TrimSpace(q.Get("section"))
		if sec == "none" {
			sec = ""
		}
		f.Section = &sec
	}
	return f, nil
}

type createRequest struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Category          string         `json:"category"`
	RewardType        string         `json:"rewardType"`
	RewardAmount      int            `json:"rewardAmount"`
	RewardDescription string         `json:"rewardDescription"`
	ScheduledDate     string         `json:"scheduledDate"`
	ProjectID         string         `json:"projectId"`
	SectionID         string         `json:"sectionId"`
	Priority          model.Priority `json:"priority"`
}

// patchRequest mirrors store.TaskPatch with a string date; an empty
// scheduledDate clears the schedule.
type patchRequest struct {
	Title             *string         `json:"title"`
	Description       *string         `json:"description"`
	Category          *string         `json:"category"`
	RewardType        *string         `json:"rewardType"`
	RewardAmount      *int            `json:"rewardAmount"`
	RewardDescription *string         `json:"rewardDescription"`
	ScheduledDate     *string         `json:"scheduledDate"`
	ProjectID         *string         `json:"projectId"`
	SectionID         *string         `json:"sectionId"`
	Priority          *model.Priority `json:"priority"`
}

func (in patchRequest) toPatch() (store.TaskPatch, error) {
	p := store.TaskPatch{
		Title:             in.Title,
		Description:       in.Description,
		Category:          in.Category,
		RewardAmount:      in.RewardAmount,
		RewardDescription: in.RewardDescription,
		ProjectID:         in.ProjectID,
		SectionID:         in.SectionID,
		Priority:          in.Priority,
	}
	if in.RewardType != nil {
		k := model.RewardType(*in.RewardType)
		p.RewardType = &k
	}
	if in.ScheduledDate != nil {
		at, err := parseSchedule(*in.ScheduledDate)
		if err != nil {
			return store.TaskPatch{}, err
		}
		if at == nil {
			p.ClearSchedule = true
		}
		p.ScheduledDate = at
	}
	return p, nil
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f, err := ListFilter(r)
		if err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		writeJSON(w, 200, h.svc.Tasks(f))
		return

	case http.MethodPost:
		var in createRequest
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		at, err := parseSchedule(in.ScheduledDate)
		if err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		t, err := h.svc.CreateTask(store.TaskDraft{
			Title:             in.Title,
			Description:       in.Description,
			Category:          in.Category,
			RewardType:        model.RewardType(in.RewardType),
			RewardAmount:      in.RewardAmount,
			RewardDescription: in.RewardDescription,
			ScheduledDate:     at,
			ProjectID:         in.ProjectID,
			SectionID:         in.SectionID,
			Priority:          in.Priority,
		})
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeJSON(w, 201, t)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/tasks/{id}
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}

	parts := strings.Split(tail, "/")
	id := parts[0]

	// /api/tasks/calendar.ics
	if len(parts) == 1 && id == "calendar.ics" {
		if r.Method != http.MethodGet {
			writeErr(w, 405, "method not allowed")
			return
		}
		writeICS(w, "tasks.ics", BuildCalendarICS(h.svc.Tasks(store.TaskFilter{}), h.now()))
		return
	}

	// /api/tasks/{id}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			t, ok := h.svc.Task(id)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			writeJSON(w, 200, t)
			return

		case http.MethodPatch:
			var in patchRequest
			if err := decodeJSON(r, &in); err != nil {
				writeErr(w, 400, "bad json")
				return
			}
			p, err := in.toPatch()
			if err != nil {
				writeErr(w, 400, err.Error())
				return
			}
			t, ok, err := h.svc.UpdateTask(id, p)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			if err != nil {
				writeStoreErr(w, err)
				return
			}
			writeJSON(w, 200, t)
			return

		case http.MethodDelete:
			if !h.svc.DeleteTask(id) {
				writeErr(w, 404, "not found")
				return
			}
			writeJSON(w, 200, map[string]any{"ok": true})
			return

		default:
			writeErr(w, 405, "method not allowed")
			return
		}
	}

	if len(parts) != 2 {
		writeErr(w, 404, "not found")
		return
	}

	switch parts[1] {
	// /api/tasks/{id}/complete, /api/tasks/{id}/uncomplete
	case "complete", "uncomplete":
		if r.Method != http.MethodPost {
			writeErr(w, 405, "method not allowed")
			return
		}
		if _, exists := h.svc.Task(id); !exists {
			writeErr(w, 404, "not found")
			return
		}
		var (
			t  model.Task
			ok bool
		)
		if parts[1] == "complete" {
			t, ok = h.svc.CompleteTask(id)
		} else {
			t, ok = h.svc.UncompleteTask(id)
		}
		if !ok {
			// Already in the requested state; report it without changes.
			t, _ = h.svc.Task(id)
		}
		writeJSON(w, 200, map[string]any{"task": t, "changed": ok})
		return

	// /api/tasks/{id}/calendar.ics
	case "calendar.ics":
		if r.Method != http.MethodGet {
			writeErr(w, 405, "method not allowed")
			return
		}
		t, ok := h.svc.Task(id)
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		body, err := BuildTaskCalendarICS(t, h.now())
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeICS(w, t.ID+".ics", body)
		return
	}

	writeErr(w, 404, "not found")
}
