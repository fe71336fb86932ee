// Package project serves projects, their sections and task categories.
package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskreward/internal/model"
	"taskreward/internal/store"
)

// Service is the slice of the entity store these endpoints need.
type Service interface {
	Projects() []model.Project
	Project(id string) (model.Project, bool)
	CreateProject(d store.ProjectDraft) (model.Project, error)
	UpdateProject(id string, p store.ProjectPatch) (model.Project, bool, error)
	DeleteProject(id string) (bool, error)
	SelectProject(id string) bool
	SetTaskViewMode(mode string) error
	ActiveTaskCount(projectID string) int
	Search(query string) store.SearchResult

	CreateSection(projectID, name string) (model.Section, bool, error)
	RenameSection(sectionID, name string) (model.Section, bool, error)
	DeleteSection(projectID, sectionID string) bool
	MoveSection(sectionID, targetProjectID string) (model.Section, bool)

	Categories() []model.Category
	Category(id string) (model.Category, bool)
	CreateCategory(d store.CategoryDraft) (model.Category, error)
	UpdateCategory(id string, p store.CategoryPatch) (model.Category, bool, error)
	DeleteCategory(id string) bool
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
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

// splitTail returns the path segments after prefix.
func splitTail(path, prefix string) []string {
	tail := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if tail == "" {
		return nil
	}
	return strings.Split(tail, "/")
}

// Summary is a project with its sidebar counter.
type Summary struct {
	model.Project
	ActiveTasks int `json:"activeTasks"`
}

// /api/projects
func (h *Handler) ProjectsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ps := h.svc.Projects()
		out := make([]Summary, 0, len(ps))
		for _, p := range ps {
			out = append(out, Summary{Project: p, ActiveTasks: h.svc.ActiveTaskCount(p.ID)})
		}
		writeJSON(w, 200, out)
		return

	case http.MethodPost:
		var in store.ProjectDraft
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		p, err := h.svc.CreateProject(in)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeJSON(w, 201, p)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/projects/{id}
func (h *Handler) ProjectsSub(w http.ResponseWriter, r *http.Request) {
	parts := splitTail(r.URL.Path, "/api/projects/")
	if len(parts) == 0 {
		writeErr(w, 404, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			p, ok := h.svc.Project(id)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			writeJSON(w, 200, Summary{Project: p, ActiveTasks: h.svc.ActiveTaskCount(p.ID)})
			return

		case http.MethodPatch:
			var in store.ProjectPatch
			if err := decodeJSON(r, &in); err != nil {
				writeErr(w, 400, "bad json")
				return
			}
			p, ok, err := h.svc.UpdateProject(id, in)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			if err != nil {
				writeStoreErr(w, err)
				return
			}
			writeJSON(w, 200, p)
			return

		case http.MethodDelete:
			ok, err := h.svc.DeleteProject(id)
			if err != nil {
				writeStoreErr(w, err)
				return
			}
			if !ok {
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
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	switch parts[1] {
	// /api/projects/{id}/select
	case "select":
		if !h.svc.SelectProject(id) {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, map[string]any{"selectedProjectId": id})
		return

	// /api/projects/{id}/sections
	case "sections":
		var in struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		sec, ok, err := h.svc.CreateSection(id, in.Name)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 201, sec)
		return
	}

	writeErr(w, 404, "not found")
}

// /api/sections/{id}
func (h *Handler) SectionsSub(w http.ResponseWriter, r *http.Request) {
	parts := splitTail(r.URL.Path, "/api/sections/")
	if len(parts) == 0 || len(parts) > 2 {
		writeErr(w, 404, "not found")
		return
	}
	id := parts[0]

	// /api/sections/{id}/move
	if len(parts) == 2 {
		if parts[1] != "move" {
			writeErr(w, 404, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeErr(w, 405, "method not allowed")
			return
		}
		var in struct {
			ProjectID string `json:"projectId"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		sec, ok := h.svc.MoveSection(id, strings.TrimSpace(in.ProjectID))
		if !ok {
			writeErr(w, 404, "section or target project not found")
			return
		}
		writeJSON(w, 200, sec)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var in struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		sec, ok, err := h.svc.RenameSection(id, in.Name)
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeJSON(w, 200, sec)
		return

	case http.MethodDelete:
		if !h.svc.DeleteSection(r.URL.Query().Get("project"), id) {
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

// /api/categories
func (h *Handler) CategoriesRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, h.svc.Categories())
		return

	case http.MethodPost:
		var in store.CategoryDraft
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		c, err := h.svc.CreateCategory(in)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeJSON(w, 201, c)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/categories/{id}
func (h *Handler) CategoriesSub(w http.ResponseWriter, r *http.Request) {
	parts := splitTail(r.URL.Path, "/api/categories/")
	if len(parts) != 1 {
		writeErr(w, 404, "not found")
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodGet:
		c, ok := h.svc.Category(id)
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, c)
		return

	case http.MethodPatch:
		var in store.CategoryPatch
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		c, ok, err := h.svc.UpdateCategory(id, in)
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeJSON(w, 200, c)
		return

	case http.MethodDelete:
		if !h.svc.DeleteCategory(id) {
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

// /api/search?q=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, h.svc.Search(r.URL.Query().Get("q")))
}

// /api/view-mode
func (h *Handler) ViewMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in struct {
		Mode string `json:"mode"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	if err := h.svc.SetTaskViewMode(in.Mode); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"taskViewMode": in.Mode})
}
