package project

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/model"
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

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestProjects_CreateListAndCount(t *testing.T) {
	s := store.New(store.Options{})
	h := NewHandler(s)

	rr := call(h.ProjectsRoot, jsonReq(http.MethodPost, "/api/projects", map[string]any{"name": "Home"}))
	require.Equal(t, http.StatusCreated, rr.Code)
	p := decode[model.Project](t, rr)
	assert.Equal(t, "Folder", p.Icon)

	_, err := s.CreateTask(store.TaskDraft{Title: "Dishes", ProjectID: p.ID})
	require.NoError(t, err)

	rr = call(h.ProjectsRoot, jsonReq(http.MethodGet, "/api/projects", nil))
	list := decode[[]Summary](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, model.DefaultProjectID, list[0].ID)
	assert.Equal(t, 1, list[1].ActiveTasks)

	rr = call(h.ProjectsRoot, jsonReq(http.MethodPost, "/api/projects", map[string]any{"name": ""}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjects_DeleteDefaultIsForbidden(t *testing.T) {
	h := NewHandler(store.New(store.Options{}))

	rr := call(h.ProjectsSub, jsonReq(http.MethodDelete, "/api/projects/"+model.DefaultProjectID, nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = call(h.ProjectsSub, jsonReq(http.MethodDelete, "/api/projects/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProjects_SelectAndSections(t *testing.T) {
	s := store.New(store.Options{})
	h := NewHandler(s)
	p, err := s.CreateProject(store.ProjectDraft{Name: "Work"})
	require.NoError(t, err)

	rr := call(h.ProjectsSub, jsonReq(http.MethodPost, "/api/projects/"+p.ID+"/select", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, p.ID, s.Prefs().SelectedProjectID)

	rr = call(h.ProjectsSub, jsonReq(http.MethodPost, "/api/projects/"+p.ID+"/sections", map[string]any{"name": "Backlog"}))
	require.Equal(t, http.StatusCreated, rr.Code)
	sec := decode[model.Section](t, rr)
	assert.Equal(t, 1, sec.Order)
	assert.Equal(t, p.ID, sec.ProjectID)

	rr = call(h.ProjectsSub, jsonReq(http.MethodPost, "/api/projects/missing/sections", map[string]any{"name": "x"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = call(h.SectionsSub, jsonReq(http.MethodPatch, "/api/sections/"+sec.ID, map[string]any{"name": "Later"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Later", decode[model.Section](t, rr).Name)

	rr = call(h.SectionsSub, jsonReq(http.MethodPost, "/api/sections/"+sec.ID+"/move", map[string]any{"projectId": model.DefaultProjectID}))
	require.Equal(t, http.StatusOK, rr.Code)
	moved, _ := s.Project(model.DefaultProjectID)
	require.Len(t, moved.Sections, 1)

	rr = call(h.SectionsSub, jsonReq(http.MethodDelete, "/api/sections/"+sec.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = call(h.SectionsSub, jsonReq(http.MethodDelete, "/api/sections/"+sec.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCategories_CRUD(t *testing.T) {
	s := store.New(store.Options{})
	h := NewHandler(s)

	rr := call(h.CategoriesRoot, jsonReq(http.MethodPost, "/api/categories", map[string]any{"name": "Health", "color": "bg-green-500"}))
	require.Equal(t, http.StatusCreated, rr.Code)
	c := decode[model.Category](t, rr)

	rr = call(h.CategoriesSub, jsonReq(http.MethodPatch, "/api/categories/"+c.ID, map[string]any{"icon": "Heart"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Heart", decode[model.Category](t, rr).Icon)

	rr = call(h.CategoriesRoot, jsonReq(http.MethodGet, "/api/categories", nil))
	assert.Len(t, decode[[]model.Category](t, rr), 1)

	rr = call(h.CategoriesSub, jsonReq(http.MethodDelete, "/api/categories/"+c.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = call(h.CategoriesSub, jsonReq(http.MethodGet, "/api/categories/"+c.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearchAndViewMode(t *testing.T) {
	s := store.New(store.Options{})
	h := NewHandler(s)
	_, err := s.CreateTask(store.TaskDraft{Title: "Water plants"})
	require.NoError(t, err)

	rr := call(h.Search, jsonReq(http.MethodGet, "/api/search?q=PLANT", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[store.SearchResult](t, rr)
	assert.Len(t, res.Tasks, 1)

	rr = call(h.ViewMode, jsonReq(http.MethodPut, "/api/view-mode", map[string]any{"mode": "grid"}))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, store.ViewGrid, s.Prefs().TaskViewMode)

	rr = call(h.ViewMode, jsonReq(http.MethodPut, "/api/view-mode", map[string]any{"mode": "kanban"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
