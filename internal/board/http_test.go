package board

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/model"
)

type engineService struct {
	board   *memBoard
	engine  *Engine
	version uint64
}

func (s *engineService) DragStart(id string) State { return s.engine.Start(s.board, id) }
func (s *engineService) DragOver(a, o string) State { return s.engine.Over(s.board, a, o) }
func (s *engineService) DragCancel()                { s.engine.Cancel() }
func (s *engineService) DragState() State           { return s.engine.State() }
func (s *engineService) Version() uint64            { return s.version }

func (s *engineService) DragEnd(a, o string) Outcome {
	out := s.engine.End(s.board, a, o)
	if out != OutcomeNone {
		s.version++
	}
	return out
}

func (s *engineService) BoardView(projectID string) (View, bool) {
	if projectID != "" && projectID != s.board.project {
		return View{}, false
	}
	p := model.Project{ID: s.board.project, Sections: s.board.sections}
	return BuildView(p, s.board.tasks), true
}

func newHandlerForTests() (*Handler, *engineService) {
	svc := &engineService{board: newBoard(), engine: NewEngine()}
	return NewHandler(svc), svc
}

func command(t *testing.T, h *Handler, cmd string, args map[string]any) (int, CommandResponse, map[string]any) {
	t.Helper()
	b, err := json.Marshal(CommandRequest{Cmd: cmd, Args: args})
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.Command(rr, httptest.NewRequest(http.MethodPost, "/api/board/cmd", bytes.NewReader(b)))

	var resp CommandResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	patch, _ := resp.Patch.(map[string]any)
	return rr.Code, resp, patch
}

func TestGetState(t *testing.T) {
	h, _ := newHandlerForTests()

	rr := httptest.NewRecorder()
	h.GetState(rr, httptest.NewRequest(http.MethodGet, "/api/board/state", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var st StateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, "p1", st.Board.ProjectID)
	require.Len(t, st.Board.Columns, 4)
	assert.Equal(t, "0", st.Version)

	rr = httptest.NewRecorder()
	h.GetState(rr, httptest.NewRequest(http.MethodGet, "/api/board/state?project=zzz", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.GetState(rr, httptest.NewRequest(http.MethodPost, "/api/board/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCommand_DragReorder(t *testing.T) {
	h, svc := newHandlerForTests()

	code, resp, patch := command(t, h, "drag.start", map[string]any{"id": "a"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.OK)
	assert.Contains(t, patch, "drag")
	assert.True(t, svc.DragState().Dragging())

	code, _, _ = command(t, h, "drag.over", map[string]any{"activeId": "a", "overId": "b"})
	require.Equal(t, http.StatusOK, code)

	code, resp, patch = command(t, h, "drag.end", map[string]any{"activeId": "a", "overId": "b"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(OutcomeTaskReorder), patch["outcome"])
	assert.Equal(t, "1", resp.NewVersion)
	assert.Equal(t, []string{"b", "a"}, svc.board.columnIDs("s1"))
	assert.False(t, svc.DragState().Dragging())
}

func TestCommand_Errors(t *testing.T) {
	h, _ := newHandlerForTests()

	code, resp, _ := command(t, h, "drag.start", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "missing required field: id", resp.Error)

	code, resp, _ = command(t, h, "drag.start", map[string]any{"id": 7})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "field id must be a string", resp.Error)

	code, resp, _ = command(t, h, "board.explode", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "unknown command: board.explode", resp.Error)

	rr := httptest.NewRecorder()
	h.Command(rr, httptest.NewRequest(http.MethodPost, "/api/board/cmd", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCommand_Scroll(t *testing.T) {
	h, _ := newHandlerForTests()

	_, _, patch := command(t, h, "scroll.press", map[string]any{
		"x":    10,
		"path": []map[string]any{{"tag": "button"}},
	})
	assert.Equal(t, false, patch["dragging"])

	_, _, patch = command(t, h, "scroll.press", map[string]any{"x": 300, "offsetLeft": 100, "scrollLeft": 50})
	assert.Equal(t, true, patch["dragging"])

	_, _, patch = command(t, h, "scroll.drag", map[string]any{"x": 260, "offsetLeft": 100})
	assert.Equal(t, float64(130), patch["scrollLeft"])

	command(t, h, "scroll.release", nil)
	_, _, patch = command(t, h, "scroll.drag", map[string]any{"x": 200})
	assert.Equal(t, false, patch["dragging"])
}
