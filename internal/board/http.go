package board

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Service is what the board endpoints need from the entity store.
type Service interface {
	DragStart(id string) State
	DragOver(activeID, overID string) State
	DragEnd(activeID, overID string) Outcome
	DragCancel()
	DragState() State
	BoardView(projectID string) (View, bool)
	Version() uint64
}

// Handler serves the board state and command endpoints.
type Handler struct {
	svc      Service
	scroller *Scroller
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc, scroller: &Scroller{}}
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

// StateResponse is the response for GET /api/board/state.
type StateResponse struct {
	Board   View   `json:"board"`
	Drag    State  `json:"drag"`
	Version string `json:"version"`
}

// GET /api/board/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}

	view, ok := h.svc.BoardView(r.URL.Query().Get("project"))
	if !ok {
		writeErr(w, 404, "project not found")
		return
	}

	writeJSON(w, 200, StateResponse{
		Board:   view,
		Drag:    h.svc.DragState(),
		Version: fmt.Sprintf("%d", h.svc.Version()),
	})
}

// CommandRequest is the request body for POST /api/board/cmd.
type CommandRequest struct {
	Cmd  string         `json:"cmd"`
	Args map[string]any `json:"args"`
}

// CommandResponse is the response for POST /api/board/cmd.
type CommandResponse struct {
	OK         bool   `json:"ok"`
	NewVersion string `json:"newVersion"`
	Patch      any    `json:"patch,omitempty"`
	Error      string `json:"error,omitempty"`
}

// POST /api/board/cmd
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}

	var req CommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, 400, "invalid json")
		return
	}
	if req.Args == nil {
		req.Args = map[string]any{}
	}

	patch, err := h.executeCommand(req.Cmd, req.Args)
	if err != nil {
		writeJSON(w, 400, CommandResponse{
			OK:    false,
			Error: err.Error(),
		})
		return
	}

	writeJSON(w, 200, CommandResponse{
		OK:         true,
		NewVersion: fmt.Sprintf("%d", h.svc.Version()),
		Patch:      patch,
	})
}

// executeCommand dispatches the command to the appropriate handler.
func (h *Handler) executeCommand(cmd string, args map[string]any) (any, error) {
	switch cmd {
	case "drag.start":
		return h.cmdDragStart(args)
	case "drag.over":
		return h.cmdDragOver(args)
	case "drag.end":
		return h.cmdDragEnd(args)
	case "drag.cancel":
		h.svc.DragCancel()
		return map[string]any{"drag": h.svc.DragState()}, nil
	case "scroll.press":
		return h.cmdScrollPress(args)
	case "scroll.drag":
		return h.cmdScrollDrag(args)
	case "scroll.release":
		h.scroller.Release()
		return map[string]any{"dragging": false}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd)
	}
}

// Helper to get string from args
func getString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required field: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s must be a string", key)
	}
	return s, nil
}

// Helper to get optional string.
func getStringOr(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s must be a string", key)
	}
	return s, nil
}

// Helper to get int from args (JSON numbers are float64)
func getInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required field: %s", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %s must be a number", key)
	}
	return int(f), nil
}

// Helper to get optional int with default
func getIntOr(args map[string]any, key string, def int) int {
	v, ok := args[key]
	if !ok {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return int(f)
}

// drag.start { id }
func (h *Handler) cmdDragStart(args map[string]any) (any, error) {
	id, err := getString(args, "id")
	if err != nil {
		return nil, err
	}
	return map[string]any{"drag": h.svc.DragStart(id)}, nil
}

// drag.over { activeId, overId? }
func (h *Handler) cmdDragOver(args map[string]any) (any, error) {
	activeID, err := getString(args, "activeId")
	if err != nil {
		return nil, err
	}
	overID, err := getStringOr(args, "overId")
	if err != nil {
		return nil, err
	}
	return map[string]any{"drag": h.svc.DragOver(activeID, overID)}, nil
}

// drag.end { activeId, overId? }
func (h *Handler) cmdDragEnd(args map[string]any) (any, error) {
	activeID, err := getString(args, "activeId")
	if err != nil {
		return nil, err
	}
	overID, err := getStringOr(args, "overId")
	if err != nil {
		return nil, err
	}
	return map[string]any{"outcome": h.svc.DragEnd(activeID, overID)}, nil
}

// scroll.press { x, offsetLeft?, scrollLeft?, path? }
func (h *Handler) cmdScrollPress(args map[string]any) (any, error) {
	x, err := getInt(args, "x")
	if err != nil {
		return nil, err
	}
	path, err := getPath(args, "path")
	if err != nil {
		return nil, err
	}
	started := h.scroller.Press(path, x, getIntOr(args, "offsetLeft", 0), getIntOr(args, "scrollLeft", 0))
	return map[string]any{"dragging": started}, nil
}

// scroll.drag { x, offsetLeft? }
func (h *Handler) cmdScrollDrag(args map[string]any) (any, error) {
	x, err := getInt(args, "x")
	if err != nil {
		return nil, err
	}
	left, ok := h.scroller.Drag(x, getIntOr(args, "offsetLeft", 0))
	if !ok {
		return map[string]any{"dragging": false}, nil
	}
	return map[string]any{"dragging": true, "scrollLeft": left}, nil
}

// getPath re-decodes the loosely typed args value into elements.
func getPath(args map[string]any, key string) ([]Element, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out []Element
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("field %s must be a list of elements", key)
	}
	return out, nil
}
