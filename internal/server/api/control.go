package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/fingerboard/internal/app"
	"github.com/ayusman/fingerboard/internal/canvas"
)

// Control actions accepted by POST /api/control. Tool names are also
// accepted as actions.
const (
	ActionToggleDraw = "toggle_draw"
	ActionClear      = "clear"
	ActionSave       = "save"
	ActionQuit       = "quit"
	ActionWidth      = "width"
	ActionColor      = "color"
)

// ControlHandler turns remote control requests into session events.
type ControlHandler struct {
	queue *app.Queue
}

// NewControlHandler creates a handler that pushes into q.
func NewControlHandler(q *app.Queue) *ControlHandler {
	return &ControlHandler{queue: q}
}

type controlRequest struct {
	Action string `json:"action"`
	Width  int    `json:"width"`
	Color  string `json:"color"`
}

type controlResponse struct {
	Queued string `json:"queued"`
}

// ServeHTTP handles POST /api/control.
func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	event, err := toEvent(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.queue.Push(event) {
		writeError(w, http.StatusServiceUnavailable, "event queue full")
		return
	}
	writeJSON(w, http.StatusAccepted, controlResponse{Queued: req.Action})
}

func toEvent(req controlRequest) (app.Event, error) {
	switch req.Action {
	case ActionToggleDraw:
		return app.ToggleDraw(), nil
	case ActionClear:
		return app.Clear(), nil
	case ActionSave:
		return app.Save(), nil
	case ActionQuit:
		return app.Quit(), nil
	case ActionWidth:
		if req.Width == 0 {
			return app.Event{}, errors.New("width is required")
		}
		return app.SetPenWidth(req.Width), nil
	case ActionColor:
		c, err := canvas.ParseHex(req.Color)
		if err != nil {
			return app.Event{}, errors.New("color must be #rrggbb")
		}
		return app.SetPenColor(c), nil
	case "":
		return app.Event{}, errors.New("action is required")
	}

	tool, err := app.ParseTool(req.Action)
	if err != nil {
		return app.Event{}, fmt.Errorf("unknown action %q", req.Action)
	}
	return app.SetTool(tool), nil
}
