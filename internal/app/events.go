package app

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/ayusman/fingerboard/internal/canvas"
)

// Tool is the active drawing tool.
type Tool string

// Tools. Shape tools share their names with canvas.ShapeKind.
const (
	ToolFreehand Tool = "freehand"
	ToolLine     Tool = Tool(canvas.ShapeLine)
	ToolRect     Tool = Tool(canvas.ShapeRect)
	ToolCircle   Tool = Tool(canvas.ShapeCircle)
)

// ParseTool converts a tool name.
func ParseTool(s string) (Tool, error) {
	t := Tool(s)
	if t == ToolFreehand || canvas.ShapeKind(t).Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// EventType identifies a control surface event.
type EventType int

// Control surface events.
const (
	EventToggleDraw EventType = iota
	EventClear
	EventQuit
	EventSetColor
	EventSetWidth
	EventSetTool
	EventGestureStart
	EventGestureMove
	EventGestureEnd
	EventSave
)

var eventNames = map[EventType]string{
	EventToggleDraw:   "toggle_draw",
	EventClear:        "clear",
	EventQuit:         "quit",
	EventSetColor:     "set_pen_color",
	EventSetWidth:     "set_pen_width",
	EventSetTool:      "set_shape_mode",
	EventGestureStart: "gesture_start",
	EventGestureMove:  "gesture_move",
	EventGestureEnd:   "gesture_end",
	EventSave:         "save",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is a user request from any control surface. Only the field that
// matches Type is meaningful.
type Event struct {
	Type  EventType
	Color color.RGBA
	Width int
	Tool  Tool
	Point image.Point
}

// ToggleDraw flips draw mode.
func ToggleDraw() Event { return Event{Type: EventToggleDraw} }

// Clear wipes the canvas.
func Clear() Event { return Event{Type: EventClear} }

// Quit ends the loop after the current tick.
func Quit() Event { return Event{Type: EventQuit} }

// Save writes the canvas to disk.
func Save() Event { return Event{Type: EventSave} }

// SetPenColor changes the pen color.
func SetPenColor(c color.RGBA) Event { return Event{Type: EventSetColor, Color: c} }

// SetPenWidth changes the pen width (clamped to 1..20).
func SetPenWidth(w int) Event { return Event{Type: EventSetWidth, Width: w} }

// SetTool switches between freehand and the shape tools.
func SetTool(t Tool) Event { return Event{Type: EventSetTool, Tool: t} }

// GestureStart begins a shape drag at p (canvas pixels).
func GestureStart(p image.Point) Event { return Event{Type: EventGestureStart, Point: p} }

// GestureMove updates a shape drag.
func GestureMove(p image.Point) Event { return Event{Type: EventGestureMove, Point: p} }

// GestureEnd commits a shape drag.
func GestureEnd() Event { return Event{Type: EventGestureEnd} }

// DefaultQueueSize bounds pending events between ticks.
const DefaultQueueSize = 256

// Queue carries events from control surfaces on any goroutine to the tick
// loop, which drains it once per tick.
type Queue struct {
	ch chan Event
}

// NewQueue creates a queue holding up to size pending events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Event, size)}
}

// Push enqueues e without blocking. It returns false and drops the event
// when the queue is full.
func (q *Queue) Push(e Event) bool {
	select {
	case q.ch <- e:
		return true
	default:
		log.Printf("Event queue full, dropping %s", e.Type)
		return false
	}
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// drain hands every event pending right now to fn, in order.
func (q *Queue) drain(fn func(Event)) {
	for n := len(q.ch); n > 0; n-- {
		select {
		case e := <-q.ch:
			fn(e)
		default:
			return
		}
	}
}
