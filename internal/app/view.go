package app

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/fingerboard/internal/canvas"
)

// Status is the session summary published after every tick.
type Status struct {
	Drawing     bool   `json:"drawing"`
	Tool        Tool   `json:"tool"`
	Color       string `json:"color"`
	Width       int    `json:"width"`
	Hand        bool   `json:"hand"`
	FingertipX  int    `json:"fingertip_x"`
	FingertipY  int    `json:"fingertip_y"`
	FrameWidth  int    `json:"frame_width"`
	FrameHeight int    `json:"frame_height"`
	Segments    int    `json:"segments"`
	Ops         int    `json:"ops"`
	Tick        uint64 `json:"tick"`
}

// View is what a tick hands to its sinks. The Mats are only valid for the
// duration of Show; sinks that keep data past the call must copy it.
type View struct {
	Composite *gocv.Mat
	Canvas    *gocv.Mat
	Status    Status
}

// Sink receives the composited view of every tick.
type Sink interface {
	Show(v View)
}

// Poller is implemented by sinks that also collect input on the tick
// goroutine, such as highgui windows.
type Poller interface {
	Poll(q *Queue)
}

func (a *App) snapshotStatus() Status {
	style := a.canvas.Style()
	size := a.canvas.Size()
	return Status{
		Drawing:     a.drawing,
		Tool:        a.tool,
		Color:       canvas.Hex(style.Color),
		Width:       style.Width,
		Hand:        a.hand,
		FingertipX:  a.tip.X,
		FingertipY:  a.tip.Y,
		FrameWidth:  size.X,
		FrameHeight: size.Y,
		Segments:    a.canvas.Segments(),
		Ops:         a.canvas.Ops(),
		Tick:        a.ticks,
	}
}

func (a *App) publishStatus() Status {
	st := a.snapshotStatus()
	a.mu.Lock()
	a.status = st
	a.mu.Unlock()
	return st
}
