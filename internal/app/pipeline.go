package app

import (
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerboard/internal/canvas"
	"github.com/ayusman/fingerboard/internal/detector"
)

// Tick runs one frame of the session:
//
//  1. apply queued events
//  2. read and preprocess a frame
//  3. resize the canvas to the frame if needed
//  4. in freehand mode, track the index fingertip and extend the stroke
//  5. composite the canvas onto the frame and hand it to every sink
//
// It returns ErrQuit once a Quit event was applied, and a wrapped read
// error when the frame source fails and the session does not skip reads.
func (a *App) Tick() error {
	a.queue.drain(a.apply)
	if a.quit {
		return ErrQuit
	}

	raw, err := a.camera.ReadFrame()
	if err != nil {
		if a.config.SkipOnReadError {
			log.Printf("Error reading frame: %v", err)
			return nil
		}
		return fmt.Errorf("read frame: %w", err)
	}
	frame := a.config.Preprocess.Apply(*raw)
	raw.Close()
	defer frame.Close()

	a.ticks++
	a.canvas.BeginTick(image.Pt(frame.Cols(), frame.Rows()))

	if a.tool == ToolFreehand {
		a.track(&frame)
	}

	out := a.canvas.Composite(frame, a.config.Policy)
	defer out.Close()

	view := View{Composite: &out, Canvas: a.canvas.Mat(), Status: a.publishStatus()}
	for _, s := range a.sinks {
		s.Show(view)
		if p, ok := s.(Poller); ok {
			p.Poll(a.queue)
		}
	}
	return nil
}

// track detects the hand on frame, feeds the fingertip to the canvas and
// draws the hand overlay onto frame.
func (a *App) track(frame *gocv.Mat) {
	if a.motion != nil {
		if moved, _ := a.motion.Check(*frame); !moved {
			return
		}
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		a.hand = false
		return
	}
	if len(hands) == 0 {
		a.hand = false
		return
	}

	hand := &hands[0]
	a.hand = true
	a.tip = hand.Fingertip(frame.Cols(), frame.Rows())
	a.canvas.UpdateFreehand(a.tip, a.drawing)
	detector.DrawHand(frame, hand)
}

// apply mutates session state for one event.
func (a *App) apply(e Event) {
	switch e.Type {
	case EventToggleDraw:
		a.drawing = !a.drawing
		a.canvas.Disarm()
		log.Printf("Draw mode: %v", a.drawing)

	case EventClear:
		a.canvas.Clear()

	case EventQuit:
		a.quit = true

	case EventSetColor:
		a.canvas.SetColor(e.Color)
		a.persistStyle()

	case EventSetWidth:
		a.canvas.SetWidth(e.Width)
		a.persistStyle()

	case EventSetTool:
		if _, err := ParseTool(string(e.Tool)); err != nil {
			log.Printf("Ignoring tool change: %v", err)
			return
		}
		if a.canvas.ShapeInProgress() {
			a.canvas.EndShape()
		}
		a.tool = e.Tool
		a.canvas.Disarm()

	case EventGestureStart:
		if a.tool == ToolFreehand {
			return
		}
		a.canvas.BeginShape(e.Point, canvas.ShapeKind(a.tool))

	case EventGestureMove:
		if a.tool == ToolFreehand {
			return
		}
		a.canvas.PreviewShape(e.Point)

	case EventGestureEnd:
		if a.tool == ToolFreehand {
			return
		}
		a.canvas.EndShape()

	case EventSave:
		if _, err := a.Save(); err != nil {
			log.Printf("Error saving canvas: %v", err)
		}
	}
}
