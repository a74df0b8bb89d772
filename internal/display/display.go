// Package display shows a whiteboard session in two OpenCV windows and maps
// their key presses to session events.
package display

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/fingerboard/internal/app"
)

// Window titles.
const (
	MainWindow   = "AI Whiteboard"
	CanvasWindow = "Canvas"
)

// Windows is an app.Sink and app.Poller backed by highgui windows. It must
// be used from the goroutine that runs the session ticks.
type Windows struct {
	main   *gocv.Window
	canvas *gocv.Window
}

// New opens the composite and raw canvas windows.
func New() *Windows {
	return &Windows{
		main:   gocv.NewWindow(MainWindow),
		canvas: gocv.NewWindow(CanvasWindow),
	}
}

// Show draws the composite and the raw canvas.
func (w *Windows) Show(v app.View) {
	if v.Composite != nil && !v.Composite.Empty() {
		w.main.IMShow(*v.Composite)
	}
	if v.Canvas != nil && !v.Canvas.Empty() {
		w.canvas.IMShow(*v.Canvas)
	}
}

// Poll waits briefly for a key press and queues the matching event.
func (w *Windows) Poll(q *app.Queue) {
	if e, ok := KeyEvent(w.main.WaitKey(1)); ok {
		q.Push(e)
	}
}

// Close destroys both windows.
func (w *Windows) Close() error {
	if err := w.canvas.Close(); err != nil {
		return err
	}
	return w.main.Close()
}

// KeyEvent maps a highgui key code to a session event: q quits, d toggles
// drawing, c clears, s saves.
func KeyEvent(key int) (app.Event, bool) {
	if key < 0 {
		return app.Event{}, false
	}
	switch key & 0xff {
	case 'q', 'Q':
		return app.Quit(), true
	case 'd', 'D':
		return app.ToggleDraw(), true
	case 'c', 'C':
		return app.Clear(), true
	case 's', 'S':
		return app.Save(), true
	}
	return app.Event{}, false
}
