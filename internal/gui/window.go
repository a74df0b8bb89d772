package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"github.com/ayusman/fingerboard/internal/app"
	"github.com/ayusman/fingerboard/internal/canvas"
)

// Title is the main window title.
const Title = "AI Whiteboard"

// Window is the GUI variant's main window. It is an app.Sink.
type Window struct {
	win      fyne.Window
	board    *Board
	controls *Controls

	mu   sync.Mutex
	last app.Status
}

// NewWindow builds the main window of a. Input from every control goes to q.
func NewWindow(a fyne.App, q *app.Queue, style canvas.Style) *Window {
	win := a.NewWindow(Title)
	board := NewBoard(q)
	controls := NewControls(q, win, style)

	win.SetContent(container.NewBorder(nil, controls.Object(), nil, nil, board))
	win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if e, ok := KeyEvent(ev.Name); ok {
			q.Push(e)
		}
	})

	return &Window{win: win, board: board, controls: controls}
}

// Show implements app.Sink.
func (w *Window) Show(v app.View) {
	w.board.Show(v)

	st := v.Status
	w.mu.Lock()
	changed := st.Drawing != w.last.Drawing || st.Tool != w.last.Tool ||
		st.Color != w.last.Color || st.Width != w.last.Width
	w.last = st
	w.mu.Unlock()

	if changed {
		fyne.Do(func() { w.controls.update(st) })
	}
}

// Board returns the video widget.
func (w *Window) Board() *Board {
	return w.board
}

// Controls returns the control bar.
func (w *Window) Controls() *Controls {
	return w.controls
}

// Window returns the underlying fyne window.
func (w *Window) Window() fyne.Window {
	return w.win
}

// ShowAndRun shows the window and runs the fyne event loop until it closes.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}
