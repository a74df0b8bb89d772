package gui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/ayusman/fingerboard/internal/app"
	"github.com/ayusman/fingerboard/internal/canvas"
)

// Controls is the button and slider bar under the video.
type Controls struct {
	queue  *app.Queue
	window fyne.Window

	Clear     *widget.Button
	Save      *widget.Button
	PickColor *widget.Button
	Width     *widget.Slider
	Draw      *widget.Button
	Line      *widget.Button
	Rect      *widget.Button
	Circle    *widget.Button
	Freehand  *widget.Button
	Status    *widget.Label
}

// NewControls builds the control bar. Every control only queues events;
// the session decides what they do.
func NewControls(q *app.Queue, win fyne.Window, style canvas.Style) *Controls {
	c := &Controls{queue: q, window: win}

	c.Clear = widget.NewButton("Clear", func() { q.Push(app.Clear()) })
	c.Save = widget.NewButton("Save", func() { q.Push(app.Save()) })
	c.PickColor = widget.NewButton("Pick Color", c.showColorPicker)

	c.Width = widget.NewSlider(canvas.MinWidth, canvas.MaxWidth)
	c.Width.Step = 1
	c.Width.SetValue(float64(style.Width))
	c.Width.OnChanged = func(v float64) { q.Push(app.SetPenWidth(int(v))) }
	// A focused slider swallows typed keys, so hand them back to the window.
	c.Width.OnChangeEnded = func(float64) { win.Canvas().Unfocus() }

	c.Draw = widget.NewButton(drawLabel(false), func() { q.Push(app.ToggleDraw()) })
	c.Line = widget.NewButton("Line", func() { q.Push(app.SetTool(app.ToolLine)) })
	c.Rect = widget.NewButton("Rectangle", func() { q.Push(app.SetTool(app.ToolRect)) })
	c.Circle = widget.NewButton("Circle", func() { q.Push(app.SetTool(app.ToolCircle)) })
	c.Freehand = widget.NewButton("Freehand", func() { q.Push(app.SetTool(app.ToolFreehand)) })

	c.Status = widget.NewLabel(statusLine(app.Status{Tool: app.ToolFreehand, Color: canvas.Hex(style.Color), Width: style.Width}))
	return c
}

// Object lays the controls out in two rows.
func (c *Controls) Object() fyne.CanvasObject {
	slider := container.New(layout.NewGridWrapLayout(fyne.NewSize(160, 35)), c.Width)
	return container.NewVBox(
		container.NewHBox(
			c.Draw,
			c.Clear,
			c.Save,
			c.PickColor,
			widget.NewLabel("Pen Width:"),
			slider,
		),
		container.NewHBox(
			widget.NewLabel("Tool:"),
			c.Freehand,
			c.Line,
			c.Rect,
			c.Circle,
			layout.NewSpacer(),
			c.Status,
		),
	)
}

func (c *Controls) showColorPicker() {
	picker := dialog.NewColorPicker("Pick Color", "Choose the pen color", func(col color.Color) {
		c.queue.Push(app.SetPenColor(canvas.RGBA(col)))
	}, c.window)
	picker.Advanced = true
	picker.Show()
}

// update reflects the session status. Must run on the fyne goroutine.
func (c *Controls) update(st app.Status) {
	c.Draw.SetText(drawLabel(st.Drawing))
	c.Status.SetText(statusLine(st))
}

// KeyEvent maps window key presses to events: D toggles drawing, C clears.
func KeyEvent(name fyne.KeyName) (app.Event, bool) {
	switch name {
	case fyne.KeyD:
		return app.ToggleDraw(), true
	case fyne.KeyC:
		return app.Clear(), true
	}
	return app.Event{}, false
}

func drawLabel(drawing bool) string {
	if drawing {
		return "Draw: On"
	}
	return "Draw: Off"
}

func statusLine(st app.Status) string {
	return fmt.Sprintf("%s | %s | width %d", st.Tool, st.Color, st.Width)
}
