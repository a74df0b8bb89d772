// Package gui is the fyne front end of the whiteboard: a live video widget
// that turns mouse drags into shape gestures, and a control bar for pen and
// tool settings.
package gui

import (
	"image"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/ayusman/fingerboard/internal/app"
)

// VideoSize is the minimum size of the video widget.
var VideoSize = fyne.NewSize(640, 480)

// Board shows the composited video and reports drags on it as gesture
// events in frame pixel coordinates.
type Board struct {
	widget.BaseWidget
	queue *app.Queue
	image *fynecanvas.Image

	mu        sync.Mutex
	frameSize image.Point
	dragging  bool
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)

// NewBoard creates a video widget that pushes gestures into q.
func NewBoard(q *app.Queue) *Board {
	img := fynecanvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = fynecanvas.ImageFillStretch
	img.SetMinSize(VideoSize)

	b := &Board{queue: q, image: img}
	b.ExtendBaseWidget(b)
	return b
}

// CreateRenderer implements fyne.Widget.
func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.image)
}

// Show implements app.Sink. The frame is copied before it leaves the tick
// goroutine.
func (b *Board) Show(v app.View) {
	if v.Composite == nil || v.Composite.Empty() {
		return
	}
	img, err := v.Composite.ToImage()
	if err != nil {
		log.Printf("Error converting frame: %v", err)
		return
	}

	b.mu.Lock()
	b.frameSize = image.Pt(v.Composite.Cols(), v.Composite.Rows())
	b.mu.Unlock()

	fyne.Do(func() {
		b.image.Image = img
		b.image.Refresh()
	})
}

// MouseDown starts a gesture with the primary button.
func (b *Board) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.mu.Lock()
	b.dragging = true
	p := b.toFrame(e.Position)
	b.mu.Unlock()
	b.queue.Push(app.GestureStart(p))
}

// Dragged previews the shape under the pointer.
func (b *Board) Dragged(e *fyne.DragEvent) {
	b.mu.Lock()
	dragging := b.dragging
	p := b.toFrame(e.Position)
	b.mu.Unlock()
	if dragging {
		b.queue.Push(app.GestureMove(p))
	}
}

// MouseUp commits the gesture.
func (b *Board) MouseUp(e *desktop.MouseEvent) {
	b.endGesture()
}

// DragEnd commits the gesture when the release is delivered as a drag end.
func (b *Board) DragEnd() {
	b.endGesture()
}

func (b *Board) endGesture() {
	b.mu.Lock()
	dragging := b.dragging
	b.dragging = false
	b.mu.Unlock()
	if dragging {
		b.queue.Push(app.GestureEnd())
	}
}

// toFrame must be called with mu held.
func (b *Board) toFrame(pos fyne.Position) image.Point {
	return MapToFrame(pos, b.Size(), b.frameSize)
}

// MapToFrame converts a position inside a widget of the given size to pixel
// coordinates of a frame stretched over it. Positions outside the widget
// are clamped to the frame.
func MapToFrame(pos fyne.Position, size fyne.Size, frame image.Point) image.Point {
	if size.Width <= 0 || size.Height <= 0 || frame.X <= 0 || frame.Y <= 0 {
		return image.Point{}
	}
	x := int(pos.X * float32(frame.X) / size.Width)
	y := int(pos.Y * float32(frame.Y) / size.Height)
	return image.Pt(clamp(x, 0, frame.X-1), clamp(y, 0, frame.Y-1))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
