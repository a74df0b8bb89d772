// Package canvas implements the persistent drawing surface that fingertip
// strokes and dragged shapes accumulate on, and its composition with the
// live camera frame.
package canvas

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var background = gocv.NewScalar(0, 0, 0, 0)

// Canvas is a BGR accumulator image the same size as the camera frame.
// Black is background; anything else is ink.
//
// A Canvas is owned by a single goroutine (the tick loop) and is not safe
// for concurrent use.
type Canvas struct {
	mat   gocv.Mat
	ready bool
	style Style

	// cursor is the last fingertip seen while drawing; armed is false when
	// the next sample must start a new stroke instead of extending one.
	cursor image.Point
	armed  bool

	pending *pendingShape
	journal []Op
}

type pendingShape struct {
	anchor   image.Point
	kind     ShapeKind
	snapshot gocv.Mat
	preview  *Op
}

// New creates an empty canvas. The pixel grid is allocated by the first
// BeginTick, once the frame size is known.
func New(style Style) *Canvas {
	style.Width = ClampWidth(style.Width)
	return &Canvas{
		mat:   gocv.NewMat(),
		style: style,
	}
}

// Close releases the pixel buffers.
func (c *Canvas) Close() error {
	c.dropPending()
	c.ready = false
	return c.mat.Close()
}

// BeginTick makes sure the canvas matches size before any draw call of this
// tick. A size change resets the canvas to background and forgets the
// cursor, any pending shape and the journal.
func (c *Canvas) BeginTick(size image.Point) {
	if c.ready && c.mat.Cols() == size.X && c.mat.Rows() == size.Y {
		return
	}

	c.mat.Close()
	c.mat = gocv.NewMatWithSizeFromScalar(background, size.Y, size.X, gocv.MatTypeCV8UC3)
	c.ready = true
	c.armed = false
	c.journal = nil
	c.dropPending()
}

// Size returns the canvas dimensions, or the zero point before the first tick.
func (c *Canvas) Size() image.Point {
	if !c.ready {
		return image.Point{}
	}
	return image.Point{X: c.mat.Cols(), Y: c.mat.Rows()}
}

// Style returns the current pen.
func (c *Canvas) Style() Style {
	return c.style
}

// SetStyle changes the pen for future operations. Existing ink is untouched.
func (c *Canvas) SetStyle(s Style) {
	s.Width = ClampWidth(s.Width)
	s.Color.A = 255
	c.style = s
}

// SetColor changes the pen color.
func (c *Canvas) SetColor(col color.RGBA) {
	c.SetStyle(Style{Color: col, Width: c.style.Width})
}

// SetWidth changes the pen width, clamped to [MinWidth, MaxWidth].
func (c *Canvas) SetWidth(w int) {
	c.SetStyle(Style{Color: c.style.Color, Width: w})
}

// UpdateFreehand feeds one fingertip sample.
//
// With drawing off the cursor is disarmed. With drawing on, an unarmed
// cursor is armed at tip without drawing; an armed one is joined to tip
// with a segment in the current style.
func (c *Canvas) UpdateFreehand(tip image.Point, drawing bool) {
	if !drawing {
		c.armed = false
		return
	}
	if !c.armed {
		c.cursor = tip
		c.armed = true
		return
	}
	if c.ready {
		op := Op{Kind: OpSegment, From: c.cursor, To: tip, Style: c.style}
		c.draw(&c.mat, op)
		c.journal = append(c.journal, op)
	}
	c.cursor = tip
}

// Disarm forgets the cursor so the next freehand sample starts a new stroke.
func (c *Canvas) Disarm() {
	c.armed = false
}

// Cursor returns the armed cursor position, if any.
func (c *Canvas) Cursor() (image.Point, bool) {
	return c.cursor, c.armed
}

// BeginShape starts a drag gesture at anchor. The current pixels are
// snapshotted so previews never accumulate. A gesture still in progress is
// ended first, committing its last preview.
func (c *Canvas) BeginShape(anchor image.Point, kind ShapeKind) {
	if !c.ready || !kind.Valid() {
		return
	}
	c.EndShape()
	c.pending = &pendingShape{
		anchor:   anchor,
		kind:     kind,
		snapshot: c.mat.Clone(),
	}
}

// PreviewShape restores the gesture-start snapshot and draws exactly one
// shape from the anchor to current.
func (c *Canvas) PreviewShape(current image.Point) {
	p := c.pending
	if p == nil || !c.ready {
		return
	}
	p.snapshot.CopyTo(&c.mat)
	op := shapeOp(p.kind, p.anchor, current, c.style)
	c.draw(&c.mat, op)
	p.preview = &op
}

// EndShape finishes the gesture. Whatever the last preview drew stays on
// the canvas and is journaled; a gesture that never moved commits nothing.
func (c *Canvas) EndShape() {
	p := c.pending
	if p == nil {
		return
	}
	if p.preview != nil {
		c.journal = append(c.journal, *p.preview)
	}
	c.dropPending()
}

// ShapeInProgress reports whether a drag gesture is active.
func (c *Canvas) ShapeInProgress() bool {
	return c.pending != nil
}

// Clear resets every pixel to background and empties the journal. The pen
// style is kept. A gesture in progress continues from a blank board.
func (c *Canvas) Clear() {
	c.journal = nil
	if !c.ready {
		return
	}
	c.mat.SetTo(background)
	if c.pending != nil {
		c.pending.snapshot.SetTo(background)
		c.pending.preview = nil
	}
}

// Export returns a copy of the pixel grid. The caller owns the result.
func (c *Canvas) Export() gocv.Mat {
	return c.mat.Clone()
}

// Mat exposes the live pixel grid for display. It must not be retained
// beyond the current tick or modified.
func (c *Canvas) Mat() *gocv.Mat {
	return &c.mat
}

// Journal returns the operations committed since the last clear.
func (c *Canvas) Journal() []Op {
	out := make([]Op, len(c.journal))
	copy(out, c.journal)
	return out
}

// Ops returns the number of committed operations.
func (c *Canvas) Ops() int {
	return len(c.journal)
}

// Segments returns the number of committed freehand segments.
func (c *Canvas) Segments() int {
	n := 0
	for _, op := range c.journal {
		if op.Kind == OpSegment {
			n++
		}
	}
	return n
}

func (c *Canvas) draw(dst *gocv.Mat, op Op) {
	col, w := op.Style.Color, op.Style.Width
	switch op.Kind {
	case OpSegment, OpLine:
		gocv.Line(dst, op.From, op.To, col, w)
	case OpRect:
		gocv.Rectangle(dst, image.Rectangle{Min: op.From, Max: op.To}.Canon(), col, w)
	case OpCircle:
		gocv.Circle(dst, op.From, op.Radius, col, w)
	}
}

func (c *Canvas) dropPending() {
	if c.pending != nil {
		c.pending.snapshot.Close()
		c.pending = nil
	}
}
