package canvas

import (
	"image"
	"math"
)

// ShapeKind identifies a drag-defined shape.
type ShapeKind string

// Supported shapes.
const (
	ShapeLine   ShapeKind = "line"
	ShapeRect   ShapeKind = "rect"
	ShapeCircle ShapeKind = "circle"
)

// Valid reports whether k is a known shape.
func (k ShapeKind) Valid() bool {
	switch k {
	case ShapeLine, ShapeRect, ShapeCircle:
		return true
	}
	return false
}

// OpKind identifies a committed drawing operation.
type OpKind string

// Operation kinds recorded in the journal. Freehand segments are kept apart
// from line shapes so the two can be counted separately.
const (
	OpSegment OpKind = "segment"
	OpLine    OpKind = "line"
	OpRect    OpKind = "rect"
	OpCircle  OpKind = "circle"
)

// Op is one committed drawing operation with the style it was drawn in.
// For circles From is the center and Radius is set.
type Op struct {
	Kind   OpKind      `json:"kind"`
	From   image.Point `json:"from"`
	To     image.Point `json:"to"`
	Radius int         `json:"radius,omitempty"`
	Style  Style       `json:"style"`
}

func shapeOp(kind ShapeKind, anchor, current image.Point, style Style) Op {
	op := Op{From: anchor, To: current, Style: style}
	switch kind {
	case ShapeRect:
		op.Kind = OpRect
	case ShapeCircle:
		op.Kind = OpCircle
		op.Radius = Radius(anchor, current)
	default:
		op.Kind = OpLine
	}
	return op
}

// Radius is the circle radius for a drag from anchor to current: the
// Euclidean distance, truncated to whole pixels.
func Radius(anchor, current image.Point) int {
	dx := float64(current.X - anchor.X)
	dy := float64(current.Y - anchor.Y)
	return int(math.Hypot(dx, dy))
}
