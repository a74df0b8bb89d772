package capture

import (
	"image"

	"gocv.io/x/gocv"
)

// Preprocess describes how a raw camera frame is prepared before detection.
type Preprocess struct {
	// Mirror flips the frame horizontally so the view behaves like a mirror.
	Mirror bool
	// Size, when non-zero, resizes the frame to exactly Size.X x Size.Y.
	Size image.Point
}

// Apply returns the prepared frame. The input is left untouched and the
// caller owns the result.
func (p Preprocess) Apply(src gocv.Mat) gocv.Mat {
	out := src.Clone()

	if p.Mirror {
		flipped := gocv.NewMat()
		gocv.Flip(out, &flipped, 1)
		out.Close()
		out = flipped
	}

	if p.Size.X > 0 && p.Size.Y > 0 && (out.Cols() != p.Size.X || out.Rows() != p.Size.Y) {
		resized := gocv.NewMat()
		gocv.Resize(out, &resized, p.Size, 0, 0, gocv.InterpolationLinear)
		out.Close()
		out = resized
	}

	return out
}
