package canvas

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Policy selects how ink is combined with the live frame.
type Policy int

const (
	// MaskPolicy shows canvas pixels whose brightness exceeds MaskThreshold
	// fully opaque and the frame everywhere else.
	MaskPolicy Policy = iota

	// BlendPolicy averages frame and canvas with BlendWeight wherever the
	// canvas holds ink; background pixels show the frame unchanged.
	BlendPolicy
)

// Composite tuning.
const (
	MaskThreshold = 20
	BlendWeight   = 0.5
)

func (p Policy) String() string {
	switch p {
	case MaskPolicy:
		return "mask"
	case BlendPolicy:
		return "blend"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Composite returns a new image combining frame with the canvas under
// policy. The caller owns the result. If the canvas has not been sized
// for this frame yet, a plain copy of frame is returned.
func (c *Canvas) Composite(frame gocv.Mat, policy Policy) gocv.Mat {
	out := frame.Clone()
	if !c.ready || frame.Cols() != c.mat.Cols() || frame.Rows() != c.mat.Rows() {
		return out
	}

	mask := gocv.NewMat()
	defer mask.Close()

	switch policy {
	case BlendPolicy:
		inkMask(c.mat, &mask)

		blended := gocv.NewMat()
		defer blended.Close()
		gocv.AddWeighted(frame, 1-BlendWeight, c.mat, BlendWeight, 0, &blended)
		blended.CopyToWithMask(&out, mask)
	default:
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(c.mat, &gray, gocv.ColorBGRToGray)
		gocv.Threshold(gray, &mask, MaskThreshold, 255, gocv.ThresholdBinary)
		c.mat.CopyToWithMask(&out, mask)
	}

	return out
}

// inkMask sets dst to 255 wherever src differs from background in any channel.
func inkMask(src gocv.Mat, dst *gocv.Mat) {
	bg := gocv.NewMat()
	defer bg.Close()
	gocv.InRangeWithScalar(src, background, background, &bg)
	gocv.BitwiseNot(bg, dst)
}
