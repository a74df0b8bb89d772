package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gate tuning.
const (
	// BlurSize is the Gaussian kernel used to suppress sensor noise.
	BlurSize = 21
	// PixelDelta is the per-pixel intensity change counted as motion.
	PixelDelta = 25
)

// MotionGate reports whether a frame differs enough from the previous one
// to be worth running landmark detection on. The first frame always
// passes, since there is nothing to compare it with.
type MotionGate struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	closed    bool
	mu        sync.Mutex
}

// NewMotionGate creates a gate that opens when more than threshold percent
// of the pixels change between consecutive frames.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Check compares frame with the previous frame. It returns whether the
// gate is open and the percentage of changed pixels.
func (g *MotionGate) Check(frame gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || frame.Empty() {
		return false, 0
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	grayBlur(frame, &blurred)

	if !g.primed || g.prev.Cols() != blurred.Cols() || g.prev.Rows() != blurred.Rows() {
		blurred.CopyTo(&g.prev)
		g.primed = true
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prev, &diff)
	gocv.Threshold(diff, &diff, PixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100.0
	blurred.CopyTo(&g.prev)

	return changed > g.threshold, changed
}

// Reset forgets the previous frame.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.prev.Close()
	g.prev = gocv.NewMat()
	g.primed = false
}

// Close releases the stored frame. A closed gate stays shut.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.prev.Close()
	g.primed = false
	g.closed = true
}

func grayBlur(src gocv.Mat, dst *gocv.Mat) {
	gray := gocv.NewMat()
	defer gray.Close()
	if src.Channels() > 1 {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	} else {
		src.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, dst, image.Point{X: BlurSize, Y: BlurSize}, 0, 0, gocv.BorderDefault)
}
