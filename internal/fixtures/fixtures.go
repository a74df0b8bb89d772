// Package fixtures builds synthetic camera input for tests.
package fixtures

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerboard/internal/capture"
)

// Gray is the shade of frames made by Frame.
const Gray = 40

// Frame returns a uniform gray BGR frame. The caller owns the result.
func Frame(width, height int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(Gray, Gray, Gray, 0), height, width, gocv.MatTypeCV8UC3)
}

// Sequence returns n frames whose shade steps by 40 per frame, so
// consecutive frames differ everywhere. They are closed when t ends.
func Sequence(t testing.TB, width, height, n int) []*gocv.Mat {
	t.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		v := float64((i * 40) % 256)
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, m := range frames {
			m.Close()
		}
	})
	return frames
}

// Camera returns an open mock camera that loops over a single gray frame
// of the given size.
func Camera(t testing.TB, width, height int) *capture.MockCamera {
	t.Helper()
	frame := Frame(width, height)
	t.Cleanup(func() { frame.Close() })

	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("failed to open mock camera: %v", err)
	}
	return cam
}
