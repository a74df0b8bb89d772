package detector

import (
	"image/color"

	"gocv.io/x/gocv"
)

var (
	boneColor   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	jointColor  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	cursorColor = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// DrawHand overlays the hand skeleton on frame and rings the index fingertip.
func DrawHand(frame *gocv.Mat, hand *HandLandmarks) {
	if frame == nil || frame.Empty() || hand == nil {
		return
	}
	w, h := frame.Cols(), frame.Rows()

	for _, c := range Connections {
		gocv.Line(frame, hand.Pixel(c[0], w, h), hand.Pixel(c[1], w, h), boneColor, 2)
	}
	for i := 0; i < NumLandmarks; i++ {
		gocv.Circle(frame, hand.Pixel(i, w, h), 3, jointColor, -1)
	}
	gocv.Circle(frame, hand.Fingertip(w, h), 8, cursorColor, 2)
}
