package canvas

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

var red = color.RGBA{R: 255, A: 255}

func newTestCanvas(t *testing.T, w, h int, style Style) *Canvas {
	t.Helper()
	c := New(style)
	t.Cleanup(func() { c.Close() })
	c.BeginTick(image.Pt(w, h))
	return c
}

func newFrame(t *testing.T, w, h int) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 60, 30, 0), h, w, gocv.MatTypeCV8UC3)
	// Some structure so identity checks are not trivially satisfied.
	gocv.Rectangle(&frame, image.Rect(w/4, h/4, w/2, h/2), color.RGBA{R: 200, G: 10, B: 40, A: 255}, -1)
	gocv.Line(&frame, image.Pt(0, h-1), image.Pt(w-1, 0), color.RGBA{G: 255, A: 255}, 3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func inked(m gocv.Mat, p image.Point) bool {
	v := m.GetVecbAt(p.Y, p.X)
	return v[0] != 0 || v[1] != 0 || v[2] != 0
}

func inkCount(m gocv.Mat) int {
	mask := gocv.NewMat()
	defer mask.Close()
	inkMask(m, &mask)
	return gocv.CountNonZero(mask)
}

func TestCanvas_FreehandSegmentCount(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		want    int
	}{
		{name: "single sample only arms", samples: 1, want: 0},
		{name: "two samples", samples: 2, want: 1},
		{name: "ten samples", samples: 10, want: 9},
		{name: "no samples", samples: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(t, 640, 480, DefaultStyle())
			for i := 0; i < tt.samples; i++ {
				c.UpdateFreehand(image.Pt(100+i*10, 100+i*5), true)
			}
			if got := c.Segments(); got != tt.want {
				t.Errorf("Segments() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCanvas_FirstSampleDoesNotDraw(t *testing.T) {
	c := newTestCanvas(t, 64, 48, DefaultStyle())

	c.UpdateFreehand(image.Pt(30, 20), true)

	if n := inkCount(*c.Mat()); n != 0 {
		t.Errorf("arming the cursor drew %d pixels, want 0", n)
	}
	if inked(*c.Mat(), image.Pt(0, 0)) {
		t.Error("origin must never be connected to the first sample")
	}
	if p, ok := c.Cursor(); !ok || p != image.Pt(30, 20) {
		t.Errorf("Cursor() = %v, %v; want (30,20), true", p, ok)
	}
}

func TestCanvas_ToggleRearmsCursor(t *testing.T) {
	c := newTestCanvas(t, 200, 200, DefaultStyle())

	c.UpdateFreehand(image.Pt(10, 10), true)
	c.UpdateFreehand(image.Pt(50, 10), true)
	c.UpdateFreehand(image.Pt(90, 90), false)
	c.UpdateFreehand(image.Pt(10, 150), true)
	c.UpdateFreehand(image.Pt(50, 150), true)

	journal := c.Journal()
	if len(journal) != 2 {
		t.Fatalf("journal has %d ops, want 2", len(journal))
	}
	last := journal[1]
	if last.From != image.Pt(10, 150) || last.To != image.Pt(50, 150) {
		t.Errorf("segment after re-entry = %v-%v, want (10,150)-(50,150)", last.From, last.To)
	}
	// Midpoint of the would-be bridge from (50,10) to (10,150).
	if inked(*c.Mat(), image.Pt(30, 80)) {
		t.Error("pre-toggle position was connected to the re-entry position")
	}
}

func TestCanvas_DisarmStartsNewStroke(t *testing.T) {
	c := newTestCanvas(t, 100, 100, DefaultStyle())

	c.UpdateFreehand(image.Pt(10, 10), true)
	c.UpdateFreehand(image.Pt(20, 10), true)
	c.Disarm()
	c.UpdateFreehand(image.Pt(80, 80), true)

	if got := c.Segments(); got != 1 {
		t.Errorf("Segments() = %d, want 1", got)
	}
}

func TestCanvas_Scenario640x480(t *testing.T) {
	c := newTestCanvas(t, 640, 480, DefaultStyle())

	c.UpdateFreehand(image.Pt(100, 100), true)
	c.UpdateFreehand(image.Pt(120, 100), true)
	c.SetStyle(Style{Color: red, Width: 3})
	c.UpdateFreehand(image.Pt(120, 130), true)

	want := []Op{
		{Kind: OpSegment, From: image.Pt(100, 100), To: image.Pt(120, 100), Style: DefaultStyle()},
		{Kind: OpSegment, From: image.Pt(120, 100), To: image.Pt(120, 130), Style: Style{Color: red, Width: 3}},
	}
	got := c.Journal()
	if len(got) != len(want) {
		t.Fatalf("journal has %d ops, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// First segment keeps the blue it was drawn with.
	if v := c.Mat().GetVecbAt(100, 110); v[0] != 255 || v[2] != 0 {
		t.Errorf("pixel on first segment = %v, want blue", v)
	}
	if v := c.Mat().GetVecbAt(115, 120); v[2] != 255 || v[0] != 0 {
		t.Errorf("pixel on second segment = %v, want red", v)
	}
}

func TestCanvas_ClearThenCompositeIsIdentity(t *testing.T) {
	for _, policy := range []Policy{MaskPolicy, BlendPolicy} {
		t.Run(policy.String(), func(t *testing.T) {
			frame := newFrame(t, 160, 120)
			c := newTestCanvas(t, 160, 120, Style{Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Width: 8})

			c.UpdateFreehand(image.Pt(10, 10), true)
			c.UpdateFreehand(image.Pt(150, 110), true)
			c.Clear()

			out := c.Composite(frame, policy)
			defer out.Close()

			if !bytes.Equal(out.ToBytes(), frame.ToBytes()) {
				t.Error("composite of a cleared canvas differs from the frame")
			}
		})
	}
}

func TestCanvas_CompositeUnsizedCanvas(t *testing.T) {
	frame := newFrame(t, 32, 24)
	c := New(DefaultStyle())
	defer c.Close()

	out := c.Composite(frame, MaskPolicy)
	defer out.Close()

	if !bytes.Equal(out.ToBytes(), frame.ToBytes()) {
		t.Error("composite before the first tick should copy the frame")
	}
}

func TestCanvas_CompositePolicies(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 50, 50, gocv.MatTypeCV8UC3)
	defer frame.Close()

	c := newTestCanvas(t, 50, 50, Style{Color: color.RGBA{B: 255, A: 255}, Width: 5})
	c.UpdateFreehand(image.Pt(10, 25), true)
	c.UpdateFreehand(image.Pt(40, 25), true)

	t.Run("mask shows ink opaque", func(t *testing.T) {
		out := c.Composite(frame, MaskPolicy)
		defer out.Close()

		if v := out.GetVecbAt(25, 25); v[0] != 255 || v[1] != 0 || v[2] != 0 {
			t.Errorf("inked pixel = %v, want pure canvas color", v)
		}
		if v := out.GetVecbAt(5, 5); v[0] != 100 || v[1] != 100 || v[2] != 100 {
			t.Errorf("background pixel = %v, want frame color", v)
		}
	})

	t.Run("blend averages ink with frame", func(t *testing.T) {
		out := c.Composite(frame, BlendPolicy)
		defer out.Close()

		v := out.GetVecbAt(25, 25)
		if v[0] < 177 || v[0] > 178 || v[1] != 50 || v[2] != 50 {
			t.Errorf("inked pixel = %v, want about [178 50 50]", v)
		}
		if v := out.GetVecbAt(5, 5); v[0] != 100 || v[1] != 100 || v[2] != 100 {
			t.Errorf("background pixel = %v, want frame color", v)
		}
	})

	t.Run("mask hides ink below threshold", func(t *testing.T) {
		dim := newTestCanvas(t, 50, 50, Style{Color: color.RGBA{R: 10, G: 10, B: 10, A: 255}, Width: 5})
		dim.UpdateFreehand(image.Pt(10, 25), true)
		dim.UpdateFreehand(image.Pt(40, 25), true)

		out := dim.Composite(frame, MaskPolicy)
		defer out.Close()
		if v := out.GetVecbAt(25, 25); v[0] != 100 {
			t.Errorf("dim ink pixel = %v, want frame color", v)
		}
	})
}

func TestCanvas_RectanglePreviewDoesNotAccumulate(t *testing.T) {
	c := newTestCanvas(t, 64, 64, Style{Color: red, Width: 1})

	c.BeginShape(image.Pt(0, 0), ShapeRect)
	c.PreviewShape(image.Pt(10, 10))
	c.PreviewShape(image.Pt(20, 20))
	c.EndShape()

	if inked(*c.Mat(), image.Pt(10, 5)) {
		t.Error("right edge of the earlier preview is still on the canvas")
	}
	if !inked(*c.Mat(), image.Pt(20, 5)) {
		t.Error("right edge of the final rectangle is missing")
	}
	if !inked(*c.Mat(), image.Pt(5, 20)) {
		t.Error("bottom edge of the final rectangle is missing")
	}

	journal := c.Journal()
	if len(journal) != 1 || journal[0].Kind != OpRect || journal[0].To != image.Pt(20, 20) {
		t.Errorf("journal = %+v, want a single rect to (20,20)", journal)
	}
	if c.ShapeInProgress() {
		t.Error("gesture should be finished")
	}
}

func TestCanvas_ShapeKeepsEarlierInk(t *testing.T) {
	c := newTestCanvas(t, 100, 100, Style{Color: red, Width: 2})
	c.UpdateFreehand(image.Pt(5, 90), true)
	c.UpdateFreehand(image.Pt(95, 90), true)

	c.BeginShape(image.Pt(50, 50), ShapeCircle)
	c.PreviewShape(image.Pt(80, 50))
	c.PreviewShape(image.Pt(60, 50))
	c.EndShape()

	if !inked(*c.Mat(), image.Pt(50, 90)) {
		t.Error("freehand ink drawn before the gesture was lost")
	}
	if inked(*c.Mat(), image.Pt(80, 50)) {
		t.Error("larger preview circle left residue")
	}
	if !inked(*c.Mat(), image.Pt(60, 50)) {
		t.Error("final circle missing")
	}

	journal := c.Journal()
	if len(journal) != 2 || journal[1].Kind != OpCircle || journal[1].Radius != 10 {
		t.Errorf("journal = %+v, want segment then circle of radius 10", journal)
	}
}

func TestCanvas_RestartedGestureCommitsPreview(t *testing.T) {
	c := newTestCanvas(t, 64, 64, Style{Color: red, Width: 1})

	c.BeginShape(image.Pt(0, 0), ShapeRect)
	c.PreviewShape(image.Pt(20, 20))
	// A second press arrives without a release.
	c.BeginShape(image.Pt(40, 40), ShapeLine)
	c.PreviewShape(image.Pt(60, 40))
	c.EndShape()

	if !inked(*c.Mat(), image.Pt(20, 5)) {
		t.Error("rectangle from the interrupted gesture is missing")
	}
	if !inked(*c.Mat(), image.Pt(50, 40)) {
		t.Error("line from the second gesture is missing")
	}

	journal := c.Journal()
	if len(journal) != 2 || journal[0].Kind != OpRect || journal[1].Kind != OpLine {
		t.Errorf("journal = %+v, want rect then line", journal)
	}
}

func TestCanvas_GestureWithoutMoveCommitsNothing(t *testing.T) {
	c := newTestCanvas(t, 40, 40, DefaultStyle())

	c.BeginShape(image.Pt(10, 10), ShapeLine)
	c.EndShape()

	if len(c.Journal()) != 0 {
		t.Error("expected empty journal")
	}
	if n := inkCount(*c.Mat()); n != 0 {
		t.Errorf("canvas has %d inked pixels, want 0", n)
	}
}

func TestCanvas_ClearDuringGesture(t *testing.T) {
	c := newTestCanvas(t, 40, 40, Style{Color: red, Width: 1})
	c.UpdateFreehand(image.Pt(0, 30), true)
	c.UpdateFreehand(image.Pt(39, 30), true)

	c.BeginShape(image.Pt(5, 5), ShapeLine)
	c.PreviewShape(image.Pt(30, 5))
	c.Clear()
	c.PreviewShape(image.Pt(5, 20))
	c.EndShape()

	if inked(*c.Mat(), image.Pt(20, 30)) {
		t.Error("ink from before the clear came back with the preview")
	}
	if !inked(*c.Mat(), image.Pt(5, 12)) {
		t.Error("preview after clear is missing")
	}
	if len(c.Journal()) != 1 {
		t.Errorf("journal has %d ops, want 1", len(c.Journal()))
	}
}

func TestCanvas_ExportSingleSegmentFootprint(t *testing.T) {
	c := newTestCanvas(t, 40, 40, Style{Color: red, Width: 5})
	c.UpdateFreehand(image.Pt(5, 5), true)
	c.UpdateFreehand(image.Pt(5, 15), true)

	exported := c.Export()
	defer exported.Close()

	if !inked(exported, image.Pt(5, 10)) {
		t.Fatal("segment center is not inked")
	}

	footprint := image.Rect(5-3, 5-3, 5+4, 15+4)
	outside := 0
	for y := 0; y < exported.Rows(); y++ {
		for x := 0; x < exported.Cols(); x++ {
			p := image.Pt(x, y)
			if !p.In(footprint) && inked(exported, p) {
				outside++
			}
		}
	}
	if outside != 0 {
		t.Errorf("%d inked pixels outside the stroke footprint", outside)
	}

	// The export is a copy.
	c.Clear()
	if !inked(exported, image.Pt(5, 10)) {
		t.Error("clearing the canvas changed the exported image")
	}
}

func TestCanvas_BeginTickResize(t *testing.T) {
	c := newTestCanvas(t, 64, 48, DefaultStyle())
	c.UpdateFreehand(image.Pt(1, 1), true)
	c.UpdateFreehand(image.Pt(60, 40), true)

	c.BeginTick(image.Pt(64, 48))
	if len(c.Journal()) != 1 {
		t.Fatal("same-size tick must keep the canvas")
	}

	c.BeginTick(image.Pt(32, 24))
	if got := c.Size(); got != image.Pt(32, 24) {
		t.Errorf("Size() = %v, want (32,24)", got)
	}
	if n := inkCount(*c.Mat()); n != 0 {
		t.Errorf("resized canvas has %d inked pixels, want 0", n)
	}
	if _, ok := c.Cursor(); ok {
		t.Error("resize should disarm the cursor")
	}
	if len(c.Journal()) != 0 {
		t.Error("resize should empty the journal")
	}
}

func TestCanvas_ClearKeepsStyle(t *testing.T) {
	c := newTestCanvas(t, 10, 10, DefaultStyle())
	c.SetColor(red)
	c.SetWidth(12)
	c.Clear()

	if got := c.Style(); got.Color != red || got.Width != 12 {
		t.Errorf("Style() after clear = %+v", got)
	}
}

func TestCanvas_SetWidthClamps(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinWidth},
		{-4, MinWidth},
		{1, 1},
		{20, 20},
		{21, MaxWidth},
	}
	c := New(DefaultStyle())
	defer c.Close()

	for _, tt := range tests {
		c.SetWidth(tt.in)
		if got := c.Style().Width; got != tt.want {
			t.Errorf("SetWidth(%d) -> %d, want %d", tt.in, got, tt.want)
		}
	}
}
