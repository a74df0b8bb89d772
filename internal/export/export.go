// Package export writes the whiteboard to disk: the pixel grid as PNG and
// the journal of committed operations as a vector PDF.
package export

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"gocv.io/x/gocv"

	"github.com/ayusman/fingerboard/internal/canvas"
)

// ErrEmptyImage is returned when asked to write an image with no pixels.
var ErrEmptyImage = errors.New("image is empty")

// WritePNG writes img to path, replacing any existing file.
func WritePNG(path string, img gocv.Mat) error {
	if img.Empty() {
		return ErrEmptyImage
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("write %s: encoder failed", path)
	}
	return nil
}

// WritePDF renders ops onto a single page the size of the canvas (one
// point per pixel) on a black background, and writes it to path.
func WritePDF(path string, size image.Point, ops []canvas.Op) error {
	if size.X <= 0 || size.Y <= 0 {
		return ErrEmptyImage
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	w, h := float64(size.X), float64(size.Y)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFillColor(0, 0, 0)
	pdf.Rect(0, 0, w, h, "F")

	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for _, op := range ops {
		drawOp(pdf, op)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func drawOp(pdf *gofpdf.Fpdf, op canvas.Op) {
	c := op.Style.Color
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	pdf.SetLineWidth(float64(op.Style.Width))

	x1, y1 := float64(op.From.X), float64(op.From.Y)
	x2, y2 := float64(op.To.X), float64(op.To.Y)

	switch op.Kind {
	case canvas.OpSegment, canvas.OpLine:
		pdf.Line(x1, y1, x2, y2)
	case canvas.OpRect:
		r := image.Rectangle{Min: op.From, Max: op.To}.Canon()
		pdf.Rect(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), "D")
	case canvas.OpCircle:
		pdf.Circle(x1, y1, float64(op.Radius), "D")
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
