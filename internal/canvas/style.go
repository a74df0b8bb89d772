package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Pen width limits.
const (
	MinWidth     = 1
	MaxWidth     = 20
	DefaultWidth = 5
)

// DefaultColor is the initial pen color (blue).
var DefaultColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}

// Style is the pen used for future draw operations.
type Style struct {
	Color color.RGBA
	Width int
}

// DefaultStyle returns the pen a new session starts with.
func DefaultStyle() Style {
	return Style{Color: DefaultColor, Width: DefaultWidth}
}

// ClampWidth limits w to [MinWidth, MaxWidth].
func ClampWidth(w int) int {
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}

// RGBA converts any color to an opaque color.RGBA.
func RGBA(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rrggbb (the leading # is optional).
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
