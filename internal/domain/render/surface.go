package render

import (
	"strconv"
	"unicode/utf8"
)

// Surface is a 2D drawing target. Coordinates are pixels from the top-left
// corner; text y is the baseline.
type Surface interface {
	Size() (width, height int)
	Clear()
	FillRect(r Rect, p Paint)
	FillText(text string, x, y float64, f Font, p Paint)
	MeasureText(text string, f Font) float64
}

// Rect is an axis-aligned rectangle. W or H may be negative, in which case
// the rectangle extends left or up from X, Y.
type Rect struct {
	X, Y, W, H float64
}

// Normalize returns the same area with non-negative width and height.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Empty reports a rectangle with no area.
func (r Rect) Empty() bool { return r.W == 0 || r.H == 0 }

// Paint is a fill colour with opacity. Zero Opacity means opaque.
type Paint struct {
	Color   string
	Opacity float64
}

// Solid returns an opaque paint.
func Solid(color string) Paint { return Paint{Color: color, Opacity: 1} }

// Alpha returns the effective opacity in [0,1].
func (p Paint) Alpha() float64 {
	switch {
	case p.Opacity <= 0 || p.Opacity >= 1:
		return 1
	default:
		return p.Opacity
	}
}

// Font selects text size in pixels.
type Font struct {
	Size   float64
	Family string
}

// SansSerif returns the default font at size px.
func SansSerif(size float64) Font { return Font{Size: size, Family: "sans-serif"} }

// AverageGlyphWidth is the width of one character as a fraction of the font
// size, used by surfaces that have no font metrics.
const AverageGlyphWidth = 0.6

// EstimateTextWidth approximates the advance of text without font metrics.
func EstimateTextWidth(text string, f Font) float64 {
	return float64(utf8.RuneCountInString(text)) * f.Size * AverageGlyphWidth
}

// CSSFont renders f in CSS shorthand, e.g. "14px sans-serif".
func (f Font) CSSFont() string {
	family := f.Family
	if family == "" {
		family = "sans-serif"
	}
	return strconv.FormatFloat(f.Size, 'f', -1, 64) + "px " + family
}
