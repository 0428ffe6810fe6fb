// Package raster draws onto an in-memory RGBA image and encodes it as PNG.
// Text uses the Go Regular font with real glyph metrics.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/okian/timeline/internal/domain/model"
	"github.com/okian/timeline/internal/domain/render"
)

// DefaultMaxPixels caps the image area.
const DefaultMaxPixels = 16 << 20

// ErrTooLarge is returned for a surface whose area exceeds the configured cap.
var ErrTooLarge = errors.New("raster surface too large")

var (
	parseOnce sync.Once
	regular   *opentype.Font
	parseErr  error
)

func goRegular() (*opentype.Font, error) {
	parseOnce.Do(func() {
		regular, parseErr = opentype.Parse(goregular.TTF)
	})
	return regular, parseErr
}

// Surface is a PNG drawing target.
type Surface struct {
	img        *image.RGBA
	background color.Color
	maxPixels  int
	faces      map[float64]font.Face
}

// Option configures a Surface.
type Option func(*Surface)

// WithBackground sets the colour Clear fills with.
func WithBackground(c color.Color) Option {
	return func(s *Surface) { s.background = c }
}

// WithMaxPixels sets the area cap checked by New.
func WithMaxPixels(n int) Option {
	return func(s *Surface) {
		if n > 0 {
			s.maxPixels = n
		}
	}
}

// New allocates a width x height image.
func New(width, height int, opts ...Option) (*Surface, error) {
	s := &Surface{
		background: color.White,
		maxPixels:  DefaultMaxPixels,
		faces:      make(map[float64]font.Face),
	}
	for _, opt := range opts {
		opt(s)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", width, height)
	}
	if int64(width)*int64(height) > int64(s.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, width, height, s.maxPixels)
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return s, nil
}

func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

func (s *Surface) FillRect(r render.Rect, p render.Paint) {
	r = r.Normalize()
	if r.Empty() {
		return
	}
	area := image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	).Intersect(s.img.Bounds())
	if area.Empty() {
		return
	}
	draw.Draw(s.img, area, image.NewUniform(paintColor(p)), image.Point{}, draw.Over)
}

func (s *Surface) FillText(text string, x, y float64, f render.Font, p render.Paint) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(paintColor(p)),
		Face: s.face(f.Size),
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(text)
}

func (s *Surface) MeasureText(text string, f render.Font) float64 {
	return float64(font.MeasureString(s.face(f.Size), text)) / 64
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA { return s.img }

// Encode writes the image as PNG.
func (s *Surface) Encode(w io.Writer) error {
	return png.Encode(w, s.img)
}

// face returns a cached Go Regular face at size px, or the basic bitmap face
// when the font cannot be loaded.
func (s *Surface) face(size float64) font.Face {
	if f, ok := s.faces[size]; ok {
		return f
	}
	var face font.Face = basicfont.Face7x13
	if fnt, err := goRegular(); err == nil && size > 0 {
		if f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		}); err == nil {
			face = f
		}
	}
	s.faces[size] = face
	return face
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// paintColor resolves a paint to a non-premultiplied colour. Unparseable
// colours draw black.
func paintColor(p render.Paint) color.NRGBA {
	c, _ := model.ParseRGB(p.Color)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(p.Alpha() * 255))}
}
