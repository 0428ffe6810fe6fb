// Package svg renders draw calls into a standalone SVG document.
package svg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/timeline/internal/domain/render"
)

// Surface accumulates SVG elements.
type Surface struct {
	width, height int
	background    string
	body          strings.Builder
}

// Option configures a Surface.
type Option func(*Surface)

// WithBackground fills the document with color before any element. An empty
// color leaves the background transparent.
func WithBackground(color string) Option {
	return func(s *Surface) { s.background = color }
}

// New returns an empty SVG surface.
func New(width, height int, opts ...Option) *Surface {
	s := &Surface{width: width, height: height, background: "#ffffff"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) Clear() { s.body.Reset() }

func (s *Surface) FillRect(r render.Rect, p render.Paint) {
	r = r.Normalize()
	if r.Empty() {
		return
	}
	fmt.Fprintf(&s.body, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`+"\n",
		num(r.X), num(r.Y), num(r.W), num(r.H), escapeXML(p.Color), opacityAttr(p))
}

func (s *Surface) FillText(text string, x, y float64, f render.Font, p render.Paint) {
	if text == "" {
		return
	}
	family := f.Family
	if family == "" {
		family = "sans-serif"
	}
	fmt.Fprintf(&s.body, `<text x="%s" y="%s" font-family="%s" font-size="%s" fill="%s"%s>%s</text>`+"\n",
		num(x), num(y), escapeXML(family), num(f.Size), escapeXML(p.Color), opacityAttr(p), escapeXML(text))
}

func (s *Surface) MeasureText(text string, f render.Font) float64 {
	return render.EstimateTextWidth(text, f)
}

// Bytes returns the complete SVG document.
func (s *Surface) Bytes() []byte {
	var out strings.Builder
	fmt.Fprintf(&out, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
`, s.width, s.height, s.width, s.height)
	if s.background != "" {
		fmt.Fprintf(&out, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(s.background))
	}
	out.WriteString(s.body.String())
	out.WriteString("</svg>\n")
	return []byte(out.String())
}

func opacityAttr(p render.Paint) string {
	if a := p.Alpha(); a < 1 {
		return ` fill-opacity="` + num(a) + `"`
	}
	return ""
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeXML replaces the five XML special characters with entities.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
