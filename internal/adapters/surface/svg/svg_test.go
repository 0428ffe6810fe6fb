package svg_test

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/okian/timeline/internal/adapters/surface/svg"
	"github.com/okian/timeline/internal/domain/model"
	"github.com/okian/timeline/internal/domain/render"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSVGSurface(t *testing.T) {
	Convey("Given an SVG surface", t, func() {
		s := svg.New(200, 100)

		Convey("When primitives are drawn", func() {
			s.FillRect(render.Rect{X: 10, Y: 5, W: -4, H: 2}, render.Paint{Color: "#ff0000", Opacity: 0.5})
			s.FillRect(render.Rect{X: 1, Y: 1, W: 0, H: 9}, render.Solid("#000000"))
			s.FillText(`Tom & "Jerry" <3`, 1.5, 20, render.SansSerif(14), render.Solid("#000000"))
			out := string(s.Bytes())

			Convey("Then rects are normalised and empty ones skipped", func() {
				So(out, ShouldContainSubstring, `<rect x="6" y="5" width="4" height="2" fill="#ff0000" fill-opacity="0.5"/>`)
				So(strings.Count(out, "<rect"), ShouldEqual, 2)
			})

			Convey("Then text is escaped", func() {
				So(out, ShouldContainSubstring, `x="1.5" y="20" font-family="sans-serif" font-size="14"`)
				So(out, ShouldContainSubstring, "Tom &amp; &quot;Jerry&quot; &lt;3")
			})

			Convey("Then the document is well-formed XML", func() {
				d := xml.NewDecoder(strings.NewReader(out))
				var err error
				for err == nil {
					_, err = d.Token()
				}
				So(err.Error(), ShouldEqual, "EOF")
			})
		})

		Convey("When cleared", func() {
			s.FillRect(render.Rect{X: 1, Y: 1, W: 1, H: 1}, render.Solid("#000000"))
			s.Clear()

			Convey("Then only the background remains", func() {
				So(strings.Count(string(s.Bytes()), "<rect"), ShouldEqual, 1)
			})
		})

		Convey("When built without a background", func() {
			bare := svg.New(10, 10, svg.WithBackground(""))
			So(string(bare.Bytes()), ShouldNotContainSubstring, "<rect")
		})
	})
}

func TestRenderToSVG(t *testing.T) {
	Convey("Given a rendered timeline", t, func() {
		tl := model.New()
		tl.EndYear = 2001
		e, _ := model.NewPointEvent("a", "2000-06-01", "Launch <beta>", "", "#123456")
		So(tl.AddPointEvent(e), ShouldBeNil)
		s := svg.New(render.CanvasWidth(tl), 600)
		render.New().Render(tl, s)
		out := string(s.Bytes())

		So(out, ShouldStartWith, `<?xml version="1.0" encoding="UTF-8"?>`)
		So(out, ShouldContainSubstring, `<svg width="1096" height="600"`)
		So(out, ShouldContainSubstring, "Launch &lt;beta&gt;")
		So(out, ShouldContainSubstring, ">2000</text>")
		So(out, ShouldEndWith, "</svg>\n")
	})
}
