package raster_test

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/okian/timeline/internal/adapters/surface/raster"
	"github.com/okian/timeline/internal/domain/model"
	"github.com/okian/timeline/internal/domain/render"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRasterSurface(t *testing.T) {
	Convey("Given a raster surface", t, func() {
		s, err := raster.New(100, 50)
		So(err, ShouldBeNil)
		s.Clear()

		Convey("Then Clear paints the background", func() {
			So(s.Image().RGBAAt(0, 0), ShouldResemble, color.RGBA{255, 255, 255, 255})
		})

		Convey("When an opaque rect is filled", func() {
			s.FillRect(render.Rect{X: 10, Y: 10, W: -5, H: 5}, render.Solid("#ff0000"))

			Convey("Then the normalised area takes the colour", func() {
				So(s.Image().RGBAAt(7, 12), ShouldResemble, color.RGBA{255, 0, 0, 255})
				So(s.Image().RGBAAt(11, 12), ShouldResemble, color.RGBA{255, 255, 255, 255})
			})
		})

		Convey("When a translucent rect is filled over white", func() {
			s.FillRect(render.Rect{X: 0, Y: 0, W: 4, H: 4}, render.Paint{Color: "#000000", Opacity: 0.5})
			px := s.Image().RGBAAt(1, 1)

			Convey("Then it blends", func() {
				So(int(px.R), ShouldBeBetween, 120, 135)
				So(int(px.A), ShouldEqual, 255)
			})
		})

		Convey("When a rect lies outside the image", func() {
			So(func() {
				s.FillRect(render.Rect{X: -50, Y: -50, W: 10, H: 10}, render.Solid("#000000"))
			}, ShouldNotPanic)
		})

		Convey("When text is drawn and measured", func() {
			short := s.MeasureText("ab", render.SansSerif(14))
			long := s.MeasureText("abcdef", render.SansSerif(14))
			s.FillText("Hello", 5, 30, render.SansSerif(14), render.Solid("#000000"))

			dark := 0
			for y := 15; y < 35; y++ {
				for x := 0; x < 60; x++ {
					if s.Image().RGBAAt(x, y).R < 128 {
						dark++
					}
				}
			}

			Convey("Then glyphs are inked and widths follow the text", func() {
				So(dark, ShouldBeGreaterThan, 10)
				So(short, ShouldBeGreaterThan, 0)
				So(long, ShouldBeGreaterThan, short)
			})
		})

		Convey("When encoded", func() {
			var buf bytes.Buffer
			So(s.Encode(&buf), ShouldBeNil)
			img, err := png.Decode(&buf)

			Convey("Then a PNG of the same size comes back", func() {
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 100)
				So(img.Bounds().Dy(), ShouldEqual, 50)
			})
		})
	})

	Convey("Given oversized or empty dimensions", t, func() {
		_, err := raster.New(1000, 1000, raster.WithMaxPixels(100))
		So(errors.Is(err, raster.ErrTooLarge), ShouldBeTrue)

		_, err = raster.New(0, 10)
		So(err, ShouldNotBeNil)
	})
}

func TestRenderToPNG(t *testing.T) {
	Convey("Given a rendered timeline", t, func() {
		tl := model.New()
		tl.EndYear = 2001
		e, _ := model.NewPointEvent("a", "2000-06-01", "Launch", "", "#0000ff")
		So(tl.AddPointEvent(e), ShouldBeNil)
		s, err := raster.New(render.CanvasWidth(tl), 400)
		So(err, ShouldBeNil)
		render.New().Render(tl, s)

		Convey("Then the event marker column is blue", func() {
			x := 50 + 152
			So(s.Image().RGBAAt(x, 300), ShouldResemble, color.RGBA{0, 0, 255, 255})
		})

		Convey("Then the axis bar is black", func() {
			So(s.Image().RGBAAt(60, 352), ShouldResemble, color.RGBA{0, 0, 0, 255})
		})
	})
}
