package coords_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/timeline/internal/domain/coords"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestToPixel(t *testing.T) {
	Convey("Given an origin of 2000", t, func() {
		origin := coords.Origin(2000)

		Convey("Then the origin maps to 0 for every zoom", func() {
			for _, z := range []float64{-3, -0.5, 0.1, 1, 2, 17.25} {
				So(coords.ToPixel(origin, origin, z), ShouldEqual, 0)
			}
		})

		Convey("Then 2000-01-11 at zoom 1 is 10 px", func() {
			So(coords.ToPixel(day(2000, 1, 11), origin, 1), ShouldEqual, 10)
		})

		Convey("Then dates before the origin stay negative", func() {
			So(coords.ToPixel(day(1999, 12, 31), origin, 1), ShouldEqual, -1)
			So(coords.ToPixel(day(1999, 1, 1), origin, 1), ShouldEqual, -365)
		})

		Convey("Then the sub-day remainder is dropped before zooming", func() {
			noon := day(2000, 1, 3).Add(18 * time.Hour)
			So(coords.ToPixel(noon, origin, 1), ShouldEqual, 2)
			So(coords.ToPixel(noon, origin, 10), ShouldEqual, 20)
		})

		Convey("Then fractional zoom floors the result", func() {
			So(coords.ToPixel(day(2000, 1, 4), origin, 0.5), ShouldEqual, 1)
			So(coords.ToPixel(day(1999, 12, 29), origin, 0.5), ShouldEqual, -2)
		})

		Convey("Then the mapping is monotonic in the date", func() {
			prevPos, prevNeg := coords.ToPixel(day(1990, 1, 1), origin, 1.5), coords.ToPixel(day(1990, 1, 1), origin, -1.5)
			for d := day(1990, 1, 1); d.Before(day(2010, 1, 1)); d = d.AddDate(0, 0, 37) {
				pos := coords.ToPixel(d, origin, 1.5)
				neg := coords.ToPixel(d, origin, -1.5)
				So(pos, ShouldBeGreaterThanOrEqualTo, prevPos)
				So(neg, ShouldBeLessThanOrEqualTo, prevNeg)
				prevPos, prevNeg = pos, neg
			}
		})

		Convey("Then doubling the zoom doubles the offset", func() {
			for _, d := range []time.Time{day(2000, 3, 1), day(1987, 7, 9), day(2031, 12, 31)} {
				for _, z := range []float64{1, 2, 3} {
					So(coords.ToPixel(d, origin, 2*z), ShouldEqual, 2*coords.ToPixel(d, origin, z))
				}
			}
		})

		Convey("Then far-apart dates do not overflow", func() {
			So(int64(coords.ToPixel(day(3000, 1, 1), origin, 1)), ShouldEqual, coords.Days(day(3000, 1, 1), origin))
			So(coords.Days(day(3000, 1, 1), origin), ShouldEqual, int64(365243))
		})

		Convey("Then extreme zooms saturate instead of wrapping", func() {
			So(coords.ToPixel(day(3000, 1, 1), origin, 1e300), ShouldEqual, coords.MaxPixel)
			So(coords.ToPixel(day(1000, 1, 1), origin, 1e300), ShouldEqual, -coords.MaxPixel)
			So(coords.ToPixel(origin, origin, 1e300), ShouldEqual, 0)
			So(coords.ToPixel(day(2001, 1, 1), origin, math.Inf(1)), ShouldEqual, coords.MaxPixel)
		})
	})
}

func TestMapper(t *testing.T) {
	Convey("Given a mapper for 2000 at zoom 2", t, func() {
		m := coords.NewMapper(2000, 2)

		So(m.Origin(), ShouldEqual, day(2000, 1, 1))
		So(m.Zoom(), ShouldEqual, 2)
		So(m.YearX(2000), ShouldEqual, 0)
		So(m.YearX(2001), ShouldEqual, 732)
		So(m.MonthX(2000, time.February), ShouldEqual, 62)
		So(m.X(day(2000, 1, 11)), ShouldEqual, 20)
	})
}
