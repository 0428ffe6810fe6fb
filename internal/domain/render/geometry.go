package render

// Geometry holds the fixed drawing constants.
type Geometry struct {
	AxisColor      string
	MonthTickColor string

	BaselineHeight float64
	SeparatorWidth float64
	MonthTick      float64 // height of a month tick above the axis
	YearLabelSize  float64
	YearLabelDrop  float64 // label baseline below the axis

	MarkerWidth     float64
	TitleSize       float64
	TitleRise       float64
	DateSize        float64
	DateRise        float64
	DescriptionSize float64
	DescriptionDrop float64

	SpanOpacity   float64
	SpanTitleSize float64
}

// DefaultGeometry returns the stock drawing constants.
func DefaultGeometry() Geometry {
	return Geometry{
		AxisColor:      "#000000",
		MonthTickColor: "#3c3c3c",

		BaselineHeight: 5,
		SeparatorWidth: 2,
		MonthTick:      50,
		YearLabelSize:  14,
		YearLabelDrop:  20,

		MarkerWidth:     1,
		TitleSize:       14,
		TitleRise:       10,
		DateSize:        10,
		DateRise:        25,
		DescriptionSize: 10,
		DescriptionDrop: 12,

		SpanOpacity:   0.5,
		SpanTitleSize: 12,
	}
}
