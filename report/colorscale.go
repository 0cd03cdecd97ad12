package report

import "github.com/quarterglass/earnviz/analysis"

// Stop anchors a color at a normalized position in [0, 1] along the scale.
type Stop struct {
	Pos   float64
	Color string
}

// Tick labels a sentiment value on the colorbar.
type Tick struct {
	Value float64
	Label string
}

// ColorScale is the plotly colorscale plus the sentiment domain it spans.
type ColorScale struct {
	Diverging bool
	Stops     []Stop
	Min       float64
	Max       float64
	Ticks     []Tick
}

// ScaleFor picks the scale matching the result's sentiment range. An all
// non-negative result gets a sequential pale-yellow-to-green scale over
// [0, 1]; any negative sentiment switches to a red-white-green diverging
// scale over [-1, 1], so that neutral always lands on white.
func ScaleFor(res analysis.AnalysisResult) ColorScale {
	if res.MinSentiment() >= 0 {
		return ColorScale{
			Stops: []Stop{
				{0, "#ffffbf"},
				{0.5, "#a6d96a"},
				{1, "#1a9850"},
			},
			Min: 0,
			Max: 1,
			Ticks: []Tick{
				{0, "Neutral"},
				{0.5, "Moderately Positive"},
				{1, "Very Positive"},
			},
		}
	}
	return ColorScale{
		Diverging: true,
		Stops: []Stop{
			{0, "#d73027"},
			{0.25, "#fc8d59"},
			{0.5, "#f7f7f7"},
			{0.75, "#91cf60"},
			{1, "#1a9850"},
		},
		Min: -1,
		Max: 1,
		Ticks: []Tick{
			{-1, "Very Negative"},
			{0, "Neutral"},
			{1, "Very Positive"},
		},
	}
}
