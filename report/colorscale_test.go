package report

import (
	"testing"

	"github.com/quarterglass/earnviz/analysis"
)

func resultWithSentiments(vals ...float64) analysis.AnalysisResult {
	res := make(analysis.AnalysisResult, 0, len(vals))
	for _, v := range vals {
		res = append(res, analysis.TopicRecord{Topic: "T", Sentiment: v, WordCount: 10})
	}
	return res
}

func TestScaleForAllNonNegative(t *testing.T) {
	t.Parallel()

	s := ScaleFor(resultWithSentiments(0.2, 0.5, 0.9))
	if s.Diverging {
		t.Fatalf("expected sequential scale")
	}
	if s.Min != 0 || s.Max != 1 {
		t.Fatalf("domain=[%v,%v], want [0,1]", s.Min, s.Max)
	}
	if s.Stops[0].Color != "#ffffbf" || s.Stops[len(s.Stops)-1].Color != "#1a9850" {
		t.Fatalf("stops=%v", s.Stops)
	}
}

func TestScaleForAnyNegative(t *testing.T) {
	t.Parallel()

	s := ScaleFor(resultWithSentiments(-0.1, 0.4))
	if !s.Diverging {
		t.Fatalf("expected diverging scale")
	}
	if s.Min != -1 || s.Max != 1 {
		t.Fatalf("domain=[%v,%v], want [-1,1]", s.Min, s.Max)
	}
	// Neutral must sit on the white midpoint.
	mid := s.Stops[len(s.Stops)/2]
	if mid.Pos != 0.5 || mid.Color != "#f7f7f7" {
		t.Fatalf("midpoint=%v", mid)
	}
}

func TestScaleForZeroBoundary(t *testing.T) {
	t.Parallel()

	if s := ScaleFor(resultWithSentiments(0, 0.3)); s.Diverging {
		t.Fatalf("sentiment of exactly zero should stay sequential")
	}
}
