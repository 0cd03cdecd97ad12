package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/quarterglass/earnviz/analysis"
	"github.com/quarterglass/earnviz/analysis/fileutils"
)

// ErrNoData is returned when no record has a positive size, leaving nothing
// to draw.
var ErrNoData = errors.New("no data to plot")

// Options controls optional report content.
type Options struct {
	Title          string
	TranscriptText string
}

// treemapTrace mirrors the subset of the plotly treemap trace the report uses.
type treemapTrace struct {
	Type          string        `json:"type"`
	Labels        []string      `json:"labels"`
	Parents       []string      `json:"parents"`
	Values        []float64     `json:"values"`
	Text          []string      `json:"text"`
	Hovertemplate string        `json:"hovertemplate"`
	Textinfo      string        `json:"textinfo"`
	Marker        treemapMarker `json:"marker"`
}

type treemapMarker struct {
	Colors     []float64   `json:"colors"`
	Colorscale [][2]any    `json:"colorscale"`
	Cmin       float64     `json:"cmin"`
	Cmax       float64     `json:"cmax"`
	Colorbar   colorbarDef `json:"colorbar"`
}

type colorbarDef struct {
	Title    string    `json:"title"`
	Tickvals []float64 `json:"tickvals"`
	Ticktext []string  `json:"ticktext"`
}

type tableRow struct {
	Topic     string
	Sentiment string
	Minutes   string
	Words     int
	Rationale string
	Class     string
}

type reportData struct {
	Title     string
	TraceJSON template.JS
	Rows      []tableRow
	Sentences []Sentence
	HasPlot   bool
}

// WriteHTML renders the interactive treemap report to path. Records with zero
// size are listed in the detail table but excluded from the plot; if every
// record has zero size there is nothing to draw and ErrNoData is returned.
func WriteHTML(path string, res analysis.AnalysisResult, opts Options) error {
	if len(res) == 0 {
		return ErrNoData
	}

	trace := buildTrace(res)
	if len(trace.Labels) == 0 {
		return ErrNoData
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return fmt.Errorf("marshal treemap trace: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "Earnings Call Topics & Sentiment"
	}
	data := reportData{
		Title:     title,
		TraceJSON: template.JS(traceJSON),
		Rows:      buildRows(res),
		Sentences: HighlightSentences(opts.TranscriptText),
		HasPlot:   true,
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := fileutils.WriteFileAtomicSameDir(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func buildTrace(res analysis.AnalysisResult) treemapTrace {
	scale := ScaleFor(res)

	trace := treemapTrace{
		Type:          "treemap",
		Hovertemplate: "<b>%{label}</b><br>Size: %{value:.1f}<br>Sentiment: %{color:.2f}<br>%{text}<extra></extra>",
		Textinfo:      "label+value",
	}
	for _, r := range res {
		size := r.Size()
		if size <= 0 {
			continue
		}
		trace.Labels = append(trace.Labels, r.Topic)
		trace.Parents = append(trace.Parents, "")
		trace.Values = append(trace.Values, size)
		trace.Text = append(trace.Text, r.Rationale)
		trace.Marker.Colors = append(trace.Marker.Colors, r.Sentiment)
	}

	for _, s := range scale.Stops {
		trace.Marker.Colorscale = append(trace.Marker.Colorscale, [2]any{s.Pos, s.Color})
	}
	trace.Marker.Cmin = scale.Min
	trace.Marker.Cmax = scale.Max
	trace.Marker.Colorbar.Title = "Sentiment"
	for _, tk := range scale.Ticks {
		trace.Marker.Colorbar.Tickvals = append(trace.Marker.Colorbar.Tickvals, tk.Value)
		trace.Marker.Colorbar.Ticktext = append(trace.Marker.Colorbar.Ticktext, tk.Label)
	}
	return trace
}

func buildRows(res analysis.AnalysisResult) []tableRow {
	rows := make([]tableRow, 0, len(res))
	for _, r := range res {
		rows = append(rows, tableRow{
			Topic:     r.Topic,
			Sentiment: fmt.Sprintf("%.2f", r.Sentiment),
			Minutes:   fmt.Sprintf("%.1f", r.Minutes),
			Words:     r.WordCount,
			Rationale: r.Rationale,
			Class:     sentimentClass(r.Sentiment),
		})
	}
	return rows
}

// sentimentClass buckets a score for table styling. The +-0.1 band around
// zero reads as neutral.
func sentimentClass(s float64) string {
	switch {
	case s >= 0.1:
		return "positive"
	case s <= -0.1:
		return "negative"
	default:
		return "neutral"
	}
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.32.0.min.js"></script>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f5f6f8; color: #1f2430; }
  .container { max-width: 1200px; margin: 0 auto; padding: 24px; }
  h1 { margin: 0 0 16px; font-size: 26px; }
  h2 { margin: 32px 0 12px; font-size: 20px; }
  #treemap { width: 100%; height: 620px; background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.12); }
  table { width: 100%; border-collapse: collapse; background: #fff; border-radius: 8px; overflow: hidden; box-shadow: 0 1px 3px rgba(0,0,0,.12); }
  th, td { padding: 10px 14px; text-align: left; border-bottom: 1px solid #e4e7ec; font-size: 14px; }
  th { background: #2c3e50; color: #fff; }
  tr:last-child td { border-bottom: none; }
  td.positive { color: #1a9850; font-weight: 600; }
  td.negative { color: #d73027; font-weight: 600; }
  td.neutral { color: #6b7280; }
  .transcript { background: #fff; border-radius: 8px; padding: 20px; box-shadow: 0 1px 3px rgba(0,0,0,.12); line-height: 1.7; font-size: 15px; }
  .sentence.positive { background: #e6f4ea; }
  .sentence.negative { background: #fdecea; }
</style>
</head>
<body>
<div class="container">
  <h1>{{.Title}}</h1>
  <div id="treemap"></div>
  <h2>Topic Detail</h2>
  <table>
    <thead>
      <tr><th>Topic</th><th>Sentiment</th><th>Minutes</th><th>Words</th><th>Rationale</th></tr>
    </thead>
    <tbody>
      {{- range .Rows}}
      <tr>
        <td>{{.Topic}}</td>
        <td class="{{.Class}}">{{.Sentiment}}</td>
        <td>{{.Minutes}}</td>
        <td>{{.Words}}</td>
        <td>{{.Rationale}}</td>
      </tr>
      {{- end}}
    </tbody>
  </table>
  {{- if .Sentences}}
  <h2>Transcript</h2>
  <div class="transcript">
    {{- range .Sentences}}
    <span class="sentence {{.Tone}}">{{.Text}}</span>
    {{- end}}
  </div>
  {{- end}}
</div>
<script>
  var trace = {{.TraceJSON}};
  Plotly.newPlot("treemap", [trace], {
    margin: {t: 10, l: 10, r: 10, b: 10},
    paper_bgcolor: "#ffffff"
  }, {responsive: true});
</script>
</body>
</html>
`))
