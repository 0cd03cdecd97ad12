package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/quarterglass/earnviz/analysis/fileutils"
)

// WriteResults persists the aggregated result as a JSON array. The element
// shape is the external contract consumed by the report and by downstream
// tooling, so it tracks TopicRecord's JSON tags exactly.
func WriteResults(path string, res AnalysisResult, pretty bool) error {
	return fileutils.WriteJSONFileAtomic(path, res, pretty)
}

// RunManifest records what produced a set of results, so a run can be
// reconciled with its outputs later.
type RunManifest struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	TranscriptPath string    `json:"transcript_path"`
	Model          string    `json:"model"`
	Mode           string    `json:"mode"`
	WordsPerMinute int       `json:"words_per_minute"`
	MaxTopics      int       `json:"max_topics"`
	Topics         []string  `json:"topics,omitempty"`
	ResultsPath    string    `json:"results_path"`
	ReportPath     string    `json:"report_path,omitempty"`
	WorkbookPath   string    `json:"workbook_path,omitempty"`
	TopicCount     int       `json:"topic_count"`
	TotalMinutes   float64   `json:"total_minutes"`
	TotalWords     int       `json:"total_words"`
}

func NewRunID() string {
	return uuid.NewString()
}

func WriteManifest(path string, m RunManifest) error {
	return fileutils.WriteJSONFileAtomic(path, m, true)
}
