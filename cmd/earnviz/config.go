package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quarterglass/earnviz/analysis"
)

type Config struct {
	InPath         string
	OutPath        string
	ReportPath     string
	WorkbookPath   string
	Model          string
	Mode           string
	Topics         string
	PresetTopics   bool
	WordsPerMinute int
	MaxTopics      int
	MaxChunkWords  int
	CacheDir       string
	NoCache        bool
	ClearCache     bool
	APIKey         string
	Pretty         bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if c.Model == "" {
		return errors.New("missing -model")
	}
	if c.Mode != analysis.ModeChunks && c.Mode != analysis.ModeTranscript {
		return fmt.Errorf("-mode must be %q or %q", analysis.ModeTranscript, analysis.ModeChunks)
	}
	if c.Topics != "" && c.PresetTopics {
		return errors.New("-topics and -preset-topics are mutually exclusive")
	}
	if c.Mode == analysis.ModeChunks && (c.Topics != "" || c.PresetTopics) {
		return errors.New("-topics and -preset-topics require -mode transcript")
	}
	if c.WordsPerMinute < 1 {
		return errors.New("wpm must be >= 1")
	}
	if c.MaxTopics < 0 {
		return errors.New("max-topics must be >= 0")
	}
	if c.MaxChunkWords < 1 {
		return errors.New("max-words must be >= 1")
	}
	return nil
}

// topicSource maps the flag surface onto one of the three topic-selection
// strategies.
func (c Config) topicSource() analysis.TopicSource {
	if c.Topics != "" {
		return analysis.CustomTopics(strings.Split(c.Topics, ","))
	}
	if c.PresetTopics {
		return analysis.FixedTopics()
	}
	return analysis.DiscoveredTopics()
}

func defaultConfig() Config {
	return Config{
		OutPath:        "results.json",
		ReportPath:     "report.html",
		Model:          "gpt-4o-mini",
		Mode:           analysis.ModeTranscript,
		WordsPerMinute: analysis.DefaultWordsPerMinute,
		MaxTopics:      analysis.DefaultMaxTopics,
		MaxChunkWords:  analysis.DefaultChunkWords,
		CacheDir:       ".earnviz-cache",
	}
}
