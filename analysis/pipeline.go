package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/quarterglass/earnviz/analysis/fileutils"
	"github.com/quarterglass/earnviz/logger"
)

const (
	// ModeChunks analyzes the transcript chunk by chunk, one oracle call each.
	ModeChunks = "chunks"
	// ModeTranscript analyzes the whole transcript in a single oracle call.
	ModeTranscript = "transcript"
)

// sizeSumTolerance is how far the summed per-topic minutes may drift from the
// transcript's estimated speaking time before the run logs a warning.
const sizeSumTolerance = 0.25

// Params fully determines one analysis run.
type Params struct {
	TranscriptPath string
	Mode           string
	Source         TopicSource
	Model          string
	WordsPerMinute int
	MaxTopics      int
	MaxChunkWords  int
}

// Pipeline wires the analysis stages together: read, segment or clip, consult
// the oracle, aggregate, cache. Cache and Log are optional.
type Pipeline struct {
	Oracle *Oracle
	Cache  *Cache
	Log    *logger.Logger
}

// Run executes one analysis and returns the aggregated result along with the
// normalized transcript text. It returns ErrNoContent when the transcript has
// nothing to analyze and ErrEmptyResult when aggregation yields no records.
func (p *Pipeline) Run(ctx context.Context, params Params) (AnalysisResult, string, error) {
	log := p.Log
	if log == nil {
		log = logger.New()
	}
	if params.WordsPerMinute < 1 {
		params.WordsPerMinute = DefaultWordsPerMinute
	}
	if params.MaxChunkWords < 1 {
		params.MaxChunkWords = DefaultChunkWords
	}

	text, err := fileutils.ReadTextFile(params.TranscriptPath)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", ErrNoContent, params.TranscriptPath, err)
	}
	if WordCount(text) == 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrNoContent, params.TranscriptPath)
	}

	key := CacheKey(text, params.Mode, params.Model,
		params.WordsPerMinute, params.MaxTopics, params.MaxChunkWords, params.Source.Labels)
	if cached, ok := p.Cache.Get(key); ok {
		log.WithField("topics", len(cached)).Info("cache hit, skipping oracle")
		return cached, text, nil
	}

	var records []TopicRecord
	degraded := false
	switch params.Mode {
	case ModeChunks:
		chunks := Segment(text, params.MaxChunkWords)
		log.WithField("chunks", len(chunks)).Info("analyzing transcript chunk by chunk")
		analyses := p.Oracle.AnalyzeChunks(ctx, chunks)
		fallbacks := 0
		for i, a := range analyses {
			if a.Fallback {
				fallbacks++
			}
			records = append(records, TopicRecord{
				Topic:     a.Topic,
				Sentiment: a.Sentiment,
				Minutes:   EstimateMinutes(chunks[i].Words, params.WordsPerMinute),
				WordCount: chunks[i].Words,
				Rationale: a.Rationale,
			})
		}
		if fallbacks > 0 {
			degraded = true
			log.WithField("fallbacks", fallbacks).Warn("some chunks fell back to neutral records")
		}

	case ModeTranscript:
		var outcome OracleOutcome
		switch params.Source.Kind {
		case TopicsDiscovered:
			log.Info("analyzing full transcript with discovered topics")
			outcome = p.Oracle.AnalyzeFullTranscript(ctx, text, params.WordsPerMinute)
		case TopicsFixed, TopicsCustom:
			log.WithField("topics", len(params.Source.Labels)).Info("analyzing full transcript with requested topics")
			outcome = p.Oracle.AnalyzeWithCustomTopics(ctx, text, params.Source.Labels, params.WordsPerMinute)
		default:
			return nil, "", fmt.Errorf("unknown topic source kind %d", params.Source.Kind)
		}
		if outcome.Fallback {
			degraded = true
			log.WithField("reason", outcome.Reason).Warn("oracle reply unusable, using fallback records")
		}
		records = outcome.Records

	default:
		return nil, "", fmt.Errorf("unknown analysis mode %q", params.Mode)
	}

	res := Aggregate(records, params.MaxTopics)
	if len(res) == 0 {
		return nil, "", ErrEmptyResult
	}

	if params.Mode == ModeTranscript {
		expected := EstimateMinutes(WordCount(text), params.WordsPerMinute)
		if got := res.TotalMinutes(); expected > 0 &&
			math.Abs(got-expected)/expected > sizeSumTolerance {
			log.WithFields(logrus.Fields{
				"reported_minutes":  got,
				"estimated_minutes": expected,
			}).Warn("topic durations deviate from estimated speaking time")
		}
	}

	// Fallback-derived results are transient; caching them would serve a dead
	// oracle's output on every identical rerun.
	if degraded {
		log.Info("result contains fallback records, skipping cache write")
	} else if err := p.Cache.Put(key, res); err != nil {
		log.WithError(err).Warn("caching result failed")
	}
	return res, text, nil
}
