package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/quarterglass/earnviz/analysis/fileutils"
	"github.com/quarterglass/earnviz/analysis/provider"
)

// Transport performs one structured-output oracle call and returns the raw
// response text. Implementations must not retry: the Oracle absorbs each
// failure exactly once into a fallback value.
type Transport interface {
	Complete(ctx context.Context, req provider.Request) (string, error)
}

// Oracle obtains topic/sentiment judgments from the language-model service.
// The service is untrusted: every reply is validated against the expected
// shape and range, and a reply that cannot be used degrades to a fallback
// record surfaced as data, never as an error.
type Oracle struct {
	transport          Transport
	model              string
	maxTranscriptChars int
}

func NewOracle(transport Transport, model string) *Oracle {
	return &Oracle{
		transport:          transport,
		model:              model,
		maxTranscriptChars: 80_000,
	}
}

// fallbackTopic labels records synthesized when the oracle's reply is unusable.
const fallbackTopic = "Uncategorized"

type chunkReply struct {
	Topic     string  `json:"topic"`
	Sentiment float64 `json:"sentiment"`
	Rationale string  `json:"rationale"`
}

type breakdownTopic struct {
	Topic     string  `json:"topic"`
	Sentiment float64 `json:"sentiment"`
	Minutes   float64 `json:"minutes"`
	Rationale string  `json:"rationale"`
}

type breakdownReply struct {
	Topics []breakdownTopic `json:"topics"`
}

var chunkReplySchema = provider.GenerateSchema[chunkReply]()
var breakdownReplySchema = provider.GenerateSchema[breakdownReply]()

// ChunkAnalysis is the oracle's judgment of one transcript chunk.
type ChunkAnalysis struct {
	Topic     string
	Sentiment float64
	Rationale string
	Fallback  bool
}

// AnalyzeChunks issues one oracle call per chunk, in order. A failed call does
// not abort sibling calls; it yields a neutral fallback analysis for that
// chunk only.
func (o *Oracle) AnalyzeChunks(ctx context.Context, chunks []TranscriptChunk) []ChunkAnalysis {
	out := make([]ChunkAnalysis, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, o.analyzeChunk(ctx, c))
	}
	return out
}

func (o *Oracle) analyzeChunk(ctx context.Context, chunk TranscriptChunk) ChunkAnalysis {
	raw, err := o.transport.Complete(ctx, provider.Request{
		Model:        o.model,
		Instructions: chunkOracleInstructions,
		Input:        buildChunkPrompt(chunk.Text),
		SchemaName:   "ChunkAnalysis",
		SchemaDesc:   "Topic and sentiment for one transcript chunk",
		Schema:       chunkReplySchema,
	})
	if err != nil {
		return fallbackChunk(fmt.Sprintf("oracle %s: %v", provider.Classify(err), err))
	}

	var reply chunkReply
	if err := fileutils.DecodeModelJSON(raw, &reply); err != nil {
		return fallbackChunk(fmt.Sprintf("oracle response could not be parsed: %v; raw: %s",
			err, fileutils.Truncate(raw, 200)))
	}

	topic := fileutils.Truncate(reply.Topic, maxTopicLabelLen)
	if topic == "" {
		return fallbackChunk("oracle response missing topic label")
	}
	if !validSentiment(reply.Sentiment) {
		return fallbackChunk(fmt.Sprintf("oracle sentiment %v outside [-1, 1]", reply.Sentiment))
	}

	return ChunkAnalysis{
		Topic:     topic,
		Sentiment: reply.Sentiment,
		Rationale: strings.TrimSpace(reply.Rationale),
	}
}

func fallbackChunk(reason string) ChunkAnalysis {
	return ChunkAnalysis{Topic: fallbackTopic, Sentiment: 0, Rationale: reason, Fallback: true}
}

// AnalyzeFullTranscript issues a single call over the (possibly clipped)
// transcript, asking the oracle to self-partition it into topics whose
// durations sum to the estimated total speaking time. An unusable reply
// degrades to one whole-transcript fallback record.
func (o *Oracle) AnalyzeFullTranscript(ctx context.Context, text string, wordsPerMinute int) OracleOutcome {
	totalWords := WordCount(text)
	totalMinutes := EstimateMinutes(totalWords, wordsPerMinute)

	raw, err := o.transport.Complete(ctx, provider.Request{
		Model:        o.model,
		Instructions: transcriptOracleInstructions,
		Input:        buildTranscriptPrompt(o.clip(text), totalMinutes),
		SchemaName:   "TopicBreakdown",
		SchemaDesc:   "Per-topic sentiment and duration for a full transcript",
		Schema:       breakdownReplySchema,
	})
	if err != nil {
		return fallbackTranscript(totalWords, totalMinutes,
			fmt.Sprintf("oracle %s: %v", provider.Classify(err), err))
	}

	records, perr := parseBreakdown(raw, nil, wordsPerMinute)
	if perr != nil {
		return fallbackTranscript(totalWords, totalMinutes, perr.Error())
	}
	return OracleOutcome{Records: records}
}

// AnalyzeWithCustomTopics is AnalyzeFullTranscript with the topic set fixed by
// the caller. The oracle must classify content into exactly these labels; a
// reply naming any other label is treated as invalid. An unusable reply
// degrades to one neutral record per requested topic with the size evenly
// divided.
func (o *Oracle) AnalyzeWithCustomTopics(ctx context.Context, text string, topics []string, wordsPerMinute int) OracleOutcome {
	totalWords := WordCount(text)
	totalMinutes := EstimateMinutes(totalWords, wordsPerMinute)

	if len(topics) == 0 {
		return OracleOutcome{Fallback: true, Reason: "no topics requested"}
	}

	raw, err := o.transport.Complete(ctx, provider.Request{
		Model:        o.model,
		Instructions: customTopicsOracleInstructions,
		Input:        buildCustomTopicsPrompt(o.clip(text), topics, totalMinutes),
		SchemaName:   "TopicBreakdown",
		SchemaDesc:   "Per-topic sentiment and duration for the requested topic set",
		Schema:       breakdownReplySchema,
	})
	if err != nil {
		return fallbackCustom(topics, totalWords, totalMinutes,
			fmt.Sprintf("oracle %s: %v", provider.Classify(err), err))
	}

	records, perr := parseBreakdown(raw, topics, wordsPerMinute)
	if perr != nil {
		return fallbackCustom(topics, totalWords, totalMinutes, perr.Error())
	}
	return OracleOutcome{Records: records}
}

// parseBreakdown validates a full-transcript reply. When allowed is non-nil,
// every returned label must be a member of it. Any shape, range, or label
// violation invalidates the whole reply.
func parseBreakdown(raw string, allowed []string, wordsPerMinute int) ([]TopicRecord, error) {
	var reply breakdownReply
	if err := fileutils.DecodeModelJSON(raw, &reply); err != nil {
		return nil, fmt.Errorf("oracle response could not be parsed: %v; raw: %s",
			err, fileutils.Truncate(raw, 200))
	}
	if len(reply.Topics) == 0 {
		return nil, fmt.Errorf("oracle response contained no topics")
	}

	var allowedSet map[string]bool
	var seen map[string]bool
	if allowed != nil {
		allowedSet = make(map[string]bool, len(allowed))
		for _, t := range allowed {
			allowedSet[t] = true
		}
		seen = make(map[string]bool, len(allowed))
	}

	records := make([]TopicRecord, 0, len(reply.Topics))
	for _, t := range reply.Topics {
		topic := fileutils.Truncate(t.Topic, maxTopicLabelLen)
		if topic == "" {
			return nil, fmt.Errorf("oracle response contained an unnamed topic")
		}
		if allowedSet != nil {
			if !allowedSet[topic] {
				return nil, fmt.Errorf("oracle response named unrequested topic %q", topic)
			}
			seen[topic] = true
		}
		if !validSentiment(t.Sentiment) {
			return nil, fmt.Errorf("oracle sentiment %v for %q outside [-1, 1]", t.Sentiment, topic)
		}
		if math.IsNaN(t.Minutes) || t.Minutes < 0 {
			return nil, fmt.Errorf("oracle minutes %v for %q is not a non-negative number", t.Minutes, topic)
		}
		records = append(records, TopicRecord{
			Topic:     topic,
			Sentiment: t.Sentiment,
			Minutes:   t.Minutes,
			WordCount: int(math.Round(t.Minutes * float64(wordsPerMinute))),
			Rationale: strings.TrimSpace(t.Rationale),
		})
	}
	// Every requested label must come back, even if only as a zero-minutes
	// entry; a silently dropped label is a shape violation.
	for _, t := range allowed {
		if !seen[t] {
			return nil, fmt.Errorf("oracle response omitted requested topic %q", t)
		}
	}
	return records, nil
}

func fallbackTranscript(totalWords int, totalMinutes float64, reason string) OracleOutcome {
	return OracleOutcome{
		Fallback: true,
		Reason:   reason,
		Records: []TopicRecord{{
			Topic:     fallbackTopic,
			Sentiment: 0,
			Minutes:   totalMinutes,
			WordCount: totalWords,
			Rationale: reason,
		}},
	}
}

func fallbackCustom(topics []string, totalWords int, totalMinutes float64, reason string) OracleOutcome {
	reason = reason + "; size evenly divided across requested topics"
	records := make([]TopicRecord, 0, len(topics))
	for _, t := range topics {
		records = append(records, TopicRecord{
			Topic:     t,
			Sentiment: 0,
			Minutes:   totalMinutes / float64(len(topics)),
			WordCount: totalWords / len(topics),
			Rationale: reason,
		})
	}
	return OracleOutcome{Fallback: true, Reason: reason, Records: records}
}

func (o *Oracle) clip(text string) string {
	return fileutils.Truncate(text, o.maxTranscriptChars)
}

// validSentiment rejects out-of-range and non-finite scores. Clamping valid
// but boundary-exceeding numbers is the Aggregator's job; at this layer an
// out-of-range score invalidates the reply.
func validSentiment(s float64) bool {
	return !math.IsNaN(s) && s >= -1 && s <= 1
}
