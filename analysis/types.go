package analysis

import "strings"

const (
	// DefaultWordsPerMinute is the speaking-rate estimate used to convert word
	// counts into minutes.
	DefaultWordsPerMinute = 155

	// DefaultMaxTopics caps how many topic records survive aggregation.
	DefaultMaxTopics = 10

	// DefaultChunkWords bounds the size of one transcript chunk.
	DefaultChunkWords = 180

	// maxTopicLabelLen caps topic labels coming back from the oracle.
	maxTopicLabelLen = 60
)

// TranscriptChunk is an ordered, non-overlapping slice of the source transcript,
// bounded by a maximum word count. Chunks never span a paragraph boundary unless
// the paragraph itself exceeds the bound.
type TranscriptChunk struct {
	Index int
	Text  string
	Words int
}

// TopicRecord is the canonical unit of output: one topic with its sentiment,
// size metrics, and the oracle's justification. The field names are an external
// schema contract with the results dashboard; do not rename them.
type TopicRecord struct {
	Topic     string  `json:"topic"`
	Sentiment float64 `json:"sentiment"`
	Minutes   float64 `json:"minutes"`
	WordCount int     `json:"word_count"`
	Rationale string  `json:"rationale"`
}

// Size is the metric driving treemap area: elapsed minutes when available,
// otherwise the raw word count.
func (r TopicRecord) Size() float64 {
	if r.Minutes > 0 {
		return r.Minutes
	}
	return float64(r.WordCount)
}

// AnalysisResult is an ordered sequence of topic records. Order is significant:
// it drives treemap read order and truncation.
type AnalysisResult []TopicRecord

// TotalMinutes sums the elapsed-time metric over all records.
func (res AnalysisResult) TotalMinutes() float64 {
	var total float64
	for _, r := range res {
		total += r.Minutes
	}
	return total
}

// TotalWords sums the word-count metric over all records.
func (res AnalysisResult) TotalWords() int {
	var total int
	for _, r := range res {
		total += r.WordCount
	}
	return total
}

// MinSentiment returns the smallest sentiment in the result set, or 0 for an
// empty result.
func (res AnalysisResult) MinSentiment() float64 {
	if len(res) == 0 {
		return 0
	}
	min := res[0].Sentiment
	for _, r := range res[1:] {
		if r.Sentiment < min {
			min = r.Sentiment
		}
	}
	return min
}

// OracleOutcome is the tagged result of one oracle interaction: either records
// parsed from a valid response, or locally synthesized fallback records together
// with the reason the response could not be used. Callers must handle both.
type OracleOutcome struct {
	Records  []TopicRecord
	Fallback bool
	Reason   string
}

// TopicSourceKind selects how the topic set for a full-transcript analysis is
// determined.
type TopicSourceKind int

const (
	// TopicsDiscovered lets the oracle self-partition the transcript.
	TopicsDiscovered TopicSourceKind = iota
	// TopicsFixed uses the built-in earnings-call topic preset.
	TopicsFixed
	// TopicsCustom uses a caller-supplied label set.
	TopicsCustom
)

// TopicSource is one of three topic-selection strategies sharing the same
// aggregation and render stages.
type TopicSource struct {
	Kind   TopicSourceKind
	Labels []string
}

func DiscoveredTopics() TopicSource {
	return TopicSource{Kind: TopicsDiscovered}
}

func FixedTopics() TopicSource {
	return TopicSource{Kind: TopicsFixed, Labels: append([]string(nil), TopicPreset...)}
}

func CustomTopics(labels []string) TopicSource {
	cleaned := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	return TopicSource{Kind: TopicsCustom, Labels: cleaned}
}

// TopicPreset is the built-in earnings-call topic set used by TopicsFixed.
var TopicPreset = []string{
	"Operating Costs",
	"Technology",
	"EBITDA",
	"Net Income",
	"Guidance",
	"Capital",
	"Revenue",
	"Products",
	"Debt",
	"Sales",
	"Customers",
	"Govt.",
	"Margins",
	"Market Share",
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateMinutes converts a word count into speaking minutes at the given rate.
func EstimateMinutes(words, wordsPerMinute int) float64 {
	if wordsPerMinute < 1 {
		wordsPerMinute = 1
	}
	return float64(words) / float64(wordsPerMinute)
}
