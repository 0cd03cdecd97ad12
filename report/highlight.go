package report

import "strings"

// Sentence tones used to style transcript sentences in the report.
const (
	TonePositive = "positive"
	ToneNegative = "negative"
	ToneNeutral  = "neutral"
)

var positiveWords = []string{
	"positive", "growth", "increase", "strong", "improve", "success",
	"profit", "revenue", "gain", "up", "higher", "better",
}

var negativeWords = []string{
	"negative", "decline", "decrease", "weak", "worse", "loss",
	"risk", "challenge", "down", "lower", "concern", "problem",
}

// Sentence is one transcript sentence with its keyword-derived tone.
type Sentence struct {
	Text string
	Tone string
}

// HighlightSentences splits the transcript on sentence boundaries and tags
// each sentence by keyword matching. A sentence mentioning both positive and
// negative keywords stays neutral.
func HighlightSentences(text string) []Sentence {
	parts := strings.Split(text, ". ")
	out := make([]Sentence, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasSuffix(p, ".") {
			p += "."
		}
		out = append(out, Sentence{Text: p, Tone: classifyTone(p)})
	}
	return out
}

func classifyTone(sentence string) string {
	lower := strings.ToLower(sentence)
	pos := containsAny(lower, positiveWords)
	neg := containsAny(lower, negativeWords)
	switch {
	case pos && !neg:
		return TonePositive
	case neg && !pos:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
