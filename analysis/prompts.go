package analysis

import (
	"fmt"
	"strings"
)

const chunkOracleInstructions = `You analyze earnings call transcript chunks. For each chunk, return a concise
topic label summarizing the main theme and a sentiment score in [-1, 1].

The score should reflect positive vs negative tone regarding company performance,
outlook, risks, and opportunities. Avoid lexical heuristics; base your judgment on
the described outcomes and tone. Keep the rationale short.

Return strict JSON with keys: topic, sentiment, rationale.`

func buildChunkPrompt(chunk string) string {
	return "Transcript chunk:\n\n" + strings.TrimSpace(chunk)
}

const transcriptOracleInstructions = `You analyze complete earnings call transcripts. Identify the 8-15 key topics
actually discussed and judge each one.

For each topic provide:
- topic: a specific, concise label of at most a few words (e.g. "Operating Costs", "Net Income")
- sentiment: a score from -1.0 (very negative) to 1.0 (very positive) reflecting the tone of that topic's discussion
- minutes: the estimated speaking time spent on the topic
- rationale: 1-2 sentences explaining why the score was assigned

Guidelines:
- Base sentiment on described outcomes and tone, not keyword matching.
- Consider financial performance, strategic initiatives, and market positioning.
- Do not include generic topics like "Introduction" or "Conclusion".
- The minutes across all topics must sum to approximately the total speaking time stated in the request.

Return strict JSON with a single key "topics" holding the array.`

func buildTranscriptPrompt(text string, totalMinutes float64) string {
	return fmt.Sprintf("Estimated total speaking time: %.1f minutes.\n\nTranscript:\n\n%s",
		totalMinutes, strings.TrimSpace(text))
}

const customTopicsOracleInstructions = `You analyze complete earnings call transcripts against a fixed topic list
supplied in the request. Classify the discussion into exactly these topics.

For each provided topic report:
- topic: the topic name exactly as listed; do not change, add, or drop labels
- sentiment: a score from -1.0 (very negative) to 1.0 (very positive) for that topic's discussion
- minutes: the estimated speaking time spent on the topic
- rationale: 1-2 sentences explaining why the score was assigned

Guidelines:
- Base sentiment on described outcomes and tone, not keyword matching.
- For a topic that is not discussed at all, report sentiment 0 and minutes 0.
- The minutes across all topics must sum to approximately the total speaking time stated in the request.

Return strict JSON with a single key "topics" holding one entry per provided topic.`

func buildCustomTopicsPrompt(text string, topics []string, totalMinutes float64) string {
	return fmt.Sprintf("Topics to analyze: %s\nEstimated total speaking time: %.1f minutes.\n\nTranscript:\n\n%s",
		strings.Join(topics, ", "), totalMinutes, strings.TrimSpace(text))
}
