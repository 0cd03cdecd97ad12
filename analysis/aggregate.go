package analysis

import "sort"

// Aggregate merges topic records into one ordered result set. Records sharing
// an exact (case-sensitive) topic label are merged: sentiment is the arithmetic
// mean of the constituents, sizes are summed, and the first non-empty rationale
// wins. Final sentiments are clipped to [-1, 1]. Records are sorted descending
// by size metric with a stable sort (ties keep insertion order), then truncated
// to maxTopics, dropping the smallest tail.
//
// An empty input yields an empty result; callers decide whether that is an
// error condition.
func Aggregate(records []TopicRecord, maxTopics int) AnalysisResult {
	if len(records) == 0 {
		return nil
	}

	type group struct {
		rec          TopicRecord
		sentimentSum float64
		count        int
	}

	index := make(map[string]int, len(records))
	groups := make([]*group, 0, len(records))
	for _, r := range records {
		i, ok := index[r.Topic]
		if !ok {
			index[r.Topic] = len(groups)
			groups = append(groups, &group{rec: r, sentimentSum: r.Sentiment, count: 1})
			continue
		}
		g := groups[i]
		g.sentimentSum += r.Sentiment
		g.count++
		g.rec.Minutes += r.Minutes
		g.rec.WordCount += r.WordCount
		if g.rec.Rationale == "" {
			g.rec.Rationale = r.Rationale
		}
	}

	out := make(AnalysisResult, 0, len(groups))
	for _, g := range groups {
		g.rec.Sentiment = clipSentiment(g.sentimentSum / float64(g.count))
		out = append(out, g.rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size() > out[j].Size()
	})

	if maxTopics > 0 && len(out) > maxTopics {
		out = out[:maxTopics]
	}
	return out
}

// clipSentiment clamps a sentiment value to [-1, 1]. Clipping is idempotent.
func clipSentiment(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
