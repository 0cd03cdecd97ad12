package analysis

import "strings"

// Segment splits raw transcript text into analyzable chunks. Blank-line
// paragraph boundaries are honored first; a paragraph exceeding maxWords is
// sub-split at fixed word-count intervals with no sentence awareness. The
// function is pure: the same input always yields the same chunks.
//
// Empty or whitespace-only text yields an empty slice; the pipeline treats
// that as ErrNoContent, not as a silent empty result.
func Segment(text string, maxWords int) []TranscriptChunk {
	if maxWords < 1 {
		maxWords = DefaultChunkWords
	}

	var chunks []TranscriptChunk
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		words := strings.Fields(para)
		for i := 0; i < len(words); i += maxWords {
			end := i + maxWords
			if end > len(words) {
				end = len(words)
			}
			segment := strings.Join(words[i:end], " ")
			chunks = append(chunks, TranscriptChunk{
				Index: len(chunks),
				Text:  segment,
				Words: end - i,
			})
		}
	}
	return chunks
}
