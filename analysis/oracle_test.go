package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/quarterglass/earnviz/analysis/provider"
)

// stubTransport replays canned replies (or errors) in call order.
type stubTransport struct {
	replies []string
	errs    []error
	calls   int
	reqs    []provider.Request
}

func (s *stubTransport) Complete(_ context.Context, req provider.Request) (string, error) {
	i := s.calls
	s.calls++
	s.reqs = append(s.reqs, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("stubTransport: no reply configured")
}

func TestAnalyzeChunks_ParsesValidReply(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		`{"topic":"Revenue Growth","sentiment":0.8,"rationale":"double-digit growth"}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	got := o.AnalyzeChunks(context.Background(), []TranscriptChunk{{Text: "very positive quarter", Words: 3}})
	if len(got) != 1 {
		t.Fatalf("len=%d", len(got))
	}
	a := got[0]
	if a.Fallback {
		t.Fatalf("unexpected fallback: %q", a.Rationale)
	}
	if a.Topic != "Revenue Growth" || a.Sentiment != 0.8 || a.Rationale != "double-digit growth" {
		t.Fatalf("analysis=%+v", a)
	}
}

func TestAnalyzeChunks_NotJSONFallsBack(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{"not json"}}
	o := NewOracle(st, "gpt-4o-mini")

	got := o.AnalyzeChunks(context.Background(), []TranscriptChunk{{Text: "whatever", Words: 1}})
	a := got[0]
	if !a.Fallback {
		t.Fatalf("expected fallback")
	}
	if a.Topic != "Uncategorized" || a.Sentiment != 0.0 {
		t.Fatalf("analysis=%+v", a)
	}
	if !strings.Contains(a.Rationale, "could not be parsed") {
		t.Fatalf("rationale=%q", a.Rationale)
	}
}

func TestAnalyzeChunks_OutOfRangeSentimentFallsBackNotClamps(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		`{"topic":"Margins","sentiment":1.7,"rationale":"x"}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	a := o.AnalyzeChunks(context.Background(), []TranscriptChunk{{Text: "t", Words: 1}})[0]
	if !a.Fallback {
		t.Fatalf("expected fallback, got %+v", a)
	}
	if a.Sentiment != 0 {
		t.Fatalf("Sentiment=%v, want neutral fallback", a.Sentiment)
	}
}

func TestAnalyzeChunks_NonNumericSentimentFallsBack(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		`{"topic":"Margins","sentiment":"very positive","rationale":"x"}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	a := o.AnalyzeChunks(context.Background(), []TranscriptChunk{{Text: "t", Words: 1}})[0]
	if !a.Fallback {
		t.Fatalf("expected fallback, got %+v", a)
	}
}

func TestAnalyzeChunks_TransportFailureDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	st := &stubTransport{
		errs: []error{errors.New("dial tcp: connection refused"), nil},
		replies: []string{
			"",
			`{"topic":"Risk","sentiment":-0.6,"rationale":"headwinds"}`,
		},
	}
	o := NewOracle(st, "gpt-4o-mini")

	got := o.AnalyzeChunks(context.Background(), []TranscriptChunk{
		{Text: "first", Words: 1},
		{Text: "second", Words: 1},
	})
	if st.calls != 2 {
		t.Fatalf("calls=%d, want 2", st.calls)
	}
	if !got[0].Fallback {
		t.Fatalf("first analysis should be fallback")
	}
	if !strings.Contains(got[0].Rationale, "transport failure") {
		t.Fatalf("rationale=%q", got[0].Rationale)
	}
	if got[1].Fallback || got[1].Topic != "Risk" {
		t.Fatalf("second analysis=%+v", got[1])
	}
}

func TestAnalyzeFullTranscript_ParsesBreakdown(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		`{"topics":[
			{"topic":"Revenue","sentiment":0.5,"minutes":4.0,"rationale":"up yoy"},
			{"topic":"Debt","sentiment":-0.3,"minutes":2.0,"rationale":"leverage high"}
		]}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	out := o.AnalyzeFullTranscript(context.Background(), strings.Repeat("word ", 930), 155)
	if out.Fallback {
		t.Fatalf("unexpected fallback: %s", out.Reason)
	}
	if len(out.Records) != 2 {
		t.Fatalf("records=%d", len(out.Records))
	}
	r := out.Records[0]
	if r.Topic != "Revenue" || r.Minutes != 4.0 {
		t.Fatalf("record=%+v", r)
	}
	if r.WordCount != 620 {
		t.Fatalf("WordCount=%d, want minutes*wpm=620", r.WordCount)
	}
}

func TestAnalyzeFullTranscript_FallbackIsSingleWholeTranscriptRecord(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{"sorry, I cannot help with that"}}
	o := NewOracle(st, "gpt-4o-mini")

	text := strings.Repeat("word ", 310)
	out := o.AnalyzeFullTranscript(context.Background(), text, 155)
	if !out.Fallback {
		t.Fatalf("expected fallback")
	}
	if len(out.Records) != 1 {
		t.Fatalf("records=%d, want 1", len(out.Records))
	}
	r := out.Records[0]
	if r.Topic != "Uncategorized" || r.Sentiment != 0 {
		t.Fatalf("record=%+v", r)
	}
	if math.Abs(r.Minutes-2.0) > 1e-9 || r.WordCount != 310 {
		t.Fatalf("size=%v min / %d words, want full transcript", r.Minutes, r.WordCount)
	}
}

func TestAnalyzeWithCustomTopics_RequestNamesTopics(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		`{"topics":[
			{"topic":"Guidance","sentiment":0.2,"minutes":3.0,"rationale":"raised"},
			{"topic":"Debt","sentiment":0,"minutes":0,"rationale":"not discussed"}
		]}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	out := o.AnalyzeWithCustomTopics(context.Background(), "some transcript text", []string{"Guidance", "Debt"}, 155)
	if out.Fallback {
		t.Fatalf("unexpected fallback: %s", out.Reason)
	}
	if len(out.Records) != 2 {
		t.Fatalf("records=%d", len(out.Records))
	}
	req := st.reqs[0]
	if !strings.Contains(req.Input, "Guidance, Debt") {
		t.Fatalf("prompt missing topic list: %q", req.Input)
	}
}

func TestAnalyzeWithCustomTopics_UnrequestedLabelInvalidatesReply(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		`{"topics":[{"topic":"Weather","sentiment":0.1,"minutes":1,"rationale":"x"}]}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	out := o.AnalyzeWithCustomTopics(context.Background(), "text", []string{"Guidance"}, 155)
	if !out.Fallback {
		t.Fatalf("expected fallback")
	}
	if !strings.Contains(out.Reason, "unrequested topic") {
		t.Fatalf("reason=%q", out.Reason)
	}
}

func TestAnalyzeWithCustomTopics_OmittedLabelInvalidatesReply(t *testing.T) {
	t.Parallel()

	// "Debt" must come back even as a zero-minutes entry; dropping it is a
	// shape violation.
	st := &stubTransport{replies: []string{
		`{"topics":[{"topic":"Guidance","sentiment":0.2,"minutes":3.0,"rationale":"raised"}]}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	out := o.AnalyzeWithCustomTopics(context.Background(), "text", []string{"Guidance", "Debt"}, 155)
	if !out.Fallback {
		t.Fatalf("expected fallback")
	}
	if !strings.Contains(out.Reason, `omitted requested topic "Debt"`) {
		t.Fatalf("reason=%q", out.Reason)
	}
	if len(out.Records) != 2 {
		t.Fatalf("records=%d, want one per requested topic", len(out.Records))
	}
}

func TestAnalyzeFullTranscript_NegativeMinutesInvalidatesReply(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		`{"topics":[{"topic":"Revenue","sentiment":0.5,"minutes":-2.0,"rationale":"x"}]}`,
	}}
	o := NewOracle(st, "gpt-4o-mini")

	out := o.AnalyzeFullTranscript(context.Background(), "some words here", 155)
	if !out.Fallback {
		t.Fatalf("expected fallback")
	}
	if !strings.Contains(out.Reason, "not a non-negative number") {
		t.Fatalf("reason=%q", out.Reason)
	}
}

func TestAnalyzeWithCustomTopics_FallbackDividesSizeEvenly(t *testing.T) {
	t.Parallel()

	st := &stubTransport{errs: []error{errors.New("HTTP 500 internal server error")}}
	o := NewOracle(st, "gpt-4o-mini")

	text := strings.Repeat("word ", 620)
	out := o.AnalyzeWithCustomTopics(context.Background(), text, []string{"A", "B", "C", "D"}, 155)
	if !out.Fallback {
		t.Fatalf("expected fallback")
	}
	if len(out.Records) != 4 {
		t.Fatalf("records=%d, want one per requested topic", len(out.Records))
	}
	for _, r := range out.Records {
		if r.Sentiment != 0 {
			t.Fatalf("sentiment=%v, want neutral", r.Sentiment)
		}
		if math.Abs(r.Minutes-1.0) > 1e-9 {
			t.Fatalf("minutes=%v, want even split of 4.0", r.Minutes)
		}
		if !strings.Contains(r.Rationale, "server error") {
			t.Fatalf("rationale=%q", r.Rationale)
		}
		if !strings.Contains(r.Rationale, "evenly divided") {
			t.Fatalf("rationale=%q", r.Rationale)
		}
	}
}

func TestAnalyzeChunks_ProseWrappedJSONStillParses(t *testing.T) {
	t.Parallel()

	st := &stubTransport{replies: []string{
		"Sure! Here is the analysis:\n{\"topic\":\"Sales\",\"sentiment\":0.4,\"rationale\":\"steady\"}\nLet me know if you need more.",
	}}
	o := NewOracle(st, "gpt-4o-mini")

	a := o.AnalyzeChunks(context.Background(), []TranscriptChunk{{Text: "t", Words: 1}})[0]
	if a.Fallback {
		t.Fatalf("fallback: %q", a.Rationale)
	}
	if a.Topic != "Sales" {
		t.Fatalf("Topic=%q", a.Topic)
	}
}
