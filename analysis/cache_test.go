package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewCache(t.TempDir())
	key := CacheKey("transcript text", "chunks", "gpt-4o-mini", 155, 10, 180, nil)

	if _, ok := c.Get(key); ok {
		t.Fatalf("unexpected hit on empty cache")
	}

	res := AnalysisResult{{Topic: "Revenue", Sentiment: 0.5, Minutes: 3, WordCount: 465}}
	if err := c.Put(key, res); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected hit after Put")
	}
	if len(got) != 1 || got[0].Topic != "Revenue" || got[0].WordCount != 465 {
		t.Fatalf("got %+v", got)
	}
}

func TestCacheKeySensitivity(t *testing.T) {
	t.Parallel()

	base := CacheKey("text", "chunks", "gpt-4o-mini", 155, 10, 180, nil)
	variants := []string{
		CacheKey("text changed", "chunks", "gpt-4o-mini", 155, 10, 180, nil),
		CacheKey("text", "transcript", "gpt-4o-mini", 155, 10, 180, nil),
		CacheKey("text", "chunks", "gpt-4o", 155, 10, 180, nil),
		CacheKey("text", "chunks", "gpt-4o-mini", 130, 10, 180, nil),
		CacheKey("text", "chunks", "gpt-4o-mini", 155, 5, 180, nil),
		CacheKey("text", "chunks", "gpt-4o-mini", 155, 10, 120, nil),
		CacheKey("text", "chunks", "gpt-4o-mini", 155, 10, 180, []string{"Debt"}),
	}
	for i, v := range variants {
		if v == base {
			t.Fatalf("variant %d collides with base key", i)
		}
	}

	again := CacheKey("text", "chunks", "gpt-4o-mini", 155, 10, 180, nil)
	if again != base {
		t.Fatalf("key not deterministic")
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := NewCache(dir)
	key := CacheKey("t", "chunks", "m", 155, 10, 180, nil)
	if err := os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatalf("corrupt entry should be a miss")
	}
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := NewCache(dir)
	key := CacheKey("t", "chunks", "m", 155, 10, 180, nil)
	if err := c.Put(key, AnalysisResult{{Topic: "A", WordCount: 1}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatalf("hit after Clear")
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	t.Parallel()

	var c *Cache
	if _, ok := c.Get("k"); ok {
		t.Fatalf("nil cache returned a hit")
	}
	if err := c.Put("k", AnalysisResult{{Topic: "A"}}); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear on nil cache: %v", err)
	}
}
