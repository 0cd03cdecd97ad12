package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quarterglass/earnviz/analysis/fileutils"
)

// Cache stores finished analysis results on disk, keyed by a content hash of
// the transcript and every parameter that influences the result. A nil Cache
// (or one with an empty Dir) is a no-op.
type Cache struct {
	Dir string
}

func NewCache(dir string) *Cache {
	if dir == "" {
		return nil
	}
	return &Cache{Dir: dir}
}

// CacheKey derives the cache key for one analysis run. Any change to the
// transcript text or to a result-shaping parameter yields a different key.
func CacheKey(transcript, mode, model string, wordsPerMinute, maxTopics, maxChunkWords int, topics []string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%d\x00%d\x00%s",
		transcript, mode, model, wordsPerMinute, maxTopics, maxChunkWords,
		strings.Join(topics, "\x00"))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached result for key, if present and readable. A corrupt
// entry is treated as a miss.
func (c *Cache) Get(key string) (AnalysisResult, bool) {
	if c == nil || c.Dir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var res AnalysisResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	if len(res) == 0 {
		return nil, false
	}
	return res, true
}

func (c *Cache) Put(key string, res AnalysisResult) error {
	if c == nil || c.Dir == "" {
		return nil
	}
	return fileutils.WriteJSONFileAtomic(c.path(key), res, false)
}

// Clear removes every cache entry. The directory itself is kept.
func (c *Cache) Clear() error {
	if c == nil || c.Dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil {
			return fmt.Errorf("removing cache entry %s: %w", e.Name(), err)
		}
	}
	return nil
}
