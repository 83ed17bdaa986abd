package translator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"

	"tamilpdf/internal/types"
)

// CacheEntry stores one translated chunk keyed by the hash of its source text.
type CacheEntry struct {
	Hash        string    `json:"hash"`
	Original    string    `json:"original"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}

// cacheFile is the on-disk cache format.
type cacheFile struct {
	Version string       `json:"version"`
	Entries []CacheEntry `json:"entries"`
}

// Cache persists chunk translations so re-runs over the same pages skip
// already translated text.
type Cache struct {
	cachePath string
	cache     map[string]CacheEntry
	mu        sync.RWMutex
}

// NewCache creates a translation cache. An empty path disables persistence;
// the cache still deduplicates within a run.
func NewCache(cachePath string) *Cache {
	return &Cache{
		cachePath: cachePath,
		cache:     make(map[string]CacheEntry),
	}
}

// ComputeHash returns the SHA-256 hex digest of text.
func ComputeHash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// Get returns the cached translation for text, if present.
func (c *Cache) Get(text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[ComputeHash(text)]
	if !ok {
		return "", false
	}
	return entry.Translation, true
}

// Set stores a translation for text.
func (c *Cache) Set(text, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := ComputeHash(text)
	c.cache[hash] = CacheEntry{
		Hash:        hash,
		Original:    text,
		Translation: translation,
		CreatedAt:   time.Now(),
	}
}

// FilterCached partitions chunks into those with a cached translation and
// those still needing an API call. The hits map is keyed by chunk text.
func (c *Cache) FilterCached(chunks []string) (hits map[string]string, misses []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits = make(map[string]string)
	for _, chunk := range chunks {
		if entry, ok := c.cache[ComputeHash(chunk)]; ok {
			hits[chunk] = entry.Translation
		} else {
			misses = append(misses, chunk)
		}
	}
	return hits, misses
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Load reads the cache file. A missing file leaves the cache empty.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cachePath == "" {
		return nil
	}
	if _, err := os.Stat(c.cachePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return types.NewAppError(types.ErrCache, "failed to read cache file", err)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return types.NewAppError(types.ErrCache, "failed to parse cache file", err)
	}

	c.cache = make(map[string]CacheEntry, len(cf.Entries))
	for _, entry := range cf.Entries {
		c.cache[entry.Hash] = entry
	}
	return nil
}

// Save writes the cache to its file.
func (c *Cache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cachePath == "" {
		return nil
	}

	entries := make([]CacheEntry, 0, len(c.cache))
	for _, entry := range c.cache {
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(cacheFile{Version: "1.0", Entries: entries}, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrCache, "failed to marshal cache", err)
	}

	if err := os.WriteFile(c.cachePath, data, 0644); err != nil {
		return types.NewAppError(types.ErrCache, "failed to write cache file", err)
	}
	return nil
}
