package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tamilpdf/internal/logger"
	"tamilpdf/internal/types"
)

// failedChunkPrefixLen bounds, in runes, how much of a failed chunk appears
// in its placeholder.
const failedChunkPrefixLen = 100

// ProgressFunc reports chunk translation progress as (done, total).
type ProgressFunc func(done, total int)

// Translator splits text into chunks and translates them through an engine,
// with rate limiting, retries, and caching.
type Translator struct {
	engine       Engine
	limiter      *rate.Limiter
	cache        *Cache
	maxChunkSize int
	maxRetries   int
	documentMode bool
	onProgress   ProgressFunc
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithCache supplies a translation cache.
func WithCache(cache *Cache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithMaxRetries overrides the per-chunk retry count.
func WithMaxRetries(n int) TranslatorOption {
	return func(t *Translator) {
		if n > 0 {
			t.maxRetries = n
		}
	}
}

// WithDocumentMode sends the whole text as a single request instead of
// chunking it.
func WithDocumentMode(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.documentMode = enabled
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) TranslatorOption {
	return func(t *Translator) {
		t.onProgress = fn
	}
}

// NewTranslator creates a Translator over the given engine. requestsPerMinute
// and maxChunkSize fall back to sane values when non-positive.
func NewTranslator(engine Engine, requestsPerMinute, maxChunkSize int, opts ...TranslatorOption) *Translator {
	if maxChunkSize <= 0 {
		maxChunkSize = 6000
	}
	t := &Translator{
		engine:       engine,
		limiter:      NewLimiter(requestsPerMinute),
		cache:        NewCache(""),
		maxChunkSize: maxChunkSize,
		maxRetries:   DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate translates text to English. It returns an error only when every
// chunk fails; individual failures are replaced with a placeholder so the
// surrounding pages survive.
func (t *Translator) Translate(ctx context.Context, text string) (string, *types.TranslationStats, error) {
	stats := &types.TranslationStats{}

	if strings.TrimSpace(text) == "" {
		return "", stats, nil
	}

	if t.documentMode {
		translated, err := t.translateChunk(ctx, text)
		stats.Chunks = 1
		if err != nil {
			stats.FailedChunks = 1
			return "", stats, types.NewAppError(types.ErrTranslation, "document translation failed", err)
		}
		stats.TokensUsed = t.tokensUsed()
		return translated, stats, nil
	}

	chunks := SplitText(text, t.maxChunkSize)
	stats.Chunks = len(chunks)
	if len(chunks) == 0 {
		return "", stats, nil
	}

	hits, misses := t.cache.FilterCached(chunks)
	logger.Info("starting chunked translation",
		logger.String("engine", t.engine.Name()),
		logger.Int("chunks", len(chunks)),
		logger.Int("cached", len(hits)),
		logger.Int("pending", len(misses)))

	results := make([]string, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", stats, err
		}

		cached, ok := hits[chunk]
		if !ok {
			// Duplicate chunks translated earlier in this run hit the
			// cache even though the prefilter missed them.
			cached, ok = t.cache.Get(chunk)
		}
		if ok {
			results[i] = cached
			stats.CachedChunks++
			t.reportProgress(i+1, len(chunks))
			continue
		}

		translated, err := t.translateChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return "", stats, ctx.Err()
			}
			logger.Warn("chunk translation failed",
				logger.Int("chunk", i+1),
				logger.Err(err))
			stats.FailedChunks++
			results[i] = failurePlaceholder(chunk)
			t.reportProgress(i+1, len(chunks))
			continue
		}

		t.cache.Set(chunk, translated)
		results[i] = translated
		t.reportProgress(i+1, len(chunks))
	}

	if stats.FailedChunks == stats.Chunks && stats.CachedChunks == 0 {
		return "", stats, types.NewAppError(types.ErrTranslation,
			fmt.Sprintf("all %d chunks failed to translate", stats.Chunks), nil)
	}

	stats.TokensUsed = t.tokensUsed()
	return strings.Join(results, "\n\n"), stats, nil
}

// SaveCache persists the translation cache, if one is configured.
func (t *Translator) SaveCache() error {
	return t.cache.Save()
}

// translateChunk performs one rate-limited, retried engine call.
func (t *Translator) translateChunk(ctx context.Context, chunk string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			logger.Debug("retrying translation",
				logger.Int("attempt", attempt),
				logger.String("delay", delay.String()))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := t.limiter.Wait(ctx); err != nil {
			return "", err
		}

		translated, err := t.engine.Translate(ctx, chunk)
		if err == nil {
			return translated, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return "", err
		}
	}
	return "", lastErr
}

func (t *Translator) tokensUsed() int {
	if counter, ok := t.engine.(interface{ TokensUsed() int }); ok {
		return counter.TokensUsed()
	}
	return 0
}

func (t *Translator) reportProgress(done, total int) {
	if t.onProgress != nil {
		t.onProgress(done, total)
	}
}

// failurePlaceholder marks a chunk that could not be translated, keeping a
// prefix of the original so the reader can locate it in the source. The
// prefix is cut on rune boundaries; Tamil runes span multiple bytes and a
// byte-offset cut would leave invalid UTF-8 in the output file.
func failurePlaceholder(chunk string) string {
	prefix := chunk
	if runes := []rune(chunk); len(runes) > failedChunkPrefixLen {
		prefix = string(runes[:failedChunkPrefixLen])
	}
	return fmt.Sprintf("[translation failed: %s...]", prefix)
}
