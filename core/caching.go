package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/huangsam/transcomplex/internal/contract"
	"github.com/huangsam/transcomplex/schema"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheMaxAge is how long a cached result stays usable.
const cacheMaxAge = 7 * 24 * time.Hour

// Shared zstd codecs. Both are safe for concurrent EncodeAll/DecodeAll calls.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// CachedScorer wraps a TextScorer with a result cache. Cache failures are logged
// and bypassed, never returned.
type CachedScorer struct {
	inner       TextScorer
	store       contract.CacheStore
	fingerprint string
	now         func() time.Time
}

// NewCachedScorer returns inner unchanged when store is nil.
func NewCachedScorer(inner TextScorer, store contract.CacheStore, fingerprint string) TextScorer {
	if store == nil {
		return inner
	}
	return &CachedScorer{inner: inner, store: store, fingerprint: fingerprint, now: time.Now}
}

// ScoreText implements TextScorer.
func (c *CachedScorer) ScoreText(ctx context.Context, text string) (*schema.ComplexityResult, error) {
	key := generateCacheKey(c.fingerprint, text)

	// Check for cache hit
	if result := c.checkCacheHit(key); result != nil {
		return result, nil
	}

	// Cache miss: compute and store
	return c.computeAndStore(ctx, text, key)
}

// checkCacheHit attempts to retrieve and validate a cached result
func (c *CachedScorer) checkCacheHit(key string) *schema.ComplexityResult {
	data, version, ts, err := c.store.Get(key)
	if err != nil || data == nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || c.now().Sub(time.Unix(ts, 0)) > cacheMaxAge {
		return nil
	}

	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		contract.LogDebug("Discarding undecodable cache entry", logrus.Fields{"key": key, "error": err})
		return nil
	}
	var result schema.ComplexityResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return &result // Cache hit
}

// computeAndStore computes the result and stores it in cache
func (c *CachedScorer) computeAndStore(ctx context.Context, text, key string) (*schema.ComplexityResult, error) {
	result, err := c.inner.ScoreText(ctx, text)
	if err != nil {
		return nil, err
	}

	// A skipped family may come from a transient provider failure
	if len(result.Skipped) > 0 {
		contract.LogDebug("Not caching degraded result", logrus.Fields{"key": key, "skipped": len(result.Skipped)})
		return result, nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		contract.LogWarn("Failed to encode result for cache", err)
		return result, nil
	}
	compressed := zstdEncoder.EncodeAll(data, nil)
	if err := c.store.Set(key, compressed, currentCacheVersion, c.now().Unix()); err != nil {
		contract.LogWarn("Failed to write result cache", err)
	}
	return result, nil
}

// generateCacheKey binds a text to the configuration that scored it.
func generateCacheKey(fingerprint, text string) string {
	sum := sha256.Sum256([]byte(fingerprint + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
