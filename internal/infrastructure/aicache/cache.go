package aicache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
)

// LookupResult is the outcome of a cache lookup. Data is only set when
// Cached is true.
type LookupResult struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Cached  bool            `json:"cached"`
	Metrics *KeyMetrics     `json:"metrics,omitempty"`
}

// Cache coordinates key composition, the persisted entry store, and the
// invalidation policy. Store failures of any kind degrade to cache
// misses; the worst case is an extra call to the slow, costly generator,
// never a user-visible error.
type Cache struct {
	store    EntryStore
	composer *Composer
	policy   *Policy
	logger   *slog.Logger
	now      func() time.Time
}

// New creates the cache adapter. The logger is expected to be the cache
// channel of the application's channeled logger.
func New(store EntryStore, composer *Composer, policy *Policy, logger *slog.Logger) *Cache {
	return &Cache{
		store:    store,
		composer: composer,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateKey composes the context-aware cache key for a request using
// the named strategy preset.
func (c *Cache) GenerateKey(userID string, items []wardrobe.ClothingItem, reqCtx ai.RequestContext, promptType string, userCtx *ai.UserContext, strategyName string) *CacheKey {
	return c.composer.ComposeKey(userID, items, reqCtx, promptType, userCtx, StrategyByName(strategyName))
}

// Lookup fetches the entry for (key, userID). A missing row, a stale row,
// or a store failure all produce Cached:false. On a validated hit the
// access counter and last-accessed timestamp are bumped before the
// stored response is returned.
func (c *Cache) Lookup(ctx context.Context, key *CacheKey, userID string, userCtx *ai.UserContext) *LookupResult {
	miss := &LookupResult{Cached: false}

	entry, err := c.store.SelectEntry(ctx, userID, key.Key)
	if err != nil {
		c.logger.Warn("Cache lookup failed, treating as miss", "key", key.Key, "error", err.Error())
		return miss
	}
	if entry == nil {
		c.logger.Debug("Cache miss", "key", key.Key)
		return miss
	}

	if valid, reason := c.policy.Evaluate(entry, userCtx); !valid {
		c.logger.Info("Cache entry invalidated", "key", key.Key, "reason", reason, "age", c.now().Sub(entry.CreatedAt).String())
		if err := c.store.DeleteEntry(ctx, userID, key.Key); err != nil {
			c.logger.Warn("Failed to delete invalidated entry", "key", key.Key, "error", err.Error())
		}
		return miss
	}

	if err := c.store.TouchEntry(ctx, userID, key.Key, c.now()); err != nil {
		// The response is already in hand; losing one access-count bump
		// is preferable to forcing a regeneration.
		c.logger.Warn("Failed to update access stats on hit", "key", key.Key, "error", err.Error())
	}

	c.logger.Debug("Cache hit", "key", key.Key, "accessCount", entry.AccessCount+1)
	metrics := key.Metrics
	return &LookupResult{Data: entry.Response, Cached: true, Metrics: &metrics}
}

// Store persists a freshly generated response under the composed key.
// It returns false on any failure, including a duplicate insert from a
// concurrent request that generated the same response; the caller keeps
// its own generated result either way.
func (c *Cache) Store(ctx context.Context, key *CacheKey, userID, promptType string, items []wardrobe.ClothingItem, reqCtx ai.RequestContext, response json.RawMessage, userCtx *ai.UserContext) bool {
	now := c.now()

	snapshot := RequestSnapshot{
		PromptType:      promptType,
		ItemCount:       len(items),
		Context:         reqCtx,
		UserContext:     userCtx,
		SeasonalContext: SnapshotSeason{Season: SeasonOf(now)},
		Metrics:         key.Metrics,
		Fingerprint:     key.Fingerprint,
	}
	if userCtx != nil {
		snapshot.WardrobeEvolution = userCtx.WardrobeEvolution
	}

	requestData, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Error("Failed to marshal request snapshot", "key", key.Key, "error", err.Error())
		return false
	}

	entry := &Entry{
		UserID:         userID,
		RequestHash:    key.Key,
		RequestData:    requestData,
		Response:       response,
		CreatedAt:      now,
		LastAccessedAt: now,
		AccessCount:    0,
	}

	if err := c.store.InsertEntry(ctx, entry); err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			c.logger.Info("Concurrent store for same key, keeping existing entry", "key", key.Key)
		} else {
			c.logger.Warn("Cache store failed", "key", key.Key, "error", err.Error())
		}
		return false
	}

	c.logger.Debug("Cache entry stored", "key", key.Key, "promptType", promptType, "itemCount", len(items))
	return true
}

// EvictExpired bulk-deletes entries older than maxAge, optionally only
// those that were never read.
func (c *Cache) EvictExpired(ctx context.Context, maxAge time.Duration, onlyUnused bool) (int64, error) {
	cutoff := c.now().Add(-maxAge)
	deleted, err := c.store.DeleteExpired(ctx, cutoff, onlyUnused)
	if err != nil {
		c.logger.Error("Cache eviction failed", "cutoff", cutoff.Format(time.RFC3339), "error", err.Error())
		return 0, err
	}
	if deleted > 0 {
		c.logger.Info("Evicted expired cache entries", "deleted", deleted, "onlyUnused", onlyUnused)
	}
	return deleted, nil
}
