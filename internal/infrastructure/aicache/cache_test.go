package aicache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEntryStore is an in-memory EntryStore keyed by (userID, hash).
type fakeEntryStore struct {
	entries   map[string]*Entry
	selectErr error
	insertErr error
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[string]*Entry)}
}

func (s *fakeEntryStore) key(userID, hash string) string { return userID + "/" + hash }

func (s *fakeEntryStore) SelectEntry(_ context.Context, userID, requestHash string) (*Entry, error) {
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	entry, ok := s.entries[s.key(userID, requestHash)]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (s *fakeEntryStore) InsertEntry(_ context.Context, entry *Entry) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	k := s.key(entry.UserID, entry.RequestHash)
	if _, exists := s.entries[k]; exists {
		return ErrDuplicateEntry
	}
	copied := *entry
	s.entries[k] = &copied
	return nil
}

func (s *fakeEntryStore) TouchEntry(_ context.Context, userID, requestHash string, accessedAt time.Time) error {
	if entry, ok := s.entries[s.key(userID, requestHash)]; ok {
		entry.AccessCount++
		entry.LastAccessedAt = accessedAt
	}
	return nil
}

func (s *fakeEntryStore) DeleteEntry(_ context.Context, userID, requestHash string) error {
	delete(s.entries, s.key(userID, requestHash))
	return nil
}

func (s *fakeEntryStore) DeleteExpired(_ context.Context, cutoff time.Time, onlyUnused bool) (int64, error) {
	var deleted int64
	for k, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) && (!onlyUnused || entry.AccessCount == 0) {
			delete(s.entries, k)
			deleted++
		}
	}
	return deleted, nil
}

func newTestCache(store EntryStore, now time.Time) *Cache {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	composer := NewComposer(8)
	composer.now = func() time.Time { return now }
	policy := NewPolicy(24 * time.Hour)
	policy.now = func() time.Time { return now }

	cache := New(store, composer, policy, logger)
	cache.now = func() time.Time { return now }
	return cache
}

func TestCacheRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	cache := newTestCache(store, now)
	ctx := context.Background()

	reqCtx := ai.RequestContext{"occasion": "work"}
	items := testItems()
	key := cache.GenerateKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, "balanced")

	// First lookup misses.
	result := cache.Lookup(ctx, key, "u1", nil)
	assert.False(t, result.Cached)
	assert.Nil(t, result.Data)

	// Store then hit.
	response := json.RawMessage(`{"outfit":[]}`)
	require.True(t, cache.Store(ctx, key, "u1", ai.PromptOutfitGeneration, items, reqCtx, response, nil))

	result = cache.Lookup(ctx, key, "u1", nil)
	assert.True(t, result.Cached)
	assert.JSONEq(t, string(response), string(result.Data))
	require.NotNil(t, result.Metrics)
	assert.Equal(t, key.Metrics, *result.Metrics)
}

func TestCacheHitBumpsAccessStats(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	cache := newTestCache(store, now)
	ctx := context.Background()

	key := cache.GenerateKey("u1", nil, ai.RequestContext{"occasion": "work"}, ai.PromptClassification, nil, "balanced")
	require.True(t, cache.Store(ctx, key, "u1", ai.PromptClassification, nil, nil, json.RawMessage(`{}`), nil))

	cache.Lookup(ctx, key, "u1", nil)
	cache.Lookup(ctx, key, "u1", nil)

	entry := store.entries[store.key("u1", key.Key)]
	require.NotNil(t, entry)
	assert.Equal(t, int64(2), entry.AccessCount)
}

func TestCacheIsolatesUsers(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	cache := newTestCache(store, now)
	ctx := context.Background()

	reqCtx := ai.RequestContext{"occasion": "work"}
	keyU1 := cache.GenerateKey("u1", nil, reqCtx, ai.PromptClassification, nil, "balanced")
	keyU2 := cache.GenerateKey("u2", nil, reqCtx, ai.PromptClassification, nil, "balanced")

	require.True(t, cache.Store(ctx, keyU1, "u1", ai.PromptClassification, nil, reqCtx, json.RawMessage(`{}`), nil))

	assert.False(t, cache.Lookup(ctx, keyU2, "u2", nil).Cached)
	assert.True(t, cache.Lookup(ctx, keyU1, "u1", nil).Cached)
}

func TestCacheInvalidEntryIsDeleted(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	cache := newTestCache(store, now)
	ctx := context.Background()

	key := cache.GenerateKey("u1", nil, ai.RequestContext{"occasion": "work"}, ai.PromptClassification, nil, "balanced")
	require.True(t, cache.Store(ctx, key, "u1", ai.PromptClassification, nil, nil, json.RawMessage(`{}`), nil))

	// Age the entry past the policy limit.
	entry := store.entries[store.key("u1", key.Key)]
	entry.CreatedAt = now.Add(-25 * time.Hour)

	result := cache.Lookup(ctx, key, "u1", nil)
	assert.False(t, result.Cached)
	assert.Empty(t, store.entries, "stale entry should be deleted on lookup")
}

func TestCacheStoreDuplicateReturnsFalse(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	cache := newTestCache(store, now)
	ctx := context.Background()

	key := cache.GenerateKey("u1", nil, ai.RequestContext{"occasion": "work"}, ai.PromptClassification, nil, "balanced")
	assert.True(t, cache.Store(ctx, key, "u1", ai.PromptClassification, nil, nil, json.RawMessage(`{"v":1}`), nil))
	assert.False(t, cache.Store(ctx, key, "u1", ai.PromptClassification, nil, nil, json.RawMessage(`{"v":2}`), nil))

	// The first write wins.
	result := cache.Lookup(ctx, key, "u1", nil)
	require.True(t, result.Cached)
	assert.JSONEq(t, `{"v":1}`, string(result.Data))
}

func TestCacheStoreFailureReturnsFalse(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	store.insertErr = errors.New("disk full")
	cache := newTestCache(store, now)

	key := cache.GenerateKey("u1", nil, ai.RequestContext{"occasion": "work"}, ai.PromptClassification, nil, "balanced")
	assert.False(t, cache.Store(context.Background(), key, "u1", ai.PromptClassification, nil, nil, json.RawMessage(`{}`), nil))
}

func TestCacheLookupFailureDegradesToMiss(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	store.selectErr = errors.New("connection reset")
	cache := newTestCache(store, now)

	key := cache.GenerateKey("u1", nil, ai.RequestContext{"occasion": "work"}, ai.PromptClassification, nil, "balanced")
	result := cache.Lookup(context.Background(), key, "u1", nil)
	assert.False(t, result.Cached)
}

func TestCacheEvictExpired(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeEntryStore()
	cache := newTestCache(store, now)
	ctx := context.Background()

	key := cache.GenerateKey("u1", nil, ai.RequestContext{"occasion": "work"}, ai.PromptClassification, nil, "balanced")
	require.True(t, cache.Store(ctx, key, "u1", ai.PromptClassification, nil, nil, json.RawMessage(`{}`), nil))
	store.entries[store.key("u1", key.Key)].CreatedAt = now.Add(-80 * time.Hour)

	deleted, err := cache.EvictExpired(ctx, 72*time.Hour, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Empty(t, store.entries)
}
