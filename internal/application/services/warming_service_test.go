package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	infraai "github.com/AuZanPs/fitmatch-go/internal/infrastructure/ai"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryEntryStore keeps cache entries in a map keyed by user and hash.
type memoryEntryStore struct {
	entries map[string]*aicache.Entry
}

func newMemoryEntryStore() *memoryEntryStore {
	return &memoryEntryStore{entries: make(map[string]*aicache.Entry)}
}

func (s *memoryEntryStore) key(userID, hash string) string { return userID + "/" + hash }

func (s *memoryEntryStore) SelectEntry(_ context.Context, userID, requestHash string) (*aicache.Entry, error) {
	entry, ok := s.entries[s.key(userID, requestHash)]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (s *memoryEntryStore) InsertEntry(_ context.Context, entry *aicache.Entry) error {
	k := s.key(entry.UserID, entry.RequestHash)
	if _, exists := s.entries[k]; exists {
		return aicache.ErrDuplicateEntry
	}
	copied := *entry
	s.entries[k] = &copied
	return nil
}

func (s *memoryEntryStore) TouchEntry(_ context.Context, userID, requestHash string, accessedAt time.Time) error {
	if entry, ok := s.entries[s.key(userID, requestHash)]; ok {
		entry.AccessCount++
		entry.LastAccessedAt = accessedAt
	}
	return nil
}

func (s *memoryEntryStore) DeleteEntry(_ context.Context, userID, requestHash string) error {
	delete(s.entries, s.key(userID, requestHash))
	return nil
}

func (s *memoryEntryStore) DeleteExpired(_ context.Context, cutoff time.Time, onlyUnused bool) (int64, error) {
	var deleted int64
	for k, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) && (!onlyUnused || entry.AccessCount == 0) {
			delete(s.entries, k)
			deleted++
		}
	}
	return deleted, nil
}

// recordingGenerator returns a canned response and counts invocations.
type recordingGenerator struct {
	response json.RawMessage
	err      error
	calls    int
}

func (g *recordingGenerator) Generate(_ context.Context, _ *infraai.GenerationRequest) (json.RawMessage, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

func newWarmingFixture(t *testing.T, generator *recordingGenerator) (*WarmingService, *aicache.Cache, *memoryEntryStore) {
	t.Helper()

	store := newMemoryEntryStore()
	cache := aicache.New(store, aicache.NewComposer(8), aicache.NewPolicy(24*time.Hour),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{})
	require.NoError(t, err)

	warming := NewWarmingService(cache, generator, aicache.NewFrequencyTracker(), nil, logger)
	return warming, cache, store
}

func warmingTestItems() []wardrobe.ClothingItem {
	return []wardrobe.ClothingItem{
		{ID: "a", Category: "Tops", Color: "navy", Brand: "Acme", StyleTags: []string{"casual"}},
	}
}

func TestRunOnceWarmsEvictedPopularRequest(t *testing.T) {
	generator := &recordingGenerator{response: json.RawMessage(`{"outfit":[]}`)}
	warming, cache, _ := newWarmingFixture(t, generator)
	ctx := context.Background()

	items := warmingTestItems()
	reqCtx := ai.RequestContext{"occasion": "work"}
	key := cache.GenerateKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, "balanced")
	prompt := buildOutfitPrompt(items, reqCtx)

	warming.Remember(key, "u1", ai.PromptOutfitGeneration, items, reqCtx, nil, prompt)
	require.False(t, cache.Lookup(ctx, key, "u1", nil).Cached)

	warming.RunOnce(ctx)

	assert.Equal(t, 1, generator.calls)
	result := cache.Lookup(ctx, key, "u1", nil)
	require.True(t, result.Cached)
	assert.JSONEq(t, string(generator.response), string(result.Data))
}

func TestRunOnceSkipsAlreadyCachedRequest(t *testing.T) {
	generator := &recordingGenerator{response: json.RawMessage(`{"outfit":[]}`)}
	warming, cache, _ := newWarmingFixture(t, generator)
	ctx := context.Background()

	items := warmingTestItems()
	reqCtx := ai.RequestContext{"occasion": "work"}
	key := cache.GenerateKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, "balanced")

	warming.Remember(key, "u1", ai.PromptOutfitGeneration, items, reqCtx, nil, buildOutfitPrompt(items, reqCtx))
	require.True(t, cache.Store(ctx, key, "u1", ai.PromptOutfitGeneration, items, reqCtx, json.RawMessage(`{}`), nil))

	warming.RunOnce(ctx)

	assert.Zero(t, generator.calls, "cached responses are not regenerated")
}

func TestRunOnceToleratesGeneratorFailure(t *testing.T) {
	generator := &recordingGenerator{err: errors.New("generator down")}
	warming, cache, store := newWarmingFixture(t, generator)
	ctx := context.Background()

	items := warmingTestItems()
	reqCtx := ai.RequestContext{"occasion": "work"}
	key := cache.GenerateKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, "balanced")
	warming.Remember(key, "u1", ai.PromptOutfitGeneration, items, reqCtx, nil, buildOutfitPrompt(items, reqCtx))

	warming.RunOnce(ctx)

	assert.Equal(t, 1, generator.calls)
	assert.Empty(t, store.entries, "failed warming leaves nothing behind")
}

func TestRunOnceEvictsAgedEntries(t *testing.T) {
	generator := &recordingGenerator{response: json.RawMessage(`{}`)}
	warming, cache, store := newWarmingFixture(t, generator)
	ctx := context.Background()

	key := cache.GenerateKey("u1", nil, ai.RequestContext{"occasion": "work"}, ai.PromptClassification, nil, "balanced")
	require.True(t, cache.Store(ctx, key, "u1", ai.PromptClassification, nil, nil, json.RawMessage(`{}`), nil))
	store.entries[store.key("u1", key.Key)].CreatedAt = time.Now().Add(-80 * time.Hour)

	warming.RunOnce(ctx)

	assert.Empty(t, store.entries)
}

func TestRememberCapsDescriptorMap(t *testing.T) {
	generator := &recordingGenerator{response: json.RawMessage(`{}`)}
	warming, cache, _ := newWarmingFixture(t, generator)

	items := warmingTestItems()
	for i := 0; i < maxRememberedRequests+10; i++ {
		reqCtx := ai.RequestContext{"occasion": "work", "weather": time.Duration(i).String()}
		key := cache.GenerateKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, "precision")
		warming.Remember(key, "u1", ai.PromptOutfitGeneration, items, reqCtx, nil, buildOutfitPrompt(items, reqCtx))
	}

	stats := warming.Stats()
	assert.Equal(t, maxRememberedRequests, stats["rememberedRequests"])
}
