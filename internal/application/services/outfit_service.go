package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	infraai "github.com/AuZanPs/fitmatch-go/internal/infrastructure/ai"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/performance"
	wardrobepersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/wardrobe"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
)

// GenerationResult is the common envelope for all AI feature responses.
type GenerationResult struct {
	Data    json.RawMessage     `json:"data"`
	Cached  bool                `json:"cached"`
	Shared  bool                `json:"shared,omitempty"` // served from an in-flight duplicate
	Metrics *aicache.KeyMetrics `json:"metrics,omitempty"`
}

// OutfitService generates outfit suggestions from the user's wardrobe,
// consulting the response cache before calling the generator.
type OutfitService struct {
	cache     *aicache.Cache
	generator infraai.Generator
	flights   *aicache.FlightGroup
	warming   *WarmingService
	items     *wardrobepersist.ItemRepository
	contexts  *UserContextService
	perf      *performance.Tracker
	logger    *logging.ChanneledLogger
}

// NewOutfitService creates the outfit generation service.
func NewOutfitService(cache *aicache.Cache, generator infraai.Generator, flights *aicache.FlightGroup,
	warming *WarmingService, items *wardrobepersist.ItemRepository, contexts *UserContextService,
	perf *performance.Tracker, logger *logging.ChanneledLogger) *OutfitService {
	return &OutfitService{
		cache:     cache,
		generator: generator,
		flights:   flights,
		warming:   warming,
		items:     items,
		contexts:  contexts,
		perf:      perf,
		logger:    logger,
	}
}

// GenerateOutfit produces an outfit suggestion for the request context.
// The full flow: build user context, compose the cache key, try the
// cache, then generate behind the in-flight dedup group and store the
// fresh response. A generator failure is returned as-is and never cached.
func (s *OutfitService) GenerateOutfit(ctx context.Context, userID string, reqCtx ai.RequestContext, clientCtx *ai.UserContext) (*GenerationResult, error) {
	marker := s.perf.StartOperation("outfit:generate", userID)
	defer marker.Complete()

	stored, err := s.items.FindByUser(ctx, userID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load wardrobe: %w", err)
	}
	items := derefItems(stored)
	if len(items) == 0 {
		marker.SetError(fmt.Errorf("empty wardrobe"))
		return nil, fmt.Errorf("cannot generate an outfit from an empty wardrobe")
	}

	userCtx := s.contexts.Build(ctx, userID, clientCtx)
	key := s.cache.GenerateKey(userID, items, reqCtx, ai.PromptOutfitGeneration, userCtx, config.CacheStrategy)
	prompt := buildOutfitPrompt(items, reqCtx)
	s.warming.Remember(key, userID, ai.PromptOutfitGeneration, items, reqCtx, userCtx, prompt)

	if result := s.cache.Lookup(ctx, key, userID, userCtx); result.Cached {
		marker.AddMetadata("cached", true)
		marker.SetSuccess(true)
		return &GenerationResult{Data: result.Data, Cached: true, Metrics: result.Metrics}, nil
	}

	response, shared, err := s.flights.Do(key.Key, func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		marker.SetError(err)
		s.logger.AI().Error("Outfit generation failed", "userId", userID, "error", err.Error())
		return nil, fmt.Errorf("outfit generation failed: %w", err)
	}

	if !shared {
		s.cache.Store(ctx, key, userID, ai.PromptOutfitGeneration, items, reqCtx, response, userCtx)
	}

	marker.AddMetadata("cached", false)
	marker.SetSuccess(true)
	metrics := key.Metrics
	return &GenerationResult{Data: response, Shared: shared, Metrics: &metrics}, nil
}

func derefItems(stored []*wardrobe.ClothingItem) []wardrobe.ClothingItem {
	items := make([]wardrobe.ClothingItem, 0, len(stored))
	for _, item := range stored {
		items = append(items, *item)
	}
	return items
}
