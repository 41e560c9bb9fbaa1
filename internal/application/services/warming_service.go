package services

import (
	"context"
	"sync"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	infraai "github.com/AuZanPs/fitmatch-go/internal/infrastructure/ai"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/messaging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
)

// maxRememberedRequests bounds the warming descriptor map so a burst of
// unique requests cannot grow it without limit.
const maxRememberedRequests = 1000

// warmRequest is everything needed to regenerate a popular response
// after it was evicted or invalidated.
type warmRequest struct {
	key        *aicache.CacheKey
	userID     string
	promptType string
	items      []wardrobe.ClothingItem
	reqCtx     ai.RequestContext
	userCtx    *ai.UserContext
	prompt     *infraai.GenerationRequest
}

// WarmingService runs the periodic cache maintenance loop: bulk eviction
// of aged entries, then pre-generation of the most requested responses
// that are no longer cached.
type WarmingService struct {
	cache       *aicache.Cache
	generator   infraai.Generator
	frequency   *aicache.FrequencyTracker
	broadcaster *messaging.AdminBroadcaster
	logger      *logging.ChanneledLogger

	mu       sync.Mutex
	requests map[string]warmRequest
}

// NewWarmingService creates the maintenance service. The broadcaster may
// be nil when the admin dashboard feed is disabled.
func NewWarmingService(cache *aicache.Cache, generator infraai.Generator, frequency *aicache.FrequencyTracker,
	broadcaster *messaging.AdminBroadcaster, logger *logging.ChanneledLogger) *WarmingService {
	return &WarmingService{
		cache:       cache,
		generator:   generator,
		frequency:   frequency,
		broadcaster: broadcaster,
		logger:      logger,
		requests:    make(map[string]warmRequest),
	}
}

// SetBroadcaster attaches the admin event feed. The broadcaster needs
// the warming stats for its periodic tick, so it is built second and
// attached here.
func (s *WarmingService) SetBroadcaster(b *messaging.AdminBroadcaster) {
	s.broadcaster = b
}

// Remember records a request so the warming pass can regenerate it
// later. Also counts the request toward the popularity ranking.
func (s *WarmingService) Remember(key *aicache.CacheKey, userID, promptType string,
	items []wardrobe.ClothingItem, reqCtx ai.RequestContext, userCtx *ai.UserContext, prompt *infraai.GenerationRequest) {
	s.frequency.Record(key.Key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.requests[key.Key]; !known && len(s.requests) >= maxRememberedRequests {
		return
	}
	s.requests[key.Key] = warmRequest{
		key:        key,
		userID:     userID,
		promptType: promptType,
		items:      items,
		reqCtx:     reqCtx,
		userCtx:    userCtx,
		prompt:     prompt,
	}
}

// Run starts the maintenance loop. This should be run as a goroutine;
// it exits when ctx is cancelled.
func (s *WarmingService) Run(ctx context.Context) {
	ticker := time.NewTicker(config.CacheEvictInterval)
	defer ticker.Stop()

	s.logger.Cache().Info("Cache maintenance loop started",
		"interval", config.CacheEvictInterval.String(),
		"warmingEnabled", config.CacheWarmingEnabled)

	// Initial pass clears anything that aged out while the server was down.
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Cache().Info("Cache maintenance loop stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single eviction and warming pass.
func (s *WarmingService) RunOnce(ctx context.Context) {
	deleted, err := s.cache.EvictExpired(ctx, config.CacheEvictMaxAge, config.CacheEvictUnusedOnly)
	if err == nil && deleted > 0 && s.broadcaster != nil {
		s.broadcaster.Publish("cache-eviction", map[string]any{"deleted": deleted})
	}

	if !config.CacheWarmingEnabled {
		return
	}

	warmed := s.warmTopRequests(ctx)
	s.frequency.Reset()
	if warmed > 0 {
		s.logger.Cache().Info("Warming pass completed", "warmed", warmed)
		if s.broadcaster != nil {
			s.broadcaster.Publish("cache-warming", map[string]any{"warmed": warmed})
		}
	}
}

func (s *WarmingService) warmTopRequests(ctx context.Context) int {
	warmed := 0
	for _, cacheKey := range s.frequency.Top(config.CacheWarmingTopN) {
		s.mu.Lock()
		req, known := s.requests[cacheKey]
		s.mu.Unlock()
		if !known {
			continue
		}

		if result := s.cache.Lookup(ctx, req.key, req.userID, req.userCtx); result.Cached {
			continue
		}

		response, err := s.generator.Generate(ctx, req.prompt)
		if err != nil {
			s.logger.Cache().Warn("Warming generation failed", "key", cacheKey, "error", err.Error())
			continue
		}
		if s.cache.Store(ctx, req.key, req.userID, req.promptType, req.items, req.reqCtx, response, req.userCtx) {
			warmed++
		}
	}
	return warmed
}

// Stats reports maintenance state for the admin dashboard.
func (s *WarmingService) Stats() map[string]any {
	s.mu.Lock()
	remembered := len(s.requests)
	s.mu.Unlock()
	return map[string]any{
		"rememberedRequests": remembered,
		"warmingEnabled":     config.CacheWarmingEnabled,
		"evictInterval":      config.CacheEvictInterval.String(),
	}
}
