package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	infraai "github.com/AuZanPs/fitmatch-go/internal/infrastructure/ai"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/performance"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
)

// ClassificationInput describes the garment the user wants classified.
type ClassificationInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Brand       string `json:"brand,omitempty"`
}

// ClassificationService identifies category, color, and style attributes
// for a described garment. Classification depends only on the garment
// description, so requests are cached without wardrobe items.
type ClassificationService struct {
	cache     *aicache.Cache
	generator infraai.Generator
	flights   *aicache.FlightGroup
	contexts  *UserContextService
	perf      *performance.Tracker
	logger    *logging.ChanneledLogger
}

// NewClassificationService creates the classification service.
func NewClassificationService(cache *aicache.Cache, generator infraai.Generator, flights *aicache.FlightGroup,
	contexts *UserContextService, perf *performance.Tracker, logger *logging.ChanneledLogger) *ClassificationService {
	return &ClassificationService{
		cache:     cache,
		generator: generator,
		flights:   flights,
		contexts:  contexts,
		perf:      perf,
		logger:    logger,
	}
}

// Classify returns the attribute set for a garment description.
func (s *ClassificationService) Classify(ctx context.Context, userID string, input ClassificationInput) (*GenerationResult, error) {
	marker := s.perf.StartOperation("classification:classify", userID)
	defer marker.Complete()

	if strings.TrimSpace(input.Name) == "" {
		marker.SetError(fmt.Errorf("empty garment name"))
		return nil, fmt.Errorf("garment name is required")
	}

	reqCtx := ai.RequestContext{"name": input.Name}
	if input.Description != "" {
		reqCtx["description"] = input.Description
	}
	if input.Brand != "" {
		reqCtx["brand"] = input.Brand
	}

	userCtx := s.contexts.Build(ctx, userID, nil)
	key := s.cache.GenerateKey(userID, nil, reqCtx, ai.PromptClassification, userCtx, config.CacheStrategy)

	if result := s.cache.Lookup(ctx, key, userID, userCtx); result.Cached {
		marker.AddMetadata("cached", true)
		marker.SetSuccess(true)
		return &GenerationResult{Data: result.Data, Cached: true, Metrics: result.Metrics}, nil
	}

	prompt := buildClassificationPrompt(reqCtx)
	response, shared, err := s.flights.Do(key.Key, func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		marker.SetError(err)
		s.logger.AI().Error("Classification failed", "userId", userID, "error", err.Error())
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	if !shared {
		s.cache.Store(ctx, key, userID, ai.PromptClassification, nil, reqCtx, response, userCtx)
	}

	marker.SetSuccess(true)
	metrics := key.Metrics
	return &GenerationResult{Data: response, Shared: shared, Metrics: &metrics}, nil
}
