package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	infraai "github.com/AuZanPs/fitmatch-go/internal/infrastructure/ai"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/email"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/email/templates"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/performance"
	userpersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/user"
	wardrobepersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/wardrobe"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
)

// analysisReport mirrors the JSON schema requested from the generator.
type analysisReport struct {
	Summary          string   `json:"summary"`
	Strengths        []string `json:"strengths"`
	GapCategories    []string `json:"gapCategories"`
	Recommendations  []string `json:"recommendations"`
	VersatilityScore float64  `json:"versatilityScore"`
}

// AnalysisService produces full-wardrobe assessments and optionally
// emails the report to the user.
type AnalysisService struct {
	cache     *aicache.Cache
	generator infraai.Generator
	flights   *aicache.FlightGroup
	items     *wardrobepersist.ItemRepository
	users     *userpersist.Repository
	contexts  *UserContextService
	emails    email.Service
	perf      *performance.Tracker
	logger    *logging.ChanneledLogger
}

// NewAnalysisService creates the wardrobe analysis service. The email
// service may be nil when report delivery is disabled.
func NewAnalysisService(cache *aicache.Cache, generator infraai.Generator, flights *aicache.FlightGroup,
	items *wardrobepersist.ItemRepository, users *userpersist.Repository, contexts *UserContextService,
	emails email.Service, perf *performance.Tracker, logger *logging.ChanneledLogger) *AnalysisService {
	return &AnalysisService{
		cache:     cache,
		generator: generator,
		flights:   flights,
		items:     items,
		users:     users,
		contexts:  contexts,
		emails:    emails,
		perf:      perf,
		logger:    logger,
	}
}

// Analyze assesses the user's full wardrobe. A cached report is returned
// without re-sending the email; only freshly generated reports trigger
// delivery.
func (s *AnalysisService) Analyze(ctx context.Context, userID string, reqCtx ai.RequestContext, clientCtx *ai.UserContext) (*GenerationResult, error) {
	marker := s.perf.StartOperation("analysis:analyze", userID)
	defer marker.Complete()

	stored, err := s.items.FindByUser(ctx, userID)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load wardrobe: %w", err)
	}
	items := derefItems(stored)
	if len(items) == 0 {
		marker.SetError(fmt.Errorf("empty wardrobe"))
		return nil, fmt.Errorf("cannot analyze an empty wardrobe")
	}

	userCtx := s.contexts.Build(ctx, userID, clientCtx)
	key := s.cache.GenerateKey(userID, items, reqCtx, ai.PromptWardrobeAnalysis, userCtx, config.CacheStrategy)

	if result := s.cache.Lookup(ctx, key, userID, userCtx); result.Cached {
		marker.AddMetadata("cached", true)
		marker.SetSuccess(true)
		return &GenerationResult{Data: result.Data, Cached: true, Metrics: result.Metrics}, nil
	}

	prompt := buildAnalysisPrompt(items, reqCtx, userCtx)
	response, shared, err := s.flights.Do(key.Key, func() (json.RawMessage, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		marker.SetError(err)
		s.logger.AI().Error("Wardrobe analysis failed", "userId", userID, "error", err.Error())
		return nil, fmt.Errorf("wardrobe analysis failed: %w", err)
	}

	if !shared {
		s.cache.Store(ctx, key, userID, ai.PromptWardrobeAnalysis, items, reqCtx, response, userCtx)
		s.deliverReport(ctx, userID, len(items), response)
	}

	marker.SetSuccess(true)
	metrics := key.Metrics
	return &GenerationResult{Data: response, Shared: shared, Metrics: &metrics}, nil
}

func (s *AnalysisService) deliverReport(ctx context.Context, userID string, itemCount int, response json.RawMessage) {
	if !config.AnalysisEmailEnabled || s.emails == nil {
		return
	}

	account, err := s.users.FindByID(ctx, userID)
	if err != nil || account == nil {
		s.logger.Email().Warn("Skipping analysis email, account unavailable", "userId", userID)
		return
	}

	var report analysisReport
	if err := json.Unmarshal(response, &report); err != nil {
		s.logger.Email().Warn("Skipping analysis email, unparseable report", "userId", userID, "error", err.Error())
		return
	}

	props := templates.AnalysisReportProps{
		Name:            account.FirstName,
		ItemCount:       itemCount,
		Season:          aicache.SeasonOf(time.Now()),
		Summary:         report.Summary,
		Recommendations: report.Recommendations,
		GapCategories:   report.GapCategories,
	}

	if err := s.emails.SendAnalysisReportEmail(account.Email, account.FirstName, props); err != nil {
		s.logger.Email().Error("Failed to send analysis report", "userId", userID, "error", err.Error())
		return
	}
	s.logger.Email().Info("Analysis report sent", "userId", userID)
}
