// Package container wires the application's dependencies together.
package container

import (
	"fmt"

	"github.com/AuZanPs/fitmatch-go/internal/application/services"
	infraai "github.com/AuZanPs/fitmatch-go/internal/infrastructure/ai"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/email"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/media"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/messaging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/performance"
	cachepersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/database"
	userpersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/user"
	wardrobepersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/wardrobe"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
)

// Container holds every shared dependency, built once at startup.
type Container struct {
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	DB          *database.DB

	UserRepo    *userpersist.Repository
	ItemRepo    *wardrobepersist.ItemRepository
	CatalogRepo *wardrobepersist.CatalogRepository

	Cache       *aicache.Cache
	Flights     *aicache.FlightGroup
	Frequency   *aicache.FrequencyTracker
	Generator   infraai.Generator
	Broadcaster *messaging.AdminBroadcaster

	AuthService           *services.AuthService
	WardrobeService       *services.WardrobeService
	OutfitService         *services.OutfitService
	ClassificationService *services.ClassificationService
	AnalysisService       *services.AnalysisService
	WarmingService        *services.WarmingService
}

// New builds the full dependency graph.
func New(logger *logging.ChanneledLogger) (*Container, error) {
	c := &Container{
		Logger:      logger,
		PerfTracker: performance.NewTracker(0),
	}

	dsn := config.DBPath
	if config.DBDriver == "libsql" {
		dsn = config.DBURL
		if config.DBAuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", config.DBURL, config.DBAuthToken)
		}
	}
	db, err := database.NewConnectionWithLogger(config.DBDriver, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	c.DB = db
	if err := db.EnsureSchema(); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	c.UserRepo = userpersist.NewRepository(db.DB, logger)
	c.ItemRepo = wardrobepersist.NewItemRepository(db.DB, logger)
	c.CatalogRepo = wardrobepersist.NewCatalogRepository(db.DB, logger)

	entryStore := cachepersist.NewSQLEntryStore(db.DB, logger)
	composer := aicache.NewComposer(config.CacheUserPrefixLength)
	policy := aicache.NewPolicy(config.CacheMaxAge)
	c.Cache = aicache.New(entryStore, composer, policy, logger.Cache())
	c.Flights = aicache.NewFlightGroup()
	c.Frequency = aicache.NewFrequencyTracker()

	c.Generator = infraai.NewGeminiClient(logger)

	var emailService email.Service
	if config.AnalysisEmailEnabled {
		emailService, err = email.NewService()
		if err != nil {
			logger.Email().Warn("Analysis email disabled", "reason", err.Error())
			emailService = nil
		}
	}

	images := media.NewImageProcessor(config.MediaBasePath, logger)
	contexts := services.NewUserContextService(c.UserRepo, c.ItemRepo, logger)

	c.WarmingService = services.NewWarmingService(c.Cache, c.Generator, c.Frequency, nil, logger)
	c.Broadcaster = messaging.NewAdminBroadcaster(c.statsSnapshot, 0, logger)
	c.WarmingService.SetBroadcaster(c.Broadcaster)

	c.AuthService = services.NewAuthService(c.UserRepo, logger)
	c.WardrobeService = services.NewWardrobeService(c.ItemRepo, c.CatalogRepo, images, logger)
	c.OutfitService = services.NewOutfitService(c.Cache, c.Generator, c.Flights, c.WarmingService,
		c.ItemRepo, contexts, c.PerfTracker, logger)
	c.ClassificationService = services.NewClassificationService(c.Cache, c.Generator, c.Flights,
		contexts, c.PerfTracker, logger)
	c.AnalysisService = services.NewAnalysisService(c.Cache, c.Generator, c.Flights,
		c.ItemRepo, c.UserRepo, contexts, emailService, c.PerfTracker, logger)

	return c, nil
}

// statsSnapshot feeds the periodic admin dashboard tick.
func (c *Container) statsSnapshot() map[string]any {
	return map[string]any{
		"performance": c.PerfTracker.GetStats(),
		"maintenance": c.WarmingService.Stats(),
	}
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
