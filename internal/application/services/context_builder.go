// Package services contains the application service layer that wires the
// domain entities to the cache, generator, and persistence adapters.
package services

import (
	"context"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	userpersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/user"
	wardrobepersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/wardrobe"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
)

// recentAdditionWindow is how far back an item still counts as a
// "recent addition" for personalization and cache invalidation.
const recentAdditionWindow = 30 * 24 * time.Hour

// UserContextService assembles the per-user personalization context sent
// with every AI request. Server-derived signals (stored preferences,
// recent wardrobe additions) are merged over whatever the client sent.
type UserContextService struct {
	users  *userpersist.Repository
	items  *wardrobepersist.ItemRepository
	logger *logging.ChanneledLogger
}

// NewUserContextService creates the context builder.
func NewUserContextService(users *userpersist.Repository, items *wardrobepersist.ItemRepository, logger *logging.ChanneledLogger) *UserContextService {
	return &UserContextService{users: users, items: items, logger: logger}
}

// Build merges stored account data into the client-provided context.
// Failures to load server-side signals degrade to a thinner context
// rather than failing the request.
func (s *UserContextService) Build(ctx context.Context, userID string, clientCtx *ai.UserContext) *ai.UserContext {
	merged := &ai.UserContext{}
	if clientCtx != nil {
		*merged = *clientCtx
	}

	if merged.Preferences == nil {
		account, err := s.users.FindByID(ctx, userID)
		if err != nil {
			s.logger.AI().Warn("Could not load preferences for context", "userId", userID, "error", err.Error())
		} else if account != nil {
			merged.Preferences = account.Preferences
		}
	}

	recentIDs, err := s.items.FindCreatedSince(ctx, userID, time.Now().Add(-recentAdditionWindow))
	if err != nil {
		s.logger.AI().Warn("Could not load recent additions for context", "userId", userID, "error", err.Error())
	} else if len(recentIDs) > 0 {
		if merged.WardrobeEvolution == nil {
			merged.WardrobeEvolution = &ai.WardrobeEvolution{}
		}
		merged.WardrobeEvolution.RecentAdditions = recentIDs
		if merged.RecentActivityCount == 0 {
			merged.RecentActivityCount = len(recentIDs)
		}
	}

	return merged
}
