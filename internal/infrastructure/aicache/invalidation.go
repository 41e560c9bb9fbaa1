package aicache

import (
	"encoding/json"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
)

// Invalidation reasons reported by Policy.Evaluate.
const (
	ReasonAge       = "age"
	ReasonEvolution = "wardrobe-evolution"
	ReasonSeason    = "seasonal-drift"
)

// Policy decides whether a fetched entry may still be served. It is
// deliberately conservative: any one of three independent change signals
// forces regeneration rather than risking a stale personalized response.
type Policy struct {
	MaxAge time.Duration

	now func() time.Time
}

// DefaultMaxAge is the hard upper bound on entry lifetime.
const DefaultMaxAge = 24 * time.Hour

// NewPolicy creates an invalidation policy with the given hard age
// limit. A non-positive maxAge falls back to DefaultMaxAge.
func NewPolicy(maxAge time.Duration) *Policy {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Policy{MaxAge: maxAge, now: time.Now}
}

// Evaluate applies the staleness rules in order and reports the first
// failing one. An empty reason means the entry is still valid.
//
// Rules:
//  1. hard age limit exceeded
//  2. wardrobe changed after this entry was generated (recent additions
//     exist and the evolution analysis postdates the entry)
//  3. the season stored at write time no longer matches the calendar
func (p *Policy) Evaluate(entry *Entry, userCtx *ai.UserContext) (valid bool, reason string) {
	now := p.now()

	if now.Sub(entry.CreatedAt) > p.MaxAge {
		return false, ReasonAge
	}

	if userCtx != nil && userCtx.WardrobeEvolution != nil {
		evo := userCtx.WardrobeEvolution
		if len(evo.RecentAdditions) > 0 && evo.LastAnalysisDate.After(entry.CreatedAt) {
			return false, ReasonEvolution
		}
	}

	if stored := storedSeason(entry); stored != "" && stored != SeasonOf(now) {
		return false, ReasonSeason
	}

	return true, ""
}

// storedSeason extracts the season recorded in the entry's request
// snapshot. A missing or unparsable snapshot yields "" and skips the
// seasonal rule rather than invalidating.
func storedSeason(entry *Entry) string {
	if len(entry.RequestData) == 0 {
		return ""
	}
	var snapshot RequestSnapshot
	if err := json.Unmarshal(entry.RequestData, &snapshot); err != nil {
		return ""
	}
	return snapshot.SeasonalContext.Season
}
