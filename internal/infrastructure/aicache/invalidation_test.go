package aicache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPolicy(maxAge time.Duration, now time.Time) *Policy {
	p := NewPolicy(maxAge)
	p.now = func() time.Time { return now }
	return p
}

func entryWithSeason(t *testing.T, createdAt time.Time, season string) *Entry {
	t.Helper()
	data, err := json.Marshal(RequestSnapshot{SeasonalContext: SnapshotSeason{Season: season}})
	require.NoError(t, err)
	return &Entry{
		UserID:      "u1",
		RequestHash: "hash",
		RequestData: data,
		CreatedAt:   createdAt,
	}
}

func TestEvaluateFreshEntryIsValid(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(24*time.Hour, now)
	entry := entryWithSeason(t, now.Add(-1*time.Hour), "spring")

	valid, reason := policy.Evaluate(entry, nil)

	assert.True(t, valid)
	assert.Empty(t, reason)
}

func TestEvaluateAgeLimit(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(24*time.Hour, now)
	entry := entryWithSeason(t, now.Add(-25*time.Hour), "spring")

	valid, reason := policy.Evaluate(entry, nil)

	assert.False(t, valid)
	assert.Equal(t, ReasonAge, reason)
}

func TestEvaluateWardrobeEvolution(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(24*time.Hour, now)
	entry := entryWithSeason(t, now.Add(-2*time.Hour), "spring")

	userCtx := &ai.UserContext{WardrobeEvolution: &ai.WardrobeEvolution{
		RecentAdditions:  []string{"item-1"},
		LastAnalysisDate: now.Add(-1 * time.Hour), // after the entry was written
	}}

	valid, reason := policy.Evaluate(entry, userCtx)
	assert.False(t, valid)
	assert.Equal(t, ReasonEvolution, reason)
}

func TestEvaluateEvolutionRequiresAdditions(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(24*time.Hour, now)
	entry := entryWithSeason(t, now.Add(-2*time.Hour), "spring")

	// A newer analysis without new items is not an invalidation signal.
	userCtx := &ai.UserContext{WardrobeEvolution: &ai.WardrobeEvolution{
		LastAnalysisDate: now.Add(-1 * time.Hour),
	}}

	valid, reason := policy.Evaluate(entry, userCtx)
	assert.True(t, valid)
	assert.Empty(t, reason)
}

func TestEvaluateEvolutionRequiresNewerAnalysis(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(24*time.Hour, now)
	entry := entryWithSeason(t, now.Add(-1*time.Hour), "spring")

	userCtx := &ai.UserContext{WardrobeEvolution: &ai.WardrobeEvolution{
		RecentAdditions:  []string{"item-1"},
		LastAnalysisDate: now.Add(-3 * time.Hour), // before the entry
	}}

	valid, reason := policy.Evaluate(entry, userCtx)
	assert.True(t, valid)
	assert.Empty(t, reason)
}

func TestEvaluateSeasonalDrift(t *testing.T) {
	now := time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC) // summer
	policy := fixedPolicy(24*time.Hour, now)
	entry := entryWithSeason(t, now.Add(-2*time.Hour), "spring")

	valid, reason := policy.Evaluate(entry, nil)
	assert.False(t, valid)
	assert.Equal(t, ReasonSeason, reason)
}

func TestEvaluateSkipsSeasonRuleWithoutSnapshot(t *testing.T) {
	now := time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC)
	policy := fixedPolicy(24*time.Hour, now)

	entry := &Entry{CreatedAt: now.Add(-2 * time.Hour)} // no request data
	valid, reason := policy.Evaluate(entry, nil)
	assert.True(t, valid)
	assert.Empty(t, reason)

	entry.RequestData = []byte("{not json")
	valid, reason = policy.Evaluate(entry, nil)
	assert.True(t, valid)
	assert.Empty(t, reason)
}

func TestNewPolicyDefaultsMaxAge(t *testing.T) {
	assert.Equal(t, DefaultMaxAge, NewPolicy(0).MaxAge)
	assert.Equal(t, time.Hour, NewPolicy(time.Hour).MaxAge)
}
