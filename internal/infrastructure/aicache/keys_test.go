package aicache

import (
	"regexp"
	"testing"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	"github.com/stretchr/testify/assert"
)

var hexKeyPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func fixedComposer(at time.Time) *Composer {
	c := NewComposer(8)
	c.now = func() time.Time { return at }
	return c
}

func testItems() []wardrobe.ClothingItem {
	return []wardrobe.ClothingItem{
		{ID: "a", Category: "Tops", Color: "navy", Brand: "Acme", StyleTags: []string{"casual", "minimalist"}},
		{ID: "b", Category: "Bottoms", Color: "black", Brand: "Umbra", StyleTags: []string{"casual"}},
	}
}

func TestComposeKeyFormat(t *testing.T) {
	composer := fixedComposer(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))

	key := composer.ComposeKey("u1", testItems(), ai.RequestContext{"occasion": "work"},
		ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))

	assert.Regexp(t, hexKeyPattern, key.Key)
}

func TestComposeKeyDeterministic(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reqCtx := ai.RequestContext{"occasion": "work", "weather": "mild"}

	keyA := fixedComposer(at).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))
	keyB := fixedComposer(at).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))

	assert.Equal(t, keyA.Key, keyB.Key)
	assert.Equal(t, keyA.Fingerprint, keyB.Fingerprint)
}

func TestComposeKeyIsolatesUsers(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reqCtx := ai.RequestContext{"occasion": "work"}

	keyU1 := fixedComposer(at).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))
	keyU2 := fixedComposer(at).ComposeKey("u2", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))

	assert.NotEqual(t, keyU1.Key, keyU2.Key)
}

func TestComposeKeyIgnoresItemOrder(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reqCtx := ai.RequestContext{"occasion": "work"}
	items := testItems()
	reversed := []wardrobe.ClothingItem{items[1], items[0]}

	keyA := fixedComposer(at).ComposeKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))
	keyB := fixedComposer(at).ComposeKey("u1", reversed, reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))

	assert.Equal(t, keyA.Key, keyB.Key)
}

func TestComposeKeySeparatesPromptTypes(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reqCtx := ai.RequestContext{"occasion": "work"}

	outfit := fixedComposer(at).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))
	analysis := fixedComposer(at).ComposeKey("u1", testItems(), reqCtx, ai.PromptWardrobeAnalysis, nil, StrategyByName("balanced"))

	assert.NotEqual(t, outfit.Key, analysis.Key)
}

func TestCoarseGranularityCollapsesColorAndBrand(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reqCtx := ai.RequestContext{"occasion": "work"}

	items := testItems()
	recolored := testItems()
	recolored[0].Color = "red"
	recolored[0].Brand = "Other"

	perfA := fixedComposer(at).ComposeKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("performance"))
	perfB := fixedComposer(at).ComposeKey("u1", recolored, reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("performance"))
	assert.Equal(t, perfA.Key, perfB.Key, "coarse keys should collapse color and brand differences")

	fineA := fixedComposer(at).ComposeKey("u1", items, reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("precision"))
	fineB := fixedComposer(at).ComposeKey("u1", recolored, reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("precision"))
	assert.NotEqual(t, fineA.Key, fineB.Key, "fine keys should distinguish color and brand")
}

func TestPrecisionKeysRotateHourly(t *testing.T) {
	morning := time.Date(2025, 6, 10, 10, 30, 0, 0, time.UTC)
	laterSameHour := time.Date(2025, 6, 10, 10, 55, 0, 0, time.UTC)
	nextHour := time.Date(2025, 6, 10, 11, 5, 0, 0, time.UTC)
	reqCtx := ai.RequestContext{"occasion": "work"}

	keyA := fixedComposer(morning).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("precision"))
	keyB := fixedComposer(laterSameHour).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("precision"))
	keyC := fixedComposer(nextHour).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("precision"))

	assert.Equal(t, keyA.Key, keyB.Key)
	assert.NotEqual(t, keyA.Key, keyC.Key)

	// Balanced keys do not carry the hour component.
	balA := fixedComposer(morning).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))
	balC := fixedComposer(nextHour).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, nil, StrategyByName("balanced"))
	assert.Equal(t, balA.Key, balC.Key)
}

func TestStrategyByName(t *testing.T) {
	assert.Equal(t, GranularityCoarse, StrategyByName("performance").Granularity)
	assert.False(t, StrategyByName("performance").SeasonalSensitivity)

	assert.Equal(t, GranularityMedium, StrategyByName("balanced").Granularity)
	assert.True(t, StrategyByName("balanced").SeasonalSensitivity)
	assert.False(t, StrategyByName("balanced").IncludeTimestamp)

	assert.Equal(t, GranularityFine, StrategyByName("precision").Granularity)
	assert.True(t, StrategyByName("precision").IncludeTimestamp)

	// Unknown names fall back to balanced.
	assert.Equal(t, "balanced", StrategyByName("turbo").Name)
	assert.Equal(t, "balanced", StrategyByName("  Balanced ").Name)
}

func TestComposeKeyMetrics(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	reqCtx := ai.RequestContext{"occasion": "work", "weather": "mild"}
	userCtx := &ai.UserContext{Preferences: &ai.Preferences{Style: []string{"casual"}, Lifestyle: "active"}}

	key := fixedComposer(at).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, userCtx, StrategyByName("balanced"))

	m := key.Metrics
	assert.InDelta(t, 0.8, m.Complexity, 1e-9)  // core, style, temporal, behavioral
	assert.InDelta(t, 0.2, m.Specificity, 1e-9) // (2 ctx + 2 items) / 20
	assert.InDelta(t, 0.6, m.Stability, 1e-9)   // seasonal sensitivity dominates
	assert.InDelta(t, 0.36, m.HitProbability, 1e-9)

	perf := fixedComposer(at).ComposeKey("u1", testItems(), reqCtx, ai.PromptOutfitGeneration, userCtx, StrategyByName("performance"))
	assert.InDelta(t, 0.8, perf.Metrics.Stability, 1e-9)
	assert.InDelta(t, 0.64, perf.Metrics.HitProbability, 1e-9)
}

func TestUserPrefixBoundsShortIDs(t *testing.T) {
	c := NewComposer(8)
	assert.Equal(t, "u1", c.userPrefix("u1"))
	assert.Equal(t, "abcdefgh", c.userPrefix("abcdefghijkl"))
}
