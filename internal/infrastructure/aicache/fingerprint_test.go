package aicache

import (
	"testing"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonOf(t *testing.T) {
	cases := []struct {
		date   string
		season string
	}{
		{"2025-01-15", "winter"},
		{"2025-03-31", "winter"},
		{"2025-04-01", "spring"},
		{"2025-06-30", "spring"},
		{"2025-07-01", "summer"},
		{"2025-09-30", "summer"},
		{"2025-10-01", "fall"},
		{"2025-12-31", "fall"},
	}
	for _, tc := range cases {
		at, err := time.Parse("2006-01-02", tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.season, SeasonOf(at), "date %s", tc.date)
	}
}

func TestExtractFingerprintDeterministic(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	first := ai.RequestContext{
		"occasion": "Dinner Party",
		"weather":  "mild",
		"style":    []any{"casual", "minimalist"},
		"colors":   []any{"navy", "white"},
		"location": "Oslo",
	}
	// Same signals: different casing, whitespace, and array order.
	second := ai.RequestContext{
		"occasion": "  dinner party ",
		"weather":  "MILD",
		"style":    []any{"minimalist", "casual"},
		"colors":   []any{"white", "navy"},
		"location": "oslo",
	}

	fpA, popA := ExtractFingerprint(first, nil, at)
	fpB, popB := ExtractFingerprint(second, nil, at)

	assert.Equal(t, fpA, fpB)
	assert.Equal(t, popA, popB)
	assert.Equal(t, 4, popA) // core, style, temporal, environmental
}

func TestExtractFingerprintGroupLengths(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	userCtx := &ai.UserContext{
		Preferences: &ai.Preferences{
			Style:     []string{"streetwear"},
			Lifestyle: "active",
			Budget:    "mid",
		},
		SeasonalContext: &ai.SeasonalContext{Season: "summer", Location: "Lisbon"},
	}

	fp, populated := ExtractFingerprint(ai.RequestContext{"occasion": "work"}, userCtx, at)

	assert.Len(t, fp.Core, 8)
	assert.Len(t, fp.Style, 6)
	assert.Len(t, fp.Temporal, 4)
	assert.Len(t, fp.Behavioral, 6)
	assert.Len(t, fp.Environmental, 4)
	assert.Equal(t, 5, populated)
}

func TestExtractFingerprintEmptyIsStable(t *testing.T) {
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	fpA, popA := ExtractFingerprint(ai.RequestContext{}, nil, at)
	fpB, popB := ExtractFingerprint(ai.RequestContext{}, nil, at)

	assert.Equal(t, fpA, fpB)
	assert.Equal(t, 1, popA) // only the calendar signal
	assert.Equal(t, popA, popB)
	assert.NotEmpty(t, fpA.Core)
	assert.NotEmpty(t, fpA.Temporal)
}

func TestExtractFingerprintIgnoresUnknownCoreKeys(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	base := ai.RequestContext{"occasion": "brunch"}
	extra := ai.RequestContext{"occasion": "brunch", "somethingElse": "value"}

	fpA, _ := ExtractFingerprint(base, nil, at)
	fpB, _ := ExtractFingerprint(extra, nil, at)

	assert.Equal(t, fpA.Core, fpB.Core)
}

func TestUserSeasonChangesTemporalGroup(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	userCtx := &ai.UserContext{SeasonalContext: &ai.SeasonalContext{Season: "winter"}}

	fpCalendar, _ := ExtractFingerprint(ai.RequestContext{}, nil, at)
	fpTravel, _ := ExtractFingerprint(ai.RequestContext{}, userCtx, at)

	assert.NotEqual(t, fpCalendar.Temporal, fpTravel.Temporal)
}

func TestExtractFingerprintPanicsOnUnhashableValue(t *testing.T) {
	at := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	assert.Panics(t, func() {
		ExtractFingerprint(ai.RequestContext{"occasion": make(chan int)}, nil, at)
	})
}

func TestNormalizeValueScalars(t *testing.T) {
	assert.Equal(t, "dinner", normalizeValue("  Dinner "))
	assert.Equal(t, "true", normalizeValue(true))
	assert.Equal(t, "21.5", normalizeValue(21.5))
	assert.Equal(t, "3", normalizeValue(3))
	assert.Equal(t, "a,b,c", normalizeValue([]any{"c", "a", "B"}))
}
