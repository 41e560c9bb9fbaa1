package aicache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
)

// Granularity is the level of item detail folded into the item-set
// signature. It is the single biggest lever on hit rate vs. specificity
// and is always explicit, never inferred.
type Granularity string

const (
	GranularityFine   Granularity = "fine"   // id + category + color + brand + all style tags
	GranularityMedium Granularity = "medium" // id + category + color + up to 3 style tags
	GranularityCoarse Granularity = "coarse" // id + category only
)

// Strategy is a named bundle of key-composition settings. Coarse keys
// collide across items that differ only in color or brand; that is the
// intended hit-rate trade-off of the performance strategy, not a bug.
type Strategy struct {
	Name                string
	Granularity         Granularity
	SeasonalSensitivity bool
	IncludeTimestamp    bool
}

var strategies = map[string]Strategy{
	"performance": {Name: "performance", Granularity: GranularityCoarse, SeasonalSensitivity: false, IncludeTimestamp: false},
	"balanced":    {Name: "balanced", Granularity: GranularityMedium, SeasonalSensitivity: true, IncludeTimestamp: false},
	"precision":   {Name: "precision", Granularity: GranularityFine, SeasonalSensitivity: true, IncludeTimestamp: true},
}

// StrategyByName resolves a strategy preset, falling back to balanced
// for unknown names.
func StrategyByName(name string) Strategy {
	if s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s
	}
	return strategies["balanced"]
}

// KeyMetrics are diagnostic scores in [0,1] attached to every composed
// key. They inform tuning and observability only and never gate
// correctness decisions.
type KeyMetrics struct {
	Complexity     float64 `json:"complexity"`
	Specificity    float64 `json:"specificity"`
	Stability      float64 `json:"stability"`
	HitProbability float64 `json:"hitProbability"`
}

// CacheKey is the result of key composition: the 32-hex-char cache key
// plus the fingerprint and metrics that produced it.
type CacheKey struct {
	Key         string      `json:"key"`
	Metrics     KeyMetrics  `json:"metrics"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

// Composer turns a request into a bounded-length cache key.
type Composer struct {
	userPrefixLen int
	now           func() time.Time
}

// NewComposer creates a key composer. userPrefixLen bounds how much of
// the user ID is embedded (human-legibly) in the key.
func NewComposer(userPrefixLen int) *Composer {
	if userPrefixLen <= 0 {
		userPrefixLen = 8
	}
	return &Composer{userPrefixLen: userPrefixLen, now: time.Now}
}

// ComposeKey derives the cache key for a request. Calling it twice with
// structurally equal inputs yields the same key.
func (c *Composer) ComposeKey(userID string, items []wardrobe.ClothingItem, reqCtx ai.RequestContext, promptType string, userCtx *ai.UserContext, strategy Strategy) *CacheKey {
	at := c.now()

	fp, populated := ExtractFingerprint(reqCtx, userCtx, at)
	itemSig := itemSignature(items, strategy.Granularity)
	behaviorSig := c.behaviorSignature(userID, userCtx)

	parts := []string{
		c.userPrefix(userID),
		promptType,
		itemSig,
		fp.Core,
		fp.Style,
		behaviorSig,
	}
	if strategy.SeasonalSensitivity {
		temporalSig := fp.Temporal
		if strategy.IncludeTimestamp {
			temporalSig += ":" + at.UTC().Format("2006010215")
		}
		parts = append(parts, temporalSig)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	key := hex.EncodeToString(sum[:])[:32]

	return &CacheKey{
		Key:         key,
		Metrics:     computeMetrics(populated, reqCtx, items, userCtx, strategy),
		Fingerprint: fp,
	}
}

func (c *Composer) userPrefix(userID string) string {
	if len(userID) <= c.userPrefixLen {
		return userID
	}
	return userID[:c.userPrefixLen]
}

// itemSignature hashes the sorted item set at the requested granularity
// to 12 hex chars. Sorting by ID first keeps the signature independent
// of the order items arrive in.
func itemSignature(items []wardrobe.ClothingItem, granularity Granularity) string {
	sorted := make([]wardrobe.ClothingItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	encoded := make([]string, 0, len(sorted))
	for _, item := range sorted {
		switch granularity {
		case GranularityCoarse:
			encoded = append(encoded, item.ID+":"+item.Category)
		case GranularityMedium:
			tags := sortedTags(item.StyleTags)
			if len(tags) > 3 {
				tags = tags[:3]
			}
			encoded = append(encoded, strings.Join([]string{item.ID, item.Category, item.Color, strings.Join(tags, ",")}, ":"))
		default: // fine
			tags := sortedTags(item.StyleTags)
			encoded = append(encoded, strings.Join([]string{item.ID, item.Category, item.Color, item.Brand, strings.Join(tags, ",")}, ":"))
		}
	}
	return shortHash(strings.Join(encoded, "|"), 12)
}

func sortedTags(tags []string) []string {
	out := normalizeStrings(tags)
	sort.Strings(out)
	return out
}

// behaviorSignature is deliberately left un-hashed (beyond the style
// component) so keys remain partially human-legible when debugging.
func (c *Composer) behaviorSignature(userID string, userCtx *ai.UserContext) string {
	activity := 0
	preferredStyle := ""
	if userCtx != nil {
		activity = userCtx.RecentActivityCount
		if activity > 10 {
			activity = 10
		}
		if userCtx.Preferences != nil {
			preferredStyle = sortedJoin(normalizeStrings(userCtx.Preferences.Style))
		}
	}
	return fmt.Sprintf("%s:a%d:%s", c.userPrefix(userID), activity, shortHash(preferredStyle, 4))
}

func computeMetrics(populated int, reqCtx ai.RequestContext, items []wardrobe.ClothingItem, userCtx *ai.UserContext, strategy Strategy) KeyMetrics {
	complexity := float64(populated) / 5.0

	specificity := float64(len(reqCtx)+len(items)) / 20.0
	if specificity > 1 {
		specificity = 1
	}

	hasBehavioral := userCtx != nil && (userCtx.Preferences != nil || userCtx.WardrobeEvolution != nil)
	stability := 0.9
	switch {
	case strategy.SeasonalSensitivity:
		stability = 0.6
	case hasBehavioral:
		stability = 0.8
	}

	granularityFactor := 0.4
	switch strategy.Granularity {
	case GranularityCoarse:
		granularityFactor = 0.8
	case GranularityMedium:
		granularityFactor = 0.6
	}

	return KeyMetrics{
		Complexity:     complexity,
		Specificity:    specificity,
		Stability:      stability,
		HitProbability: stability * granularityFactor,
	}
}
