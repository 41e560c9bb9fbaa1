// Package aicache implements the context-aware cache for AI responses:
// request fingerprinting, cache key composition, the persisted store
// adapter, and the staleness policy that decides when a cached response
// may still be served.
package aicache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
)

// Fingerprint holds the five hashed signal groups derived from a request.
// It is never persisted as its own row but is embedded in the request
// snapshot for diagnostics.
type Fingerprint struct {
	Core          string `json:"core"`
	Style         string `json:"style"`
	Temporal      string `json:"temporal"`
	Behavioral    string `json:"behavioral"`
	Environmental string `json:"environmental"`
}

// coreContextKeys is the allow-list of context keys folded into the core
// signal group. Anything else in the context map is ignored here.
var coreContextKeys = []string{"occasion", "weather", "formality", "activity", "purpose"}

// ExtractFingerprint derives the five signal groups from the request
// context and optional user context. Structurally equal inputs produce
// identical fingerprints regardless of map key or array ordering; the
// whole cache depends on that.
//
// The second return value is the number of groups that had any input
// signal, used only for diagnostic metrics.
func ExtractFingerprint(reqCtx ai.RequestContext, userCtx *ai.UserContext, at time.Time) (Fingerprint, int) {
	populated := 0

	core, ok := coreGroup(reqCtx)
	if ok {
		populated++
	}
	style, ok := styleGroup(reqCtx, userCtx)
	if ok {
		populated++
	}
	// Temporal always has the calendar signal.
	temporal := temporalGroup(userCtx, at)
	populated++

	behavioral, ok := behavioralGroup(userCtx)
	if ok {
		populated++
	}
	environmental, ok := environmentalGroup(reqCtx, userCtx)
	if ok {
		populated++
	}

	return Fingerprint{
		Core:          core,
		Style:         style,
		Temporal:      temporal,
		Behavioral:    behavioral,
		Environmental: environmental,
	}, populated
}

// SeasonOf buckets a calendar month into a season using zero-based month
// indexes: Jan-Mar winter, Apr-Jun spring, Jul-Sep summer, Oct-Dec fall.
// Cached rows store this value at write time, so the bucketing must stay
// stable across releases.
func SeasonOf(t time.Time) string {
	m := int(t.Month()) - 1
	switch {
	case m < 3:
		return "winter"
	case m < 6:
		return "spring"
	case m < 9:
		return "summer"
	default:
		return "fall"
	}
}

func coreGroup(reqCtx ai.RequestContext) (string, bool) {
	pairs := make(map[string]string)
	for _, key := range coreContextKeys {
		if v, exists := reqCtx[key]; exists && v != nil {
			pairs[key] = normalizeValue(v)
		}
	}
	return hashPairs(pairs, 8), len(pairs) > 0
}

func styleGroup(reqCtx ai.RequestContext, userCtx *ai.UserContext) (string, bool) {
	style := collectStrings(reqCtx["style"])
	colors := collectStrings(reqCtx["colors"])
	aesthetic := collectStrings(reqCtx["aesthetic"])

	if userCtx != nil && userCtx.Preferences != nil {
		style = append(style, normalizeStrings(userCtx.Preferences.Style)...)
		colors = append(colors, normalizeStrings(userCtx.Preferences.Colors)...)
	}

	pairs := make(map[string]string)
	if s := sortedJoin(style); s != "" {
		pairs["style"] = s
	}
	if s := sortedJoin(colors); s != "" {
		pairs["colors"] = s
	}
	if s := sortedJoin(aesthetic); s != "" {
		pairs["aesthetic"] = s
	}
	return hashPairs(pairs, 6), len(pairs) > 0
}

func temporalGroup(userCtx *ai.UserContext, at time.Time) string {
	_, week := at.ISOWeek()

	pairs := map[string]string{
		"season": SeasonOf(at),
		"week":   strconv.Itoa(week / 4),
	}
	if userCtx != nil && userCtx.SeasonalContext != nil && userCtx.SeasonalContext.Season != "" {
		pairs["userSeason"] = strings.ToLower(strings.TrimSpace(userCtx.SeasonalContext.Season))
	}
	return hashPairs(pairs, 4)
}

func behavioralGroup(userCtx *ai.UserContext) (string, bool) {
	pairs := make(map[string]string)
	if userCtx != nil {
		if prefs := userCtx.Preferences; prefs != nil {
			if prefs.Lifestyle != "" {
				pairs["lifestyle"] = strings.ToLower(strings.TrimSpace(prefs.Lifestyle))
			}
			if s := sortedJoin(normalizeStrings(prefs.Occasions)); s != "" {
				pairs["occasions"] = s
			}
			if prefs.Budget != "" {
				pairs["budget"] = strings.ToLower(strings.TrimSpace(prefs.Budget))
			}
		}
		if evo := userCtx.WardrobeEvolution; evo != nil {
			if s := sortedJoin(normalizeStrings(evo.StyleShifts)); s != "" {
				pairs["styleShifts"] = s
			}
			if len(evo.RecentAdditions) > 0 {
				pairs["recentAdditions"] = strconv.Itoa(len(evo.RecentAdditions))
			}
		}
	}
	return hashPairs(pairs, 6), len(pairs) > 0
}

func environmentalGroup(reqCtx ai.RequestContext, userCtx *ai.UserContext) (string, bool) {
	pairs := make(map[string]string)
	if v, exists := reqCtx["location"]; exists && v != nil {
		pairs["location"] = normalizeValue(v)
	}
	if v, exists := reqCtx["climate"]; exists && v != nil {
		pairs["climate"] = normalizeValue(v)
	}
	if userCtx != nil && userCtx.SeasonalContext != nil && userCtx.SeasonalContext.Location != "" {
		pairs["userLocation"] = strings.ToLower(strings.TrimSpace(userCtx.SeasonalContext.Location))
	}
	return hashPairs(pairs, 4), len(pairs) > 0
}

// normalizeValue produces a stable string for any JSON-decoded value.
// Strings are lowercased and trimmed, scalars are stringified, and
// anything else falls back to canonical JSON. A marshal failure here
// would mean a non-JSON value reached the context map, which is a
// programming error, so it panics rather than silently degrading key
// determinism.
func normalizeValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(t))
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, normalizeValue(item))
		}
		sort.Strings(parts)
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			panic(fmt.Sprintf("aicache: unhashable context value %T: %v", v, err))
		}
		return string(b)
	}
}

// collectStrings flattens a context value that may be a single string or
// a JSON array into normalized strings.
func collectStrings(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.ToLower(strings.TrimSpace(t)); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		return normalizeStrings(t)
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, collectStrings(item)...)
		}
		return out
	default:
		return []string{normalizeValue(t)}
	}
}

func normalizeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sortedJoin sorts and deduplicates before joining so array ordering
// never leaks into the hash.
func sortedJoin(values []string) string {
	if len(values) == 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(values))
	uniq := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			uniq = append(uniq, v)
		}
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ",")
}

// hashPairs hashes a key-sorted "k=v" encoding of the group. An empty
// group hashes the empty string, which yields a stable constant rather
// than an error.
func hashPairs(pairs map[string]string, length int) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(pairs[k])
	}
	return shortHash(sb.String(), length)
}

// shortHash returns the first length hex characters of SHA-256(s).
// Truncation trades collision resistance for compact keys; at expected
// table sizes the risk is negligible.
func shortHash(s string, length int) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:length]
}
