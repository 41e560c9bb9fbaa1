// Package ai defines the request-side types shared between the AI services
// and the response cache: the free-form request context and the typed
// user context that carries personalization signals.
package ai

import "time"

// RequestContext is the free-form context object attached to an AI request
// (occasion, weather, formality, style, colors, location, ...). Values come
// from user input and AI output, so the shape is deliberately open; the
// cache normalizes then hashes rather than validating a schema.
type RequestContext map[string]any

// PromptType identifies which AI feature a request belongs to.
const (
	PromptOutfitGeneration = "outfit-generation"
	PromptClassification   = "clothing-classification"
	PromptWardrobeAnalysis = "wardrobe-analysis"
)

// Preferences captures a user's standing style preferences.
type Preferences struct {
	Style     []string `json:"style,omitempty"`
	Colors    []string `json:"colors,omitempty"`
	Lifestyle string   `json:"lifestyle,omitempty"`
	Occasions []string `json:"occasions,omitempty"`
	Budget    string   `json:"budget,omitempty"`
}

// SeasonalContext carries the season the user is dressing for, which may
// differ from the calendar season (travel, southern hemisphere).
type SeasonalContext struct {
	Season   string `json:"season,omitempty"`
	Location string `json:"location,omitempty"`
}

// WardrobeEvolution summarizes how the wardrobe changed since the last
// analysis. Used by the cache to detect stale personalized responses.
type WardrobeEvolution struct {
	RecentAdditions  []string  `json:"recentAdditions,omitempty"`
	StyleShifts      []string  `json:"styleShifts,omitempty"`
	LastAnalysisDate time.Time `json:"lastAnalysisDate,omitempty"`
}

// UserContext bundles the per-user personalization signals attached to an
// AI request. All fields are optional.
type UserContext struct {
	Preferences         *Preferences       `json:"preferences,omitempty"`
	SeasonalContext     *SeasonalContext   `json:"seasonalContext,omitempty"`
	WardrobeEvolution   *WardrobeEvolution `json:"wardrobeEvolution,omitempty"`
	RecentActivityCount int                `json:"recentActivityCount,omitempty"`
}
