// Package ai provides the text generation client used by the outfit,
// classification, and analysis services.
package ai

import (
	"context"
	"encoding/json"
)

// Generator produces a model response for a prompt. Implementations must
// return an error rather than a partial response; callers treat any error
// as "no response" and never cache it.
type Generator interface {
	Generate(ctx context.Context, req *GenerationRequest) (json.RawMessage, error)
}

// GenerationRequest is a single prompt for the model.
type GenerationRequest struct {
	PromptType   string  // outfit-generation, clothing-classification, wardrobe-analysis
	SystemPrompt string  // role and output-format instructions
	UserPrompt   string  // the composed request body
	Temperature  float64 // 0 means use the configured default
}
