package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/wardrobe"
	infraai "github.com/AuZanPs/fitmatch-go/internal/infrastructure/ai"
)

const outfitSystemPrompt = `You are a personal stylist. Given a wardrobe inventory and an occasion,
compose one complete outfit using only the listed items. Respond with JSON:
{"outfit": [{"itemId": "...", "role": "top|bottom|footwear|outerwear|accessory"}],
 "reasoning": "...", "styleNotes": "..."}`

const classificationSystemPrompt = `You are a clothing classifier. Given a description of a garment,
identify its attributes. Respond with JSON:
{"category": "...", "color": "...", "styleTags": ["..."], "formality": "casual|smart-casual|formal",
 "seasons": ["..."]}`

const analysisSystemPrompt = `You are a wardrobe consultant. Given a full wardrobe inventory and the
owner's preferences, assess it. Respond with JSON:
{"summary": "...", "strengths": ["..."], "gapCategories": ["..."],
 "recommendations": ["..."], "versatilityScore": 0.0}`

func buildOutfitPrompt(items []wardrobe.ClothingItem, reqCtx ai.RequestContext) *infraai.GenerationRequest {
	var b strings.Builder
	b.WriteString("Wardrobe:\n")
	writeInventory(&b, items)
	b.WriteString("\nRequest:\n")
	writeContext(&b, reqCtx)

	return &infraai.GenerationRequest{
		PromptType:   ai.PromptOutfitGeneration,
		SystemPrompt: outfitSystemPrompt,
		UserPrompt:   b.String(),
	}
}

func buildClassificationPrompt(reqCtx ai.RequestContext) *infraai.GenerationRequest {
	var b strings.Builder
	b.WriteString("Garment:\n")
	writeContext(&b, reqCtx)

	return &infraai.GenerationRequest{
		PromptType:   ai.PromptClassification,
		SystemPrompt: classificationSystemPrompt,
		UserPrompt:   b.String(),
		Temperature:  0.2, // classification should be near-deterministic
	}
}

func buildAnalysisPrompt(items []wardrobe.ClothingItem, reqCtx ai.RequestContext, userCtx *ai.UserContext) *infraai.GenerationRequest {
	var b strings.Builder
	b.WriteString("Wardrobe:\n")
	writeInventory(&b, items)
	if userCtx != nil && userCtx.Preferences != nil {
		p := userCtx.Preferences
		b.WriteString("\nOwner preferences:\n")
		if len(p.Style) > 0 {
			fmt.Fprintf(&b, "- styles: %s\n", strings.Join(p.Style, ", "))
		}
		if len(p.Colors) > 0 {
			fmt.Fprintf(&b, "- colors: %s\n", strings.Join(p.Colors, ", "))
		}
		if p.Lifestyle != "" {
			fmt.Fprintf(&b, "- lifestyle: %s\n", p.Lifestyle)
		}
		if p.Budget != "" {
			fmt.Fprintf(&b, "- budget: %s\n", p.Budget)
		}
	}
	if len(reqCtx) > 0 {
		b.WriteString("\nFocus:\n")
		writeContext(&b, reqCtx)
	}

	return &infraai.GenerationRequest{
		PromptType:   ai.PromptWardrobeAnalysis,
		SystemPrompt: analysisSystemPrompt,
		UserPrompt:   b.String(),
	}
}

func writeInventory(b *strings.Builder, items []wardrobe.ClothingItem) {
	for _, item := range items {
		fmt.Fprintf(b, "- [%s] %s (%s", item.ID, item.Name, item.Category)
		if item.Color != "" {
			fmt.Fprintf(b, ", %s", item.Color)
		}
		if len(item.StyleTags) > 0 {
			fmt.Fprintf(b, ", tags: %s", strings.Join(item.StyleTags, "/"))
		}
		b.WriteString(")\n")
	}
	if len(items) == 0 {
		b.WriteString("(empty)\n")
	}
}

// writeContext renders the free-form request context in sorted key order
// so the same context always produces the same prompt text.
func writeContext(b *strings.Builder, reqCtx ai.RequestContext) {
	keys := make([]string, 0, len(reqCtx))
	for k := range reqCtx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %v\n", k, reqCtx[k])
	}
}
