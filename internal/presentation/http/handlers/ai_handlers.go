package handlers

import (
	"net/http"

	"github.com/AuZanPs/fitmatch-go/internal/application/services"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// AIHandlers serves the outfit, classification, and analysis endpoints.
type AIHandlers struct {
	outfits        *services.OutfitService
	classification *services.ClassificationService
	analysis       *services.AnalysisService
	logger         *logging.ChanneledLogger
}

// NewAIHandlers creates the AI feature handler group.
func NewAIHandlers(outfits *services.OutfitService, classification *services.ClassificationService,
	analysis *services.AnalysisService, logger *logging.ChanneledLogger) *AIHandlers {
	return &AIHandlers{outfits: outfits, classification: classification, analysis: analysis, logger: logger}
}

// aiRequest is the shared request body for outfit and analysis calls.
// Context is the free-form request context (occasion, weather, ...);
// UserContext carries optional client-side personalization signals.
type aiRequest struct {
	Context     ai.RequestContext `json:"context"`
	UserContext *ai.UserContext   `json:"userContext,omitempty"`
}

// GenerateOutfit handles POST /api/v1/ai/outfit.
func (h *AIHandlers) GenerateOutfit(c *gin.Context) {
	var req aiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Context == nil {
		req.Context = ai.RequestContext{}
	}

	result, err := h.outfits.GenerateOutfit(c.Request.Context(), middleware.UserID(c), req.Context, req.UserContext)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ClassifyItem handles POST /api/v1/ai/classify.
func (h *AIHandlers) ClassifyItem(c *gin.Context) {
	var input services.ClassificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.classification.Classify(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeWardrobe handles POST /api/v1/ai/analysis.
func (h *AIHandlers) AnalyzeWardrobe(c *gin.Context) {
	var req aiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Context == nil {
		req.Context = ai.RequestContext{}
	}

	result, err := h.analysis.Analyze(c.Request.Context(), middleware.UserID(c), req.Context, req.UserContext)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
