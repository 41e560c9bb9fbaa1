package handlers

import (
	"net/http"
	"strings"

	"github.com/AuZanPs/fitmatch-go/internal/application/services"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// WardrobeHandlers serves the clothing item CRUD endpoints.
type WardrobeHandlers struct {
	wardrobe *services.WardrobeService
	logger   *logging.ChanneledLogger
}

// NewWardrobeHandlers creates the wardrobe handler group.
func NewWardrobeHandlers(wardrobe *services.WardrobeService, logger *logging.ChanneledLogger) *WardrobeHandlers {
	return &WardrobeHandlers{wardrobe: wardrobe, logger: logger}
}

// ListItems handles GET /api/v1/wardrobe/items.
func (h *WardrobeHandlers) ListItems(c *gin.Context) {
	items, err := h.wardrobe.ListItems(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wardrobe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetItem handles GET /api/v1/wardrobe/items/:id.
func (h *WardrobeHandlers) GetItem(c *gin.Context) {
	item, err := h.wardrobe.GetItem(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load item"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem handles POST /api/v1/wardrobe/items.
func (h *WardrobeHandlers) CreateItem(c *gin.Context) {
	var input services.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.wardrobe.AddItem(c.Request.Context(), middleware.UserID(c), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem handles PUT /api/v1/wardrobe/items/:id.
func (h *WardrobeHandlers) UpdateItem(c *gin.Context) {
	var input services.ItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.wardrobe.UpdateItem(c.Request.Context(), middleware.UserID(c), c.Param("id"), input)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /api/v1/wardrobe/items/:id.
func (h *WardrobeHandlers) DeleteItem(c *gin.Context) {
	err := h.wardrobe.RemoveItem(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListCategories handles GET /api/v1/wardrobe/categories.
func (h *WardrobeHandlers) ListCategories(c *gin.Context) {
	categories, err := h.wardrobe.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListStyleTags handles GET /api/v1/wardrobe/style-tags.
func (h *WardrobeHandlers) ListStyleTags(c *gin.Context) {
	tags, err := h.wardrobe.ListStyleTags(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load style tags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"styleTags": tags})
}
