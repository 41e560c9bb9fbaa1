package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AuZanPs/fitmatch-go/internal/application/services"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/aicache"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/messaging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/performance"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// AdminHandlers serves the operational endpoints behind the admin key.
type AdminHandlers struct {
	cache       *aicache.Cache
	warming     *services.WarmingService
	broadcaster *messaging.AdminBroadcaster
	perf        *performance.Tracker
	logger      *logging.ChanneledLogger
	upgrader    websocket.Upgrader
}

// NewAdminHandlers creates the admin handler group.
func NewAdminHandlers(cache *aicache.Cache, warming *services.WarmingService,
	broadcaster *messaging.AdminBroadcaster, perf *performance.Tracker, logger *logging.ChanneledLogger) *AdminHandlers {
	return &AdminHandlers{
		cache:       cache,
		warming:     warming,
		broadcaster: broadcaster,
		perf:        perf,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"performance": h.perf.GetStats(),
		"maintenance": h.warming.Stats(),
	})
}

type evictRequest struct {
	MaxAgeHours int  `json:"maxAgeHours,omitempty"`
	UnusedOnly  bool `json:"unusedOnly,omitempty"`
}

// EvictCache handles POST /api/v1/admin/cache/evict.
func (h *AdminHandlers) EvictCache(c *gin.Context) {
	var req evictRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	maxAge := config.CacheEvictMaxAge
	if req.MaxAgeHours > 0 {
		maxAge = time.Duration(req.MaxAgeHours) * time.Hour
	}

	deleted, err := h.cache.EvictExpired(c.Request.Context(), maxAge, req.UnusedOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "eviction failed"})
		return
	}
	if deleted > 0 {
		h.broadcaster.Publish("cache-eviction", map[string]any{"deleted": deleted, "manual": true})
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// WarmCache handles POST /api/v1/admin/cache/warm.
func (h *AdminHandlers) WarmCache(c *gin.Context) {
	h.warming.RunOnce(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"completed": true})
}

// GetLogLevels handles GET /api/v1/admin/logs/levels.
func (h *AdminHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.logger.GetChannelLevels()})
}

type setLogLevelRequest struct {
	Channel string `json:"channel" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

// SetLogLevel handles POST /api/v1/admin/logs/levels.
func (h *AdminHandlers) SetLogLevel(c *gin.Context) {
	var req setLogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var level slog.Level
	switch strings.ToLower(req.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level: " + req.Level})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": req.Channel, "level": req.Level})
}

// EventStream handles GET /api/v1/admin/events, upgrading to a websocket
// that receives the dashboard event feed.
func (h *AdminHandlers) EventStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.System().Warn("Admin websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.AdminClient{Conn: conn, Send: make(chan []byte, 16)}
	h.broadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

func (h *AdminHandlers) writePump(client *messaging.AdminClient) {
	defer client.Conn.Close()
	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump drains and discards client messages so pings are answered and
// disconnects are noticed.
func (h *AdminHandlers) readPump(client *messaging.AdminClient) {
	defer h.broadcaster.Unregister(client)
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
