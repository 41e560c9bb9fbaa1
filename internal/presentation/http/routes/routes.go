// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AuZanPs/fitmatch-go/internal/application/container"
	"github.com/AuZanPs/fitmatch-go/internal/presentation/http/handlers"
	"github.com/AuZanPs/fitmatch-go/internal/presentation/http/middleware"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Clothing photos and thumbnails are served straight from disk.
	r.Static("/media", config.MediaBasePath)

	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger)
	wardrobeHandlers := handlers.NewWardrobeHandlers(c.WardrobeService, c.Logger)
	aiHandlers := handlers.NewAIHandlers(c.OutfitService, c.ClassificationService, c.AnalysisService, c.Logger)
	adminHandlers := handlers.NewAdminHandlers(c.Cache, c.WarmingService, c.Broadcaster, c.PerfTracker, c.Logger)
	healthHandlers := handlers.NewHealthHandlers(c.DB.DB)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.Health)

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandlers.Register)
			auth.POST("/login", authHandlers.Login)

			auth.Use(middleware.AuthRequired())
			{
				auth.GET("/profile", authHandlers.Profile)
				auth.PUT("/preferences", authHandlers.UpdatePreferences)
			}
		}

		wardrobe := api.Group("/wardrobe", middleware.AuthRequired())
		{
			wardrobe.GET("/items", wardrobeHandlers.ListItems)
			wardrobe.POST("/items", wardrobeHandlers.CreateItem)
			wardrobe.GET("/items/:id", wardrobeHandlers.GetItem)
			wardrobe.PUT("/items/:id", wardrobeHandlers.UpdateItem)
			wardrobe.DELETE("/items/:id", wardrobeHandlers.DeleteItem)
			wardrobe.GET("/categories", wardrobeHandlers.ListCategories)
			wardrobe.GET("/style-tags", wardrobeHandlers.ListStyleTags)
		}

		ai := api.Group("/ai", middleware.AuthRequired())
		{
			ai.POST("/outfit", aiHandlers.GenerateOutfit)
			ai.POST("/classify", aiHandlers.ClassifyItem)
			ai.POST("/analysis", aiHandlers.AnalyzeWardrobe)
		}

		admin := api.Group("/admin", middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandlers.Stats)
			admin.POST("/cache/evict", adminHandlers.EvictCache)
			admin.POST("/cache/warm", adminHandlers.WarmCache)
			admin.GET("/logs/levels", adminHandlers.GetLogLevels)
			admin.POST("/logs/levels", adminHandlers.SetLogLevel)
			admin.GET("/events", adminHandlers.EventStream)
		}
	}

	return r
}
