package api

import (
	"github.com/gin-gonic/gin"

	"github.com/caden/captionator/internal/api/handler"
	"github.com/caden/captionator/internal/api/middleware"
	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/logger"
	"github.com/caden/captionator/internal/repository"
	"github.com/caden/captionator/internal/service"
)

// Services bundles the service-layer dependencies of the HTTP surface.
type Services struct {
	Pipeline *service.PipelineService
	Captions *service.CaptionService
}

// Repos bundles the repository-layer dependencies of the HTTP surface.
type Repos struct {
	Locations *repository.LocationRepository
	Captions  *repository.CaptionRepository
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg *config.Config, log *logger.Logger, services Services, repos Repos, aiConfigured bool) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(aiConfigured)
	captionHandler := handler.NewCaptionHandler(services.Pipeline, services.Captions, repos.Captions, cfg.Upload.Dir)
	locationHandler := handler.NewLocationHandler(repos.Locations, services.Pipeline)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Caption generation
		v1.POST("/generate-caption", captionHandler.GenerateCaption)
		v1.POST("/regenerate-caption", captionHandler.RegenerateCaption)
		v1.POST("/chat-edit-caption", captionHandler.ChatEditCaption)

		// Saved captions
		v1.POST("/save-caption", captionHandler.SaveCaption)
		v1.GET("/captions", captionHandler.ListCaptions)

		// Locations
		v1.POST("/research-location", locationHandler.ResearchLocation)
		v1.GET("/locations", locationHandler.ListLocations)
		v1.GET("/locations/:id", locationHandler.GetLocation)
		v1.DELETE("/locations/:id", locationHandler.DeleteLocation)
	}

	return r
}
