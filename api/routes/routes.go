package routes

import (
	"time"

	"autoposter-api/api/handlers"
	"autoposter-api/api/middleware"
	"autoposter-api/internal/autopost"
	"autoposter-api/internal/config"
	"autoposter-api/internal/metrics"
	"autoposter-api/internal/scheduler"
	"autoposter-api/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are what the HTTP surface needs. Scheduler and Metrics may be nil.
type Dependencies struct {
	DB        *gorm.DB
	Service   autopost.Service
	Scheduler scheduler.Scheduler
	Metrics   *metrics.Metrics
	Config    *config.Config
	Logger    *logger.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	// Add middleware
	router.Use(middleware.RequestLogging(deps.Logger))
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(corsMiddleware(deps.Config.CORS))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Scheduler, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Service, deps.Logger)
	dashboardHandler := handlers.NewDashboardHandler(deps.Service, deps.Logger)
	botHandler := handlers.NewBotHandler(deps.Service, deps.Logger)
	postsHandler := handlers.NewPostsHandler(deps.Service, deps.Logger)
	contentHandler := handlers.NewContentHandler(deps.Service, deps.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(deps.Service, deps.Logger)
	socialHandler := handlers.NewSocialHandler(deps.Service, deps.Logger)

	// Root health check and metrics
	router.GET("/health", healthHandler.Check)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api")
	api.GET("/health", healthHandler.Check)

	// Everything else requires an authenticated caller
	authed := api.Group("",
		middleware.RequireIdentity(deps.Config.Auth),
		middleware.RateLimit(deps.Config.RateLimit),
	)
	{
		authed.GET("/auth/user", authHandler.GetUser)
		authed.GET("/dashboard/stats", dashboardHandler.Stats)

		authed.GET("/bot/settings", botHandler.GetSettings)
		authed.PUT("/bot/settings", botHandler.UpdateSettings)
		authed.POST("/bot/pause", botHandler.Pause)
		authed.POST("/bot/resume", botHandler.Resume)

		authed.GET("/tweets", postsHandler.List)
		authed.GET("/tweets/scheduled", postsHandler.ListScheduled)
		authed.POST("/tweets", postsHandler.Create)
		authed.DELETE("/tweets/:id", postsHandler.Delete)

		authed.POST("/content/generate", contentHandler.Generate)
		authed.POST("/content/enhance", contentHandler.Enhance)
		authed.POST("/content/hashtags", contentHandler.Hashtags)

		authed.GET("/analytics", analyticsHandler.Analytics)
		authed.GET("/activity", analyticsHandler.Activity)

		authed.GET("/social/status", socialHandler.Status)
		authed.GET("/social/account", socialHandler.Account)
	}
}

// corsMiddleware allows the configured front-end origins. Without any it
// allows every origin but drops credentials.
func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	return cors.New(corsConfig)
}
