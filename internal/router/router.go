package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eduos-project/proctor-backend/internal/auth"
	"github.com/eduos-project/proctor-backend/internal/config"
	"github.com/eduos-project/proctor-backend/internal/handler"
	"github.com/eduos-project/proctor-backend/internal/middleware"
	"github.com/eduos-project/proctor-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(tokens *auth.TokenService, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for session start (30 requests per minute per IP) so
	// credential guessing stays slow.
	startLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Public Group ───────────────────────────────────────────────
	public := router.Group("/api/v1")
	{
		public.GET("/exams", handlers.Session.ListExams)
		public.POST("/exams", startLimiter.Middleware(), handlers.Session.CreateExam)
		public.POST("/session/start", startLimiter.Middleware(), handlers.Session.StartSession)
	}

	// ─── 2. Session Group (Token Required) ─────────────────────────────
	sessionAPI := router.Group("/api/v1/session")
	sessionAPI.Use(middleware.RequireSessionToken(tokens))
	{
		sessionAPI.POST("/answer", handlers.Session.SelectOption)
		sessionAPI.POST("/navigate", handlers.Session.Navigate)
		sessionAPI.POST("/submit", handlers.Session.Submit)
		sessionAPI.POST("/quit", handlers.Session.Quit)
		sessionAPI.GET("/state", handlers.Session.GetState)
		sessionAPI.GET("/result", handlers.Session.GetResult)
	}

	// ─── 3. WebSocket Group (Token via Query) ──────────────────────────
	wsAPI := router.Group("/ws/v1")
	wsAPI.Use(middleware.RequireSessionToken(tokens))
	{
		wsAPI.GET("/session/stream", handlers.WS.SessionStream)
	}

	return router
}
