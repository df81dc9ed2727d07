package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/offerdesk/internal/app/controllers"
	"github.com/yigit/offerdesk/internal/middleware"
	"github.com/yigit/offerdesk/internal/pkg/filestorage"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
	"github.com/yigit/offerdesk/internal/pkg/websocket"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Auth         *controllers.AuthController
	OfferLetters *controllers.OfferLetterController
	Verification *controllers.VerificationController
	Health       *controllers.HealthController
	Events       *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	verifyLimiter *middleware.RateLimiter,
) {
	router.GET("/health", h.Health.Health)

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	v1.GET("/verify/:ref", verifyLimiter.Limit(), h.Verification.Verify)
	v1.GET("/domains", h.Verification.Domains)

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", h.Auth.Profile)

		letters := authenticated.Group("/offer-letters")
		{
			letters.GET("", h.OfferLetters.List)
			letters.POST("", h.OfferLetters.Create)
			letters.GET("/:id", h.OfferLetters.Get)
			letters.DELETE("/:id", h.OfferLetters.Delete)
			letters.POST("/:id/document", h.OfferLetters.EnsureDocument)
			letters.GET("/:id/download", h.OfferLetters.Download)
			letters.POST("/:id/send", h.OfferLetters.Send)
		}

		authenticated.GET("/certificates", h.OfferLetters.Certificates)
		authenticated.GET("/events/ws", h.Events.HandleConnection)
	}
}

// SetupMetrics exposes the Prometheus registry
func SetupMetrics(router *gin.Engine, m *metrics.Metrics) {
	router.GET("/metrics", gin.WrapH(m.Handler()))
}

// SetupDocuments serves PDFs written by the local storage driver
func SetupDocuments(router *gin.Engine, local *filestorage.LocalStorage) {
	router.Static(filestorage.DocumentsRoute, local.BasePath())
}
