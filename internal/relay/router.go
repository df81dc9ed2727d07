package relay

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/offerdesk/internal/middleware"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
)

// NewRouter builds the relay's HTTP handler: the send endpoint, health and
// metrics, wrapped in CORS.
func NewRouter(h *Handler, m *metrics.Metrics, logger zerolog.Logger, allowedOrigins []string) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger, m))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.POST(SendEmailPath, h.SendEmail)

	return middleware.CORS(allowedOrigins)(router)
}
