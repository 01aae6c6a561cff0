package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coverline/internal/config"
	"coverline/internal/handler"
	"coverline/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Extraction *handler.ExtractionHandler
	Document   *handler.DocumentHandler
	Benefit    *handler.BenefitHandler
	Health     *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, authCfg *config.AuthConfig, corsCfg *config.CORSConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsCfg.AllowedOrigins))

	// Health checks and metrics
	r.GET("/health", h.Health.Health)
	r.GET("/readyz", h.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sharedSecret := middleware.SharedSecret(authCfg.SharedSecret)
	reviewer := middleware.ReviewerAuth(authCfg.ReviewerJWTSecret, authCfg.JWTIssuer)

	// Extraction intake
	r.POST("/extract", sharedSecret, h.Extraction.Extract)

	v1 := r.Group("/api/v1")

	// Document reads for clients holding the shared secret
	docs := v1.Group("/documents")
	docs.GET("/:id/status", sharedSecret, h.Document.Status)
	docs.GET("/:id/benefits", sharedSecret, h.Document.ListBenefits)
	docs.GET("/:id/benefits/export", sharedSecret, h.Document.ExportBenefits)
	docs.DELETE("/:id", reviewer, h.Document.Delete)

	// Review workflow
	benefits := v1.Group("/benefits")
	benefits.Use(reviewer)
	benefits.GET("/review-queue", h.Benefit.ReviewQueue)
	benefits.GET("/:id", h.Benefit.GetByID)
	benefits.POST("/:id/approve", h.Benefit.Approve)
	benefits.POST("/:id/reject", h.Benefit.Reject)
	benefits.PUT("/:id/data", h.Benefit.UpdateData)
	benefits.GET("/:id/revisions", h.Benefit.Revisions)

	return r
}
