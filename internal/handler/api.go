package handler

import (
	"net/http"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/middleware"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/prompts"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options tunes request handling
type Options struct {
	MaxUploadBytes int64
	// MaxJSONBytes bounds JSON request bodies. Defaults to 64 KiB.
	MaxJSONBytes int64
	AccountLimit int
	// Gatherer backs /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
}

// Handler handles HTTP requests
type Handler struct {
	pipeline *service.Pipeline
	history  *service.HistoryService
	chat     *service.ChatService
	opts     Options
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(pipeline *service.Pipeline, history *service.HistoryService, chat *service.ChatService, opts Options, logger *zap.Logger) *Handler {
	if opts.AccountLimit <= 0 {
		opts.AccountLimit = 50
	}
	if opts.MaxJSONBytes <= 0 {
		opts.MaxJSONBytes = 64 << 10
	}
	return &Handler{
		pipeline: pipeline,
		history:  history,
		chat:     chat,
		opts:     opts,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/analyze", h.Analyze)

		api.GET("/history", h.GetHistory)
		api.DELETE("/history", h.ClearHistory)
		api.GET("/history/export", h.ExportHistory)

		api.POST("/chat", h.Chat)
		api.GET("/dashboard", h.Dashboard)
	}

	r.GET("/health", h.HealthCheck)
	if h.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.opts.Gatherer, promhttp.HandlerOpts{})))
	}
}

func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		SessionID: middleware.SessionID(c),
		UserID:    middleware.UserID(c),
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         "suraksha-ai",
		"prompts_version": prompts.Version,
	})
}
