package middleware

import (
	"strconv"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Metrics records request duration and in-flight count
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		m.RequestsInFlight.Inc()
		start := time.Now()

		c.Next()

		m.RequestsInFlight.Dec()
		m.RequestDuration.
			WithLabelValues(endpoint(c), c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// endpoint uses the matched route so unknown paths collapse into one label
func endpoint(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

// RequestLogger logs each request once it completes
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", endpoint(c)),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Bool("authenticated", UserID(c) != ""),
		}

		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
