package gateway

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/dwikikusuma/shoping-cart/pkg/metrics"
	"github.com/gin-gonic/gin"
)

const handlerKey = "gateway.handler"

// named tags the request with a stable handler name for logs and metrics.
func named(name string, fn gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(handlerKey, name)
		fn(c)
	}
}

func handlerName(c *gin.Context) string {
	if name := c.GetString(handlerKey); name != "" {
		return name
	}
	return "unmatched"
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("handler", handlerName(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("err", c.Errors.String()))
			log.ErrorContext(c.Request.Context(), "request failed", attrs...)
			return
		}
		log.InfoContext(c.Request.Context(), "request", attrs...)
	}
}

func instrument(m *metrics.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		name := handlerName(c)
		m.Requests.WithLabelValues(name, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(name).Observe(float64(time.Since(start).Milliseconds()))
	}
}
