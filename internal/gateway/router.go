// Package gateway is the HTTP boundary of the cart service.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwikikusuma/shoping-cart/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type RouterConfig struct {
	Handler *Handler
	Log     *slog.Logger
	Metrics *metrics.ServerMetrics
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Ready backs /readyz, e.g. a database ping.
	Ready func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), instrument(cfg.Metrics))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) {
		if cfg.Ready == nil {
			c.Status(http.StatusOK)
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := cfg.Ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	h := cfg.Handler
	v1 := r.Group("/api/v1")
	v1.GET("/customers/:customer_id/cart", named("get_cart", h.getCart))
	v1.GET("/customers/:customer_id/carts", named("list_carts", h.listCarts))
	v1.POST("/cart/current", named("current_cart", h.currentCart))
	v1.POST("/cart/items", named("add_item", h.addItem))
	v1.PATCH("/cart/items", named("update_item_quantity", h.updateItemQuantity))
	v1.DELETE("/cart/items", named("remove_item", h.removeItem))
	v1.POST("/cart/complete", named("complete_cart", h.completeCart))
	v1.POST("/cart/cancel", named("cancel_cart", h.cancelCart))
	v1.GET("/carts/:cart_id/quote", named("quote", h.quote))

	return r
}
