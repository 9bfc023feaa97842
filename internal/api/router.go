package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/service"
)

// NewRouter creates and configures the Gin router. gatherer may be nil, in
// which case /metrics is not served.
func NewRouter(cfg *config.Config, services *service.Services, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.IdentifyCaller(logger))
	{
		v1.GET("/products", handlers.HandleListProducts(services.Catalog, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(services.Catalog, logger))

		// Cart routes follow the caller's identity: guest carts live on the
		// device key, signed-in carts on the backend
		cartRoutes := v1.Group("/cart")
		cartRoutes.Use(middleware.RequireDevice())
		{
			cartRoutes.GET("", handlers.HandleGetCart(services.Carts, logger))
			cartRoutes.DELETE("", handlers.HandleClearCart(services.Carts, logger))
			cartRoutes.POST("/items", handlers.HandleAddCartItem(services.Carts, logger))
			cartRoutes.PUT("/items/:productId", handlers.HandleUpdateCartItem(services.Carts, logger))
			cartRoutes.DELETE("/items/:productId", handlers.HandleRemoveCartItem(services.Carts, logger))
		}

		checkoutRoutes := v1.Group("/checkout")
		checkoutRoutes.Use(middleware.RequireDevice())
		{
			checkoutRoutes.GET("/defaults", handlers.HandleCheckoutDefaults(services.Orders, logger))
			checkoutRoutes.POST("", handlers.HandleCheckout(services.Orders, logger))
		}

		v1.GET("/orders", handlers.HandleListOrders(services.Orders, logger))
		v1.GET("/orders/:id", handlers.HandleGetOrder(services.Orders, logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
