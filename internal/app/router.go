package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"cinepay/internal/handler"
	"cinepay/internal/middleware"
)

// RouterDeps contains all dependencies needed for the gateway router.
type RouterDeps struct {
	PaymentHandler *handler.PaymentHandler
	PromoHandler   *handler.PromoHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all gateway routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}
	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Payment routes.
	payments := router.Group("/payments")
	{
		payments.POST("", deps.PaymentHandler.CreatePayment)
		payments.GET("", deps.PaymentHandler.GetAll)
		payments.GET("/ongoing/:email", deps.PaymentHandler.GetOngoing)
		payments.GET("/history/:email", deps.PaymentHandler.GetHistory)
		payments.POST("/validate", deps.PaymentHandler.RequestValidation)
		payments.PUT("/:invoice/status", deps.PaymentHandler.UpdateStatus)
		payments.POST("/:invoice/apply-promo", deps.PaymentHandler.ApplyPromo)
		payments.POST("/:invoice/remove-promo", deps.PaymentHandler.RemovePromo)
	}

	// Promo routes.
	promos := router.Group("/promos")
	{
		promos.POST("", deps.PromoHandler.CreatePromo)
		promos.GET("", deps.PromoHandler.GetAll)
		promos.GET("/:id", deps.PromoHandler.GetPromo)
		promos.DELETE("/:id", deps.PromoHandler.DeletePromo)
	}

	return router
}
