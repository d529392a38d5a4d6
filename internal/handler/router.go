package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hybe/bookinghub/internal/config"
	"hybe/bookinghub/internal/handler/middleware"
	"hybe/bookinghub/internal/repository"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	store repository.KVStore,
	otpHandler *OTPHandler,
	subscriptionHandler *SubscriptionHandler,
	bookingHandler *BookingHandler,
	healthHandler *HealthHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Liveness probe, outside the rate-limited surface.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	limit := func(policy middleware.Policy) gin.HandlerFunc {
		if !cfg.RateLimit.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(store, logger, policy)
	}

	api := r.Group("/api")
	api.Use(limit(middleware.GeneralPolicy(cfg.RateLimit.General)))
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": cfg.Server.PingMessage})
		})
		api.GET("/health/database", healthHandler.Database)

		otp := api.Group("/otp")
		otp.Use(limit(middleware.OTPPolicy(cfg.RateLimit.OTP)))
		{
			otp.POST("/send", otpHandler.Send)
			otp.POST("/verify", otpHandler.Verify)
		}

		subscription := api.Group("/subscription")
		{
			subscription.POST("/validate",
				limit(middleware.ValidationPolicy(cfg.RateLimit.Validation)),
				subscriptionHandler.Validate)
			subscription.GET("/types", subscriptionHandler.Types)
		}

		api.POST("/booking",
			limit(middleware.BookingPolicy(cfg.RateLimit.Booking)),
			bookingHandler.Submit)
	}

	return r
}
