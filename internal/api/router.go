package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"deskmate-backend/config"
	"deskmate-backend/internal/availability"
	"deskmate-backend/internal/booking"
	"deskmate-backend/internal/mw"
	"deskmate-backend/internal/registry"
	"deskmate-backend/internal/store"
)

// NewRouter creates and configures a new Gin router over the engine.
func NewRouter(cfg *config.ServerConfig, reg registry.Registry, s store.Store, e *availability.Evaluator, m *booking.Manager, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(reg, s, e, m, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.FlushOnWrite(cacheStore))
	{
		api.GET("/resources", caching, handler.GetResources)
		api.GET("/resources/:id", caching, handler.GetResource)
		api.GET("/resources/:id/bookings", handler.GetResourceBookings)

		api.GET("/availability", handler.GetAvailability)

		api.GET("/bookings", handler.ListBookings)
		api.POST("/bookings", handler.SubmitBooking)
		api.DELETE("/bookings/:id", handler.CancelBooking)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
