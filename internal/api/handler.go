package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"deskmate-backend/internal/availability"
	"deskmate-backend/internal/booking"
	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/registry"
	"deskmate-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	registry  registry.Registry
	store     store.Store
	evaluator *availability.Evaluator
	manager   *booking.Manager
	webpush   *webpush.Options
	now       func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(reg registry.Registry, s store.Store, e *availability.Evaluator, m *booking.Manager, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		registry:  reg,
		store:     s,
		evaluator: e,
		manager:   m,
		webpush:   webpushOptions,
		now:       time.Now,
	}
}

// respondError translates engine errors into the façade's status codes.
func respondError(c *gin.Context, err error) {
	var vErr *booking.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": vErr.Fields})
	case errors.Is(err, interval.ErrInvalidInterval):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, registry.ErrResourceNotFound), errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrConflict), errors.Is(err, store.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrStoreUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "reservation store temporarily unavailable"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
