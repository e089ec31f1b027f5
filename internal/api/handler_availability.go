package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deskmate-backend/internal/availability"
	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
)

// GetAvailability handles GET /api/availability. The answer is
// advisory: only the booking commit path is authoritative.
func (h *Handler) GetAvailability(c *gin.Context) {
	resourceID, err := strconv.ParseUint(c.Query("resourceId"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "resourceId is required"})
		return
	}
	date := c.Query("date")
	if date == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}
	if _, err := interval.ParseDate(date); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD form"})
		return
	}

	res, err := h.registry.Get(c.Request.Context(), uint(resourceID))
	if err != nil {
		respondError(c, err)
		return
	}

	// start/end are omitted for whole-day resources.
	candidate := interval.Day(date)
	if res.Kind == model.KindRoom {
		start, err := interval.ParseTimeOfDay(c.Query("start"))
		if err != nil {
			respondError(c, err)
			return
		}
		end, err := interval.ParseTimeOfDay(c.Query("end"))
		if err != nil {
			respondError(c, err)
			return
		}
		candidate = interval.Range(date, start, end)
	}

	avail, err := h.evaluator.CheckAvailability(c.Request.Context(), res.ID, candidate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": avail, "free": avail == availability.Free})
}
