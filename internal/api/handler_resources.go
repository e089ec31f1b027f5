package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"deskmate-backend/internal/availability"
	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
	"deskmate-backend/internal/registry"
)

// resourceResponse is a resource together with its status derived for
// the caller's reference interval.
type resourceResponse struct {
	model.Resource
	Status availability.Status `json:"status"`
}

// referenceInterval builds the interval a status question is being
// asked about. Rooms take an optional start/end window; desks and
// date-only room queries fall back to the whole day; without a date
// the reference is today.
func (h *Handler) referenceInterval(c *gin.Context, kind model.ResourceKind) (interval.Interval, error) {
	date := c.Query("date")
	if date == "" {
		date = interval.DayOf(h.now()).Format(interval.DateLayout)
	} else if _, err := interval.ParseDate(date); err != nil {
		return interval.Interval{}, fmt.Errorf("%w: date %q is not in YYYY-MM-DD form", interval.ErrInvalidInterval, date)
	}

	startParam, endParam := c.Query("start"), c.Query("end")
	if kind == model.KindRoom && startParam != "" && endParam != "" {
		start, err := interval.ParseTimeOfDay(startParam)
		if err != nil {
			return interval.Interval{}, err
		}
		end, err := interval.ParseTimeOfDay(endParam)
		if err != nil {
			return interval.Interval{}, err
		}
		return interval.Range(date, start, end), nil
	}
	return interval.Day(date), nil
}

// GetResources handles GET /api/resources.
func (h *Handler) GetResources(c *gin.Context) {
	filter := registry.Filter{
		Kind:       model.ResourceKind(strings.ToUpper(c.Query("kind"))),
		Department: c.Query("department"),
		Query:      c.Query("q"),
	}
	if filter.Kind != "" && filter.Kind != model.KindRoom && filter.Kind != model.KindDesk {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "kind must be ROOM or DESK"})
		return
	}

	statusFilter := strings.ToUpper(c.Query("status"))
	if statusFilter != "" && statusFilter != string(availability.Vacant) && statusFilter != string(availability.Booked) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "status must be VACANT or BOOKED"})
		return
	}

	resources, err := h.registry.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]resourceResponse, 0, len(resources))
	for _, res := range resources {
		ref, err := h.referenceInterval(c, res.Kind)
		if err != nil {
			respondError(c, err)
			return
		}
		status, err := h.evaluator.StatusAt(c.Request.Context(), res.ID, ref)
		if err != nil {
			respondError(c, err)
			return
		}
		if statusFilter != "" && statusFilter != string(status) {
			continue
		}
		responses = append(responses, resourceResponse{Resource: res, Status: status})
	}
	c.JSON(http.StatusOK, responses)
}

// GetResource handles GET /api/resources/:id.
func (h *Handler) GetResource(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	res, err := h.registry.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	ref, err := h.referenceInterval(c, res.Kind)
	if err != nil {
		respondError(c, err)
		return
	}
	status, err := h.evaluator.StatusAt(c.Request.Context(), res.ID, ref)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resourceResponse{Resource: res, Status: status})
}

// GetResourceBookings handles GET /api/resources/:id/bookings, the
// "why is this booked" detail view: every reservation touching the
// day, regardless of any narrower window.
func (h *Handler) GetResourceBookings(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}
	if _, err := h.registry.Get(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	date := c.Query("date")
	if date == "" {
		date = interval.DayOf(h.now()).Format(interval.DateLayout)
	}
	if _, err := interval.ParseDate(date); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD form"})
		return
	}

	bookings, err := h.evaluator.BookingsOn(c.Request.Context(), uint(id), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
