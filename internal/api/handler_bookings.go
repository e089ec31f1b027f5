package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deskmate-backend/internal/booking"
	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
)

// bookingRequest is the POST /api/bookings body. Times come in as
// "HH:MM" strings and are converted to the engine's minute-of-day form.
type bookingRequest struct {
	ResourceID uint   `json:"resourceId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Start      string `json:"start"`
	End        string `json:"end"`

	BookerName  string `json:"bookerName"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`

	ForDelegate   bool   `json:"forDelegate"`
	DelegateName  string `json:"delegateName"`
	DelegateEmail string `json:"delegateEmail"`
}

func (r bookingRequest) toEngineRequest(kind model.ResourceKind) (booking.Request, error) {
	iv := interval.Day(r.Date)
	if kind == model.KindRoom {
		start, err := interval.ParseTimeOfDay(r.Start)
		if err != nil {
			return booking.Request{}, err
		}
		end, err := interval.ParseTimeOfDay(r.End)
		if err != nil {
			return booking.Request{}, err
		}
		iv = interval.Range(r.Date, start, end)
	}

	return booking.Request{
		ResourceID:    r.ResourceID,
		Interval:      iv,
		BookerName:    r.BookerName,
		Designation:   r.Designation,
		Department:    r.Department,
		Contact:       r.Contact,
		Email:         r.Email,
		ForDelegate:   r.ForDelegate,
		DelegateName:  r.DelegateName,
		DelegateEmail: r.DelegateEmail,
	}, nil
}

// SubmitBooking handles POST /api/bookings.
func (h *Handler) SubmitBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.registry.Get(c.Request.Context(), req.ResourceID)
	if err != nil {
		respondError(c, err)
		return
	}

	engineReq, err := req.toEngineRequest(res.Kind)
	if err != nil {
		respondError(c, err)
		return
	}

	reservation, err := h.manager.Submit(c.Request.Context(), engineReq)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reservationId": reservation.ID, "reservation": reservation})
}

// CancelBooking handles DELETE /api/bookings/:id.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	if err := h.manager.Cancel(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

// ListBookings handles GET /api/bookings, filterable by resource id,
// day, or requester email.
func (h *Handler) ListBookings(c *gin.Context) {
	ctx := c.Request.Context()

	if idParam := c.Query("resourceId"); idParam != "" {
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
			return
		}
		if _, err := h.registry.Get(ctx, uint(id)); err != nil {
			respondError(c, err)
			return
		}
		date := c.Query("date")
		if date == "" {
			date = interval.DayOf(h.now()).Format(interval.DateLayout)
		}
		bookings, err := h.store.ReservationsFor(ctx, uint(id), date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	if date := c.Query("date"); date != "" {
		if _, err := interval.ParseDate(date); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD form"})
			return
		}
		bookings, err := h.store.ReservationsOn(ctx, date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	if email := c.Query("email"); email != "" {
		bookings, err := h.store.ReservationsByEmail(ctx, email)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "one of resourceId, date or email is required"})
}
