package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/dto"
	"staycal/internal/app/gateway"
	domainbooking "staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
)

type BookingHandler struct {
	Gateway *gateway.Gateway
	Logger  *slog.Logger
}

type createBookingRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	GuestID    string `json:"guest_id" binding:"required"`
	CheckIn    string `json:"check_in" binding:"required"`
	CheckOut   string `json:"check_out" binding:"required"`
}

type transitionRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mutation gateway unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	checkIn, ok := parseDateParam(req.CheckIn)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be YYYY-MM-DD"})
		return
	}
	checkOut, ok := parseDateParam(req.CheckOut)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be YYYY-MM-DD"})
		return
	}
	stay, err := domaincalendar.NewStay(checkIn, checkOut)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	booking, err := h.Gateway.CreateBooking(c.Request.Context(), req.PropertyID, req.GuestID, stay, domainbooking.StatusPending)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("create booking failed", "property_id", req.PropertyID, "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapBooking(booking))
}

func (h BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, func(id domainbooking.BookingID, _ string) error {
		return h.Gateway.ConfirmBooking(c.Request.Context(), id)
	})
}

func (h BookingHandler) Reject(c *gin.Context) {
	h.transition(c, func(id domainbooking.BookingID, reason string) error {
		return h.Gateway.RejectBooking(c.Request.Context(), id, reason)
	})
}

func (h BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, func(id domainbooking.BookingID, reason string) error {
		return h.Gateway.CancelBooking(c.Request.Context(), id, reason)
	})
}

func (h BookingHandler) transition(c *gin.Context, apply func(domainbooking.BookingID, string) error) {
	if h.Gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mutation gateway unavailable"})
		return
	}
	id := domainbooking.BookingID(c.Param("id"))
	var req transitionRequest
	// reason body is optional on all transitions
	_ = c.ShouldBindJSON(&req)

	if err := apply(id, req.Reason); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("booking transition failed", "booking_id", string(id), "error", err)
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": string(id)})
}

var _ BookingHTTP = (*BookingHandler)(nil)
