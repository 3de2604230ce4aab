package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srgjo27/driveezzy/internal/core/services"
	"go.uber.org/zap"
)

type BookingHandler struct {
	svc    *services.BookingService
	logger *zap.Logger
}

func NewBookingHandler(svc *services.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

func (h *BookingHandler) CarTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"car_types": h.svc.Rates()})
}

func (h *BookingHandler) Quote(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Quote(c.Param("car_type")))
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.CarType = c.Param("car_type")

	resp, err := h.svc.CreateBooking(c.Request.Context(), sessionUserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.svc.ListBookingsForUser(c.Request.Context(), sessionUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("booking_id")

	if err := h.svc.CancelBooking(c.Request.Context(), bookingID, sessionUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "status": "cancelled"})
}
