package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkventure/middleware"
	"parkventure/models"
	"parkventure/services/booking"
	"parkventure/utils"
)

// BookingHandler exposes the booking ledger over HTTP.
type BookingHandler struct {
	Svc    booking.Service
	Logger *zap.Logger
}

func NewBookingHandler(svc booking.Service, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

// CreateFromCart converts the caller's pending cart into bookings plus
// a hosted payment session. POST /api/booking
func (h *BookingHandler) CreateFromCart(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "not authenticated", "")
		return
	}

	sess, err := h.Svc.CreateCheckout(c.Request.Context(), principal.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// List returns every booking. GET /api/booking (admin)
func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.Svc.GetAllBookings(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListMine returns the caller's bookings, optionally windowed with
// ?window=upcoming|past. GET /api/booking/user
func (h *BookingHandler) ListMine(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	bookings, err := h.Svc.GetUserBookings(c.Request.Context(), principal.ID, c.Query("window"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetByID returns one booking; owners see their own, staff and admin
// see any. GET /api/booking/:id
func (h *BookingHandler) GetByID(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if b.User != principal.ID && principal.Role == models.RoleUser {
		utils.JSONError(c, http.StatusForbidden, "not your booking", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// GetByPaymentID returns all bookings of one checkout session.
// GET /api/booking/by-payment/:paymentId
func (h *BookingHandler) GetByPaymentID(c *gin.Context) {
	bookings, err := h.Svc.GetBookingsByPaymentID(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetByPark lists a park's bookings for its owner or staff.
// GET /api/booking/parks/:parkId
func (h *BookingHandler) GetByPark(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	parkID := c.Param("parkId")
	if principal.Role != models.RoleAdmin && principal.ParkID != parkID {
		utils.JSONError(c, http.StatusForbidden, "not your park", "")
		return
	}

	bookings, err := h.Svc.GetBookingsByPark(c.Request.Context(), parkID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetQRCode returns the stored QR data URL. GET /api/booking/qr/:bookingId
func (h *BookingHandler) GetQRCode(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("bookingId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if b.User != principal.ID && principal.Role == models.RoleUser {
		utils.JSONError(c, http.StatusForbidden, "not your booking", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"qrCode": b.QrCode, "ticketCode": b.TicketCode})
}

// MarkUsed consumes a ticket at the gate. PUT /api/booking/:id/used
func (h *BookingHandler) MarkUsed(c *gin.Context) {
	b, err := h.Svc.MarkBookingAsUsed(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// Cancel cancels a booking and restores its inventory.
// DELETE /api/booking/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id := c.Param("id")

	b, err := h.Svc.GetBooking(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if b.User != principal.ID && principal.Role != models.RoleAdmin {
		utils.JSONError(c, http.StatusForbidden, "not your booking", "")
		return
	}

	cancelled, err := h.Svc.CancelBooking(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": cancelled})
}

// OverrideStatus is the admin escape hatch. PUT /api/booking/:id/status
func (h *BookingHandler) OverrideStatus(c *gin.Context) {
	var update models.BookingStatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Svc.OverrideStatus(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Warn("booking status overridden",
		zap.String("bookingId", b.ID), zap.String("status", string(b.Status)))
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// AdminDelete hard-deletes a ledger row. DELETE /api/booking/:id/admin
func (h *BookingHandler) AdminDelete(c *gin.Context) {
	if err := h.Svc.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
