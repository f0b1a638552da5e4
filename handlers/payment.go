package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkventure/middleware"
	"parkventure/services/booking"
	"parkventure/services/payment"
	"parkventure/utils"
)

// PaymentHandler owns checkout creation and the gateway webhook.
type PaymentHandler struct {
	Bookings   booking.Service
	Reconciler *payment.Reconciler
	Logger     *zap.Logger
}

func NewPaymentHandler(bookings booking.Service, rec *payment.Reconciler, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Bookings: bookings, Reconciler: rec, Logger: logger}
}

// CreateCheckout converts the caller's cart into pending bookings and a
// hosted payment session. POST /api/payments/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "not authenticated", "")
		return
	}

	sess, err := h.Bookings.CreateCheckout(c.Request.Context(), principal.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// Webhook receives gateway events. The raw body is read before any JSON
// parsing: the signature covers the exact bytes on the wire.
// POST /api/payments/webhook (unauthenticated, signature-verified)
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "unreadable payload", err.Error())
		return
	}

	if err := h.Reconciler.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		// A non-2xx tells the gateway to retry; signature failures map to
		// 403 via the taxonomy and are never retried.
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
