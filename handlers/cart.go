package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkventure/middleware"
	"parkventure/models"
	"parkventure/services/cart"
	"parkventure/utils"
)

// CartHandler exposes the pending cart over HTTP. All routes act on the
// caller's own cart; the user id always comes from the token, never the
// request body.
type CartHandler struct {
	Svc    cart.Service
	Logger *zap.Logger
}

func NewCartHandler(svc cart.Service, logger *zap.Logger) *CartHandler {
	return &CartHandler{Svc: svc, Logger: logger}
}

// Get returns the caller's pending cart, creating an empty one if none
// exists. GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	ct, err := h.Svc.GetCart(c.Request.Context(), principal.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

// AddItem prices and appends one line. POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ct, err := h.Svc.AddToCart(c.Request.Context(), principal.ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

// UpdateItem changes the quantity of one line. PUT /api/cart/items/:itemId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ct, err := h.Svc.UpdateItem(c.Request.Context(), principal.ID, c.Param("itemId"), req.Quantity)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

// RemoveItems deletes the named lines. DELETE /api/cart/items
func (h *CartHandler) RemoveItems(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req models.RemoveCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ct, err := h.Svc.RemoveItems(c.Request.Context(), principal.ID, req.ItemIDs)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

// Sync replaces the whole cart from a client snapshot, repricing every
// line server-side. PUT /api/cart/sync
func (h *CartHandler) Sync(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var req models.SyncCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ct, err := h.Svc.SyncCart(c.Request.Context(), principal.ID, req.Items)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}

// Clear empties the pending cart. DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	ct, err := h.Svc.ClearCart(c.Request.Context(), principal.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": ct, "total": ct.Total()})
}
