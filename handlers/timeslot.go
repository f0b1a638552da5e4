package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"parkventure/middleware"
	"parkventure/models"
	"parkventure/services/timeslot"
	"parkventure/utils"
)

// TimeSlotHandler exposes template management and public availability.
type TimeSlotHandler struct {
	Svc    timeslot.Service
	Logger *zap.Logger
}

func NewTimeSlotHandler(svc timeslot.Service, logger *zap.Logger) *TimeSlotHandler {
	return &TimeSlotHandler{Svc: svc, Logger: logger}
}

// ownsPark gates writes to a park's templates: admins pass, park owners
// and staff only for their own park.
func ownsPark(c *gin.Context, parkID string) bool {
	principal, _ := middleware.GetPrincipal(c)
	return principal.Role == models.RoleAdmin || principal.ParkID == parkID
}

// CreateTemplate adds a recurring rule and materializes its instances.
// POST /api/timeslots/parks/:parkId/templates
func (h *TimeSlotHandler) CreateTemplate(c *gin.Context) {
	parkID := c.Param("parkId")
	if !ownsPark(c, parkID) {
		utils.JSONError(c, http.StatusForbidden, "not your park", "")
		return
	}

	var req models.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	tpl, err := h.Svc.CreateTemplate(c.Request.Context(), parkID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": tpl})
}

// GetTemplate returns one template. GET /api/timeslots/templates/:id
func (h *TimeSlotHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.Svc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tpl})
}

// UpdateTemplate patches the mutable fields and reconciles instances.
// PUT /api/timeslots/templates/:id
func (h *TimeSlotHandler) UpdateTemplate(c *gin.Context) {
	tpl, err := h.Svc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !ownsPark(c, tpl.ParkID) {
		utils.JSONError(c, http.StatusForbidden, "not your park", "")
		return
	}

	var req models.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	updated, err := h.Svc.UpdateTemplate(c.Request.Context(), tpl.ID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": updated})
}

// DeleteTemplate removes a rule and its unbooked future instances.
// DELETE /api/timeslots/templates/:id
func (h *TimeSlotHandler) DeleteTemplate(c *gin.Context) {
	tpl, err := h.Svc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !ownsPark(c, tpl.ParkID) {
		utils.JSONError(c, http.StatusForbidden, "not your park", "")
		return
	}

	if err := h.Svc.DeleteTemplate(c.Request.Context(), tpl.ID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// CheckOverlap dry-runs the overlap rule for a candidate template.
// POST /api/timeslots/check-overlap
func (h *TimeSlotHandler) CheckOverlap(c *gin.Context) {
	var q models.OverlapQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	overlaps, err := h.Svc.CheckOverlap(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overlaps": overlaps})
}

// Availability lists bookable instances for a park in a date range.
// Public. GET /api/timeslots/parks/:parkId/availability?from=&to=
func (h *TimeSlotHandler) Availability(c *gin.Context) {
	entries, err := h.Svc.Availability(c.Request.Context(), c.Param("parkId"), c.Query("from"), c.Query("to"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": entries})
}
