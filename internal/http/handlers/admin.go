package handlers

import (
	"net/http"
	"strconv"

	"connection-travels/internal/domain/models"
	"connection-travels/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListPendingBuses(c *gin.Context) {
	list, err := h.Buses.ListPendingBuses(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type decisionRequest struct {
	Note *string `json:"note"`
}

func (h Handlers) ApproveBus(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req decisionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	bus, err := h.Buses.WithRequestID(middleware.GetRequestID(c)).ApproveBus(c.Request.Context(), rc.UserID, c.Param("busId"), req.Note)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

func (h Handlers) RejectBus(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req decisionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	bus, err := h.Buses.WithRequestID(middleware.GetRequestID(c)).RejectBus(c.Request.Context(), rc.UserID, c.Param("busId"), req.Note)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

func (h Handlers) ApproveOwner(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	profile, err := h.Buses.WithRequestID(middleware.GetRequestID(c)).ApproveOwner(c.Request.Context(), rc.UserID, c.Param("ownerId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListAuditLog handles GET /api/admin/audit?entity=&entityId=&limit=.
func (h Handlers) ListAuditLog(c *gin.Context) {
	f := models.AuditFilter{Entity: c.Query("entity"), EntityID: c.Query("entityId")}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "limit must be a number", nil)
			return
		}
		f.Limit = n
	}
	list, err := h.Audit.ListAuditLog(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
