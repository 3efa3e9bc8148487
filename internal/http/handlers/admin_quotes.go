package handlers

import (
	"net/http"

	"connection-travels/internal/domain/models"
	"connection-travels/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func (h Handlers) ListQuoteRequests(c *gin.Context) {
	list, err := h.Bookings.ListQuoteRequests(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateNegotiation handles PATCH /api/admin/quotes/:bookingId. Keys left
// out of the body are left alone.
func (h Handlers) UpdateNegotiation(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var patch models.NegotiationPatch
	if !BindJSONOrError(c, &patch) {
		return
	}
	b, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).AdminUpdateNegotiation(c.Request.Context(), rc.UserID, c.Param("bookingId"), patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type lockOwnerRequest struct {
	OwnerPayoutPrice *float64 `json:"ownerPayoutPrice"`
}

type lockUserRequest struct {
	UserFinalPrice *float64 `json:"userFinalPrice"`
}

func (h Handlers) LockOwnerPayout(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req lockOwnerRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	b, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).LockOwnerPayout(c.Request.Context(), rc.UserID, c.Param("bookingId"), req.OwnerPayoutPrice)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h Handlers) LockUserPrice(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req lockUserRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	b, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).LockUserPrice(c.Request.Context(), rc.UserID, c.Param("bookingId"), req.UserFinalPrice)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h Handlers) CancelBooking(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var req cancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	b, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).CancelBooking(c.Request.Context(), rc.UserID, c.Param("bookingId"), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h Handlers) CompleteBooking(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	b, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).CompleteBooking(c.Request.Context(), rc.UserID, c.Param("bookingId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
