package handlers

import (
	"net/http"

	"connection-travels/internal/domain/models"
	"connection-travels/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// RequestQuote handles POST /api/bookings.
func (h Handlers) RequestQuote(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	var in models.QuoteInput
	if !BindJSONOrError(c, &in) {
		return
	}
	b, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).RequestQuote(c.Request.Context(), rc.UserID, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b.ForCustomer())
}

func (h Handlers) ListMyBookings(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListBookingsForUser(c.Request.Context(), rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) GetMyBooking(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.Bookings.GetBookingForUser(c.Request.Context(), rc.UserID, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ConfirmMyBooking records the customer's sign-off.
func (h Handlers) ConfirmMyBooking(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	view, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).ConfirmByUser(c.Request.Context(), rc.UserID, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ConfirmationPDF returns the confirmation document inline.
func (h Handlers) ConfirmationPDF(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	pdfBytes, filename, err := h.Docs.WithRequestID(middleware.GetRequestID(c)).RenderConfirmation(c.Request.Context(), rc.UserID, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
