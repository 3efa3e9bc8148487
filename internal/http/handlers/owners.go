package handlers

import (
	"net/http"

	"connection-travels/internal/domain/models"
	"connection-travels/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Routes here sit behind middleware.OwnerScope("ownerId").

func (h Handlers) ListOwnerBookings(c *gin.Context) {
	list, err := h.Bookings.ListBookingsForOwner(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) ConfirmOwnerBooking(c *gin.Context) {
	view, err := h.Bookings.WithRequestID(middleware.GetRequestID(c)).ConfirmByOwner(c.Request.Context(), c.Param("ownerId"), c.Param("bookingId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h Handlers) ListOwnerBuses(c *gin.Context) {
	list, err := h.Buses.ListOwnerBuses(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h Handlers) CreateBus(c *gin.Context) {
	var in models.BusInput
	if !BindJSONOrError(c, &in) {
		return
	}
	bus, err := h.Buses.WithRequestID(middleware.GetRequestID(c)).CreateBus(c.Request.Context(), c.Param("ownerId"), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bus)
}

func (h Handlers) UpdateBus(c *gin.Context) {
	var patch models.BusPatch
	if !BindJSONOrError(c, &patch) {
		return
	}
	bus, err := h.Buses.WithRequestID(middleware.GetRequestID(c)).UpdateBus(c.Request.Context(), c.Param("ownerId"), c.Param("busId"), patch)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

// ListBuses is the public catalogue.
func (h Handlers) ListBuses(c *gin.Context) {
	list, err := h.Buses.ListActiveBuses(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
