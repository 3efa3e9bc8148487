package handlers

import (
	"net/http"

	"connection-travels/internal/domain/models"
	"connection-travels/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Auth.WithRequestID(middleware.GetRequestID(c)).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h Handlers) Register(c *gin.Context) {
	var req models.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Auth.WithRequestID(middleware.GetRequestID(c)).RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h Handlers) RegisterOwner(c *gin.Context) {
	var req models.OwnerRegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.Auth.WithRequestID(middleware.GetRequestID(c)).RegisterOwner(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h Handlers) Me(c *gin.Context) {
	rc, ok := caller(c)
	if !ok {
		return
	}
	u, err := h.Auth.Me(c.Request.Context(), rc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
