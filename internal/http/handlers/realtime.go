package handlers

import (
	"net/http"

	"connection-travels/internal/domain"
	"connection-travels/internal/http/middleware"
	"connection-travels/internal/realtime"
	"connection-travels/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// audienceFor picks the single room a connection may join.
func audienceFor(rc domain.RequestContext) realtime.Audience {
	switch rc.Role {
	case domain.RoleAdmin:
		return realtime.Admins
	case domain.RoleOwner:
		return realtime.Owner(rc.OwnerID)
	default:
		return realtime.Users
	}
}

// Realtime upgrades GET /api/realtime?role=&ownerId=&token=. The query role
// and ownerId must agree with the token.
func (h Handlers) Realtime(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = middleware.BearerToken(c)
	}
	if token == "" {
		respondError(c, http.StatusUnauthorized, "unauthorized", "missing token", nil)
		return
	}
	claims, err := h.Tokens.ParseAccess(token)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid token", nil)
		return
	}
	rc := claims.RequestContext()

	role, ok := domain.ParseRole(c.Query("role"))
	if !ok || role != rc.Role {
		respondError(c, http.StatusForbidden, "forbidden", "role does not match token", nil)
		return
	}
	if rc.Role == domain.RoleOwner && c.Query("ownerId") != rc.OwnerID {
		respondError(c, http.StatusForbidden, "forbidden", "ownerId does not match token", nil)
		return
	}
	if h.Hub == nil || h.Upgrader == nil {
		respondError(c, http.StatusServiceUnavailable, "unavailable", "realtime is not enabled", nil)
		return
	}

	if err := h.Hub.Serve(h.Upgrader, c.Writer, c.Request, uuid.NewString(), audienceFor(rc)); err != nil {
		// Upgrade has already written the HTTP error.
		utils.LogFailure(middleware.GetRequestID(c), "realtime", "upgrade", err)
	}
}
