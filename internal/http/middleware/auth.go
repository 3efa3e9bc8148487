package middleware

import (
	"errors"
	"net/http"
	"strings"

	"connection-travels/internal/auth"
	"connection-travels/internal/domain"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// TokenParser is satisfied by auth.Issuer.
type TokenParser interface {
	ParseAccess(token string) (auth.Claims, error)
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"message":    message,
		"request_id": GetRequestID(c),
	})
}

// BearerToken reads "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SetCaller stores the authenticated caller on the request.
func SetCaller(c *gin.Context, caller domain.RequestContext) {
	c.Set(callerKey, caller)
}

func CallerFrom(c *gin.Context) (domain.RequestContext, bool) {
	if c == nil {
		return domain.RequestContext{}, false
	}
	v, ok := c.Get(callerKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	caller, ok := v.(domain.RequestContext)
	return caller, ok
}

// Authorize looks the matched route up in table. Routes missing from the
// table are public; listed routes need a valid bearer token whose role is
// allowed.
func Authorize(parser TokenParser, table RouteRoles) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, protected := table.lookup(c.Request.Method, c.FullPath())
		if !protected {
			c.Next()
			return
		}
		token := BearerToken(c)
		if token == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := parser.ParseAccess(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token has expired"
			}
			abortJSON(c, http.StatusUnauthorized, "unauthorized", msg)
			return
		}
		caller := claims.RequestContext()
		if !roles.allows(caller.Role) {
			abortJSON(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		SetCaller(c, caller)
		c.Next()
	}
}

// OwnerScope keeps owners inside their own /owners/:ownerId tree. Admins pass.
func OwnerScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing caller")
			return
		}
		if caller.Role == domain.RoleOwner && caller.OwnerID != c.Param(param) {
			abortJSON(c, http.StatusForbidden, "forbidden", "owner scope mismatch")
			return
		}
		c.Next()
	}
}
