package handlers

import (
	"errors"
	"io"
	"net/http"

	"connection-travels/internal/domain"
	"connection-travels/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// BindJSONOrError ensures body is present and parsable. Binding-tag
// failures are listed per field.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			details := make([]fieldError, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, fieldError{Field: fe.Field(), Rule: fe.Tag()})
			}
			respondError(c, http.StatusBadRequest, "validation_error", "payload failed validation", details)
		case errors.Is(err, io.EOF):
			respondError(c, http.StatusBadRequest, "empty_body", "request body is empty", nil)
		default:
			respondError(c, http.StatusBadRequest, "invalid_payload", "payload is not valid JSON", nil)
		}
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	return BindJSONOrError(c, dst)
}

// caller is set by middleware.Authorize on every protected route.
func caller(c *gin.Context) (domain.RequestContext, bool) {
	rc, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "missing caller", nil)
	}
	return rc, ok
}
