package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// respondError logs err once and aborts with its status. Server-side
// failures get a generic message.
func respondError(c *gin.Context, logger logging.Logger, err error) {
	code := apperrors.StatusCode(err)
	fields := []any{
		"status_code", code,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"error", err,
	}
	if code >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", fields...)
	} else {
		logger.Warn(c.Request.Context(), "request rejected", fields...)
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: apperrors.Message(err),
	})
}
