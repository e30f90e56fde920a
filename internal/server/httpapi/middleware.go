package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed on top of the file payload for
// multipart boundaries and headers.
const multipartOverhead = 1 << 20

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (h *handler) handlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		respondError(c, h.logger, apperrors.NewInternalError("internal server error", fmt.Errorf("panic: %v", recovered)))
	}
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) string {
	v := r.Header.Get(common.AuthorizationHeader)
	if !strings.HasPrefix(v, common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(v, common.BearerPrefix))
}

func (h *handler) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request)
		if token == "" {
			respondError(c, h.logger, apperrors.NewUnauthorizedError("missing bearer token", common.ErrInvalidToken))
			return
		}
		if !h.auth.IsValid(c.Request.Context(), token) {
			respondError(c, h.logger, apperrors.NewUnauthorizedError("invalid or expired session", common.ErrInvalidToken))
			return
		}
		c.Next()
	}
}
