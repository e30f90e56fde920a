package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/apperrors"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type validateResponse struct {
	IsValid bool `json:"isValid"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperrors.NewValidationError("email and password are required", err))
		return
	}

	session, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{SessionID: session.ID, ExpiresAt: session.ExpiresAt})
}

// logout revokes the bearer token when one is present. Repeated calls
// succeed.
func (h *handler) logout(c *gin.Context) {
	if token := bearerToken(c.Request); token != "" {
		if err := h.auth.Revoke(c.Request.Context(), token); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *handler) validate(c *gin.Context) {
	token := bearerToken(c.Request)
	c.JSON(http.StatusOK, validateResponse{IsValid: h.auth.IsValid(c.Request.Context(), token)})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
