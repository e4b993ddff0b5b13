package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/sentinel/core"
	"go.uber.org/zap"
)

// writeError maps service errors to status codes. Anything unrecognised is
// logged and reported as 500 without details.
func (h *AuthHandlers) writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "Internal error"

	switch {
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrInvalidRole):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrEmailTaken):
		status, msg = http.StatusConflict, "Email is already in use"
	case errors.Is(err, core.ErrAuthenticationFailure):
		status, msg = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, core.ErrRefreshTokenNotFound), errors.Is(err, core.ErrRefreshTokenExpired):
		status, msg = http.StatusForbidden, "Refresh token is invalid or expired, please login again"
	case errors.Is(err, core.ErrAlreadyLoggedOut):
		status, msg = http.StatusUnauthorized, "Invalid token or already logged out"
	case errors.Is(err, core.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, core.ErrUserNotFound):
		status, msg = http.StatusNotFound, "User not found"
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": msg})
}
