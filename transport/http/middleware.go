package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
	"go.uber.org/zap"
)

const principalKey = "principal"

// TokenValidator turns a bearer token into a principal
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) (*core.Principal, error)
}

// AuthMiddleware attaches the principal behind a bearer token to the request.
// It is mounted once on the engine and runs before every handler.
//
// Requests without a bearer header pass through anonymous. A bearer token
// that fails verification or has been revoked is rejected with 401 on every
// route, including the ones that also serve anonymous callers.
func AuthMiddleware(validator TokenValidator, metrics ports.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			metrics.AuthDecision("anonymous")
			c.Next()
			return
		}

		principal, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrUnauthorized) {
				metrics.AuthDecision(core.TokenErrorKind(err))
				msg := "Invalid token"
				if errors.Is(err, core.ErrBlacklistedToken) {
					msg = "Invalid token or already logged out"
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
				return
			}
			metrics.AuthDecision("error")
			logger.Error("token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}

		metrics.AuthDecision("authenticated")
		c.Set(principalKey, *principal)
		c.Request = c.Request.WithContext(core.WithPrincipal(c.Request.Context(), *principal))

		c.Next()
	}
}

// RequireAuth rejects requests that reached it without a principal
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := principalFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// RequireCapability rejects principals whose role lacks the capability
func RequireCapability(capability core.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !p.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if p, ok := principalFrom(c); ok {
			fields = append(fields, zap.String("user_id", p.UserID.String()))
		}
		logger.Info("request", fields...)
	}
}

func principalFrom(c *gin.Context) (core.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return core.Principal{}, false
	}
	p, ok := v.(core.Principal)
	return p, ok
}

// extractBearer returns "" unless h is a bearer header with a token
func extractBearer(h string) string {
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
