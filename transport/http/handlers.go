package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/service"
	"go.uber.org/zap"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
	}
}

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Role      core.Role  `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *userResponse `json:"user,omitempty"`
}

func newTokenResponse(pair core.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(pair.ExpiresIn / time.Second),
	}
}

func principalResponse(p core.Principal) *userResponse {
	return &userResponse{ID: p.UserID, Email: p.Email, Role: p.Role}
}

func fullUserResponse(u *core.User) *userResponse {
	created := u.CreatedAt
	return &userResponse{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: &created}
}

// Register creates a new account
func (h *AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	role := core.RoleCustomer
	if req.Role != "" {
		r, err := core.ParseRole(req.Role)
		if err != nil {
			h.writeError(c, err)
			return
		}
		role = r
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, fullUserResponse(user))
}

// Login handles the login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := newTokenResponse(res.TokenPair)
	resp.User = principalResponse(res.Principal)
	c.JSON(http.StatusOK, resp)
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(*pair))
}

// Logout revokes the bearer access token
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := extractBearer(c.GetHeader("Authorization"))
	if token == "" {
		h.writeError(c, core.ErrAlreadyLoggedOut)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ValidateToken reports the principal behind the bearer token
func (h *AuthHandlers) ValidateToken(c *gin.Context) {
	token := extractBearer(c.GetHeader("Authorization"))
	if token == "" {
		h.writeError(c, core.ErrUnauthorized)
		return
	}

	p, err := h.authService.Validate(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	user := principalResponse(*p)
	if u, err := h.authService.User(c.Request.Context(), p.UserID); err == nil {
		user = fullUserResponse(u)
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		h.writeError(c, core.ErrUnauthorized)
		return
	}

	user, err := h.authService.User(c.Request.Context(), p.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, fullUserResponse(user))
}

// User looks up any account; restricted to principals that manage users
func (h *AuthHandlers) User(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	user, err := h.authService.User(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, fullUserResponse(user))
}
