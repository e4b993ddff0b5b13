package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
	"github.com/layer-3/sentinel/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps are the collaborators of the HTTP router
type RouterDeps struct {
	AuthService *service.AuthService
	Metrics     ports.Metrics
	Gatherer    prometheus.Gatherer // nil disables /metrics
	Logger      *zap.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestLogger(deps.Logger),
		AuthMiddleware(deps.AuthService, deps.Metrics, deps.Logger),
	)

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	handlers := NewAuthHandlers(deps.AuthService, deps.Logger)

	// Logout and validate-token also need the raw bearer token
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/validate-token", handlers.ValidateToken)
		auth.GET("/me", RequireAuth(), handlers.Me)
	}

	users := router.Group("/api/v1/users")
	users.Use(RequireCapability(core.CapUsersManage))
	{
		users.GET("/:id", handlers.User)
	}

	return router
}
