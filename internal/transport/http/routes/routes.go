package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/task-platform-auth/internal/infra/config"
	"github.com/arklim/task-platform-auth/internal/transport/http/handlers"
	"github.com/arklim/task-platform-auth/internal/transport/http/middleware"
	"github.com/arklim/task-platform-auth/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth  *usecase.AuthService
	Users *usecase.UserService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	if deps.Config != nil && len(deps.Config.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.CORS))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup, buildAuthMiddlewares(deps))

		if deps.Services.Users != nil {
			userGroup := api.Group("/user")
			userHandler := handlers.NewUserHandler(deps.Services.Users, deps.Services.Auth)
			userHandler.RegisterRoutes(userGroup)
		}
	}

	return r
}

func buildAuthMiddlewares(deps Dependencies) handlers.RouteMiddlewares {
	if deps.RateLimiter == nil || deps.Config == nil {
		return handlers.RouteMiddlewares{}
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	build := func(name string, limit int) []gin.HandlerFunc {
		if limit <= 0 {
			return nil
		}
		rule := middleware.RateLimitRule{
			Name:       name,
			Limit:      limit,
			Window:     window,
			Identifier: middleware.ClientIPIdentifier(),
		}
		return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
	}

	return handlers.RouteMiddlewares{
		Register: build("auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts),
		Login:    build("auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts),
		Refresh:  build("auth_refresh_ip", deps.Config.RateLimit.RefreshMaxAttempts),
	}
}
