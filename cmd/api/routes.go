// Package main provides the API server entry point.
package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/feastline/feastline/internal/infrastructure/httpserver"
	"github.com/feastline/feastline/internal/middleware"
)

// SetupRoutes builds the HTTP server with the middleware chain and all
// route registrations.
func SetupRoutes(c *Container) *httpserver.Server {
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:            c.Config.Server.Host,
		Port:            c.Config.Server.Port,
		ReadTimeout:     c.Config.Server.ReadTimeout,
		WriteTimeout:    c.Config.Server.WriteTimeout,
		ShutdownTimeout: c.Config.Server.ShutdownTimeout,
	}, c.Logger)

	e := server.Echo()

	setupMiddleware(e, c)
	registerRoutes(e, c)

	return server
}

// setupMiddleware installs the global middleware chain. Order matters:
// recovery first so panics in later middleware are caught, auth last so
// everything it rejects is already logged.
func setupMiddleware(e *echo.Echo, c *Container) {
	e.Use(middleware.Recovery(c.Logger))

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.Logger = c.Logger
	e.Use(middleware.Logging(loggingConfig))

	e.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	rateLimitConfig := middleware.DefaultRateLimitConfig()
	rateLimitConfig.Logger = c.Logger
	if c.Redis != nil {
		rateLimitConfig.Store = middleware.NewRedisRateLimitStore(c.Redis, "ratelimit")
	} else {
		rateLimitConfig.Store = middleware.NewMemoryRateLimitStore()
	}
	e.Use(middleware.RateLimit(rateLimitConfig))

	authConfig := middleware.DefaultAuthConfig()
	authConfig.Logger = c.Logger
	authConfig.TokenValidator = c.Tokens
	e.Use(middleware.Auth(authConfig))
}

// registerRoutes attaches all handlers plus the operational endpoints.
func registerRoutes(e *echo.Echo, c *Container) {
	c.UserHandler.RegisterRoutes(e)
	c.ChatHandler.RegisterRoutes(e)
	c.FoodHandler.RegisterRoutes(e)
	c.CartHandler.RegisterRoutes(e)
	c.OrderHandler.RegisterRoutes(e)
	c.WSHandler.RegisterRoutes(e)

	e.GET("/health", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	e.GET("/ready", func(ec echo.Context) error {
		if err := c.Mongo.Ping(ec.Request().Context(), readpref.Primary()); err != nil {
			return ec.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		}
		return ec.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		c.Registry,
		promhttp.HandlerOpts{},
	)))
}
