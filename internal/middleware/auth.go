// Package middleware holds the echo middleware used by the API server.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/domain/identifier"
)

// Context keys for authentication data.
type contextKey string

const (
	// ContextKeyUserID is the context key for the authenticated user id.
	ContextKeyUserID contextKey = "user_id"

	// ContextKeyUserName is the context key for the user's display name.
	ContextKeyUserName contextKey = "user_name"

	// ContextKeyEmail is the context key for the user's email.
	ContextKeyEmail contextKey = "email"
)

// Auth errors.
var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)

// TokenClaims represents the claims extracted from an access token.
type TokenClaims struct {
	UserID    identifier.ID
	Name      string
	Email     string
	ExpiresAt time.Time
}

// TokenValidator defines the interface for validating access tokens.
type TokenValidator interface {
	// ValidateToken validates a token and returns the claims.
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Logger is the structured logger for auth events.
	Logger *slog.Logger

	// TokenValidator validates access tokens.
	TokenValidator TokenValidator

	// SkipPaths are paths that don't require authentication.
	SkipPaths []string
}

// DefaultAuthConfig returns an AuthConfig with sensible defaults.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Logger:    slog.Default(),
		SkipPaths: []string{"/health", "/ready", "/metrics", "/user/register", "/user/login", "/ws"},
	}
}

// Auth returns an authentication middleware with the given configuration.
func Auth(config AuthConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if _, ok := skipPaths[path]; ok {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			token, tokenErr := extractBearerToken(authHeader)
			if tokenErr != nil {
				return respondAuthError(c, tokenErr)
			}

			if config.TokenValidator == nil {
				config.Logger.Error("token validator not configured")
				return respondAuthError(c, ErrInvalidToken)
			}

			claims, validateErr := config.TokenValidator.ValidateToken(c.Request().Context(), token)
			if validateErr != nil {
				config.Logger.Warn("token validation failed",
					slog.String("error", validateErr.Error()),
					slog.String("path", path),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondAuthError(c, validateErr)
			}

			enrichContext(c, claims)

			config.Logger.Debug("user authenticated",
				slog.String("user_id", claims.UserID.String()),
				slog.String("path", path),
			)

			return next(c)
		}
	}
}

// extractBearerToken extracts the token from a Bearer authorization header.
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthHeader
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrInvalidAuthHeader
	}

	return token, nil
}

func enrichContext(c echo.Context, claims *TokenClaims) {
	c.Set(string(ContextKeyUserID), claims.UserID)
	c.Set(string(ContextKeyUserName), claims.Name)
	c.Set(string(ContextKeyEmail), claims.Email)
}

func respondAuthError(c echo.Context, err error) error {
	message := "authentication required"

	switch {
	case errors.Is(err, ErrMissingAuthHeader):
		message = "missing authorization header"
	case errors.Is(err, ErrInvalidAuthHeader):
		message = "invalid authorization header format"
	case errors.Is(err, ErrTokenExpired):
		message = "token has expired"
	case errors.Is(err, ErrInvalidToken):
		message = "invalid token"
	}

	return c.JSON(http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": message,
	})
}

// GetUserID extracts the authenticated user id from the echo context.
func GetUserID(c echo.Context) identifier.ID {
	if id, ok := c.Get(string(ContextKeyUserID)).(identifier.ID); ok {
		return id
	}
	return identifier.ID("")
}

// GetUserName extracts the user's display name from the echo context.
func GetUserName(c echo.Context) string {
	if name, ok := c.Get(string(ContextKeyUserName)).(string); ok {
		return name
	}
	return ""
}

// GetEmail extracts the user's email from the echo context.
func GetEmail(c echo.Context) string {
	if email, ok := c.Get(string(ContextKeyEmail)).(string); ok {
		return email
	}
	return ""
}
