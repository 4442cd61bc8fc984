// Package auth issues and validates access tokens for the HTTP and
// WebSocket surfaces.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/middleware"
)

// Token errors.
var (
	ErrEmptySecret    = errors.New("token secret cannot be empty")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrMissingSubject = errors.New("missing subject claim")
)

const defaultLeeway = 30 * time.Second

// TokenService signs and verifies HMAC access tokens. It implements
// middleware.TokenValidator so the same instance backs both the issuing
// endpoints and the auth middleware.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// TokenServiceOption configures a TokenService.
type TokenServiceOption func(*TokenService)

// WithLeeway sets the clock skew tolerance for validation.
func WithLeeway(leeway time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		s.leeway = leeway
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service signing with the given secret.
// ttl controls how long issued tokens remain valid.
func NewTokenService(secret string, ttl time.Duration, opts ...TokenServiceOption) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		leeway: defaultLeeway,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Issue creates a signed access token for the given user.
func (s *TokenService) Issue(userID identifier.ID, name, email string) (string, error) {
	if userID.IsZero() {
		return "", fmt.Errorf("%w: user id is required", ErrInvalidToken)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"name":  name,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken verifies the token signature and expiry and returns the
// claims. It satisfies middleware.TokenValidator.
func (s *TokenService) ValidateToken(_ context.Context, tokenString string) (*middleware.TokenClaims, error) {
	if tokenString == "" {
		return nil, middleware.ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithLeeway(s.leeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", middleware.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", middleware.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, middleware.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, middleware.ErrInvalidToken
	}

	return s.extractClaims(claims)
}

func (s *TokenService) extractClaims(claims jwt.MapClaims) (*middleware.TokenClaims, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: %w", middleware.ErrInvalidToken, ErrMissingSubject)
	}

	userID, err := identifier.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %w", middleware.ErrInvalidToken, err)
	}

	tc := &middleware.TokenClaims{UserID: userID}
	tc.Name, _ = claims["name"].(string)
	tc.Email, _ = claims["email"].(string)

	if exp, expOK := claims["exp"].(float64); expOK {
		tc.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return tc, nil
}

var _ middleware.TokenValidator = (*TokenService)(nil)
