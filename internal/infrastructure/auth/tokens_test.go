package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/infrastructure/auth"
	"github.com/feastline/feastline/internal/middleware"
)

const testSecret = "test-secret"

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	userID := identifier.New()
	token, err := svc.Issue(userID, "Alice", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestTokenService_RejectsEmptySecret(t *testing.T) {
	_, err := auth.NewTokenService("", time.Hour)

	require.ErrorIs(t, err, auth.ErrEmptySecret)
}

func TestTokenService_RejectsZeroUser(t *testing.T) {
	svc, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = svc.Issue(identifier.ID(""), "Alice", "alice@example.com")

	require.Error(t, err)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer, err := auth.NewTokenService(testSecret, time.Hour,
		auth.WithClock(func() time.Time { return issuedAt }),
	)
	require.NoError(t, err)

	token, err := issuer.Issue(identifier.New(), "Alice", "alice@example.com")
	require.NoError(t, err)

	validator, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(context.Background(), token)

	require.ErrorIs(t, err, middleware.ErrTokenExpired)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(identifier.New(), "Alice", "alice@example.com")
	require.NoError(t, err)

	validator, err := auth.NewTokenService("other-secret", time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateToken(context.Background(), token)

	require.ErrorIs(t, err, middleware.ErrInvalidToken)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), "not-a-token")
	require.ErrorIs(t, err, middleware.ErrInvalidToken)

	_, err = svc.ValidateToken(context.Background(), "")
	require.ErrorIs(t, err, middleware.ErrInvalidToken)
}
