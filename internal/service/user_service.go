package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/feastline/feastline/internal/domain/errs"
	"github.com/feastline/feastline/internal/domain/identifier"
	"github.com/feastline/feastline/internal/domain/user"
)

const minPasswordLength = 8

// TokenIssuer signs access tokens for authenticated users. The auth
// infrastructure satisfies it.
type TokenIssuer interface {
	Issue(userID identifier.ID, name, email string) (string, error)
}

// AuthResult carries the signed token and the account's public profile.
type AuthResult struct {
	Token string       `json:"token"`
	User  user.Profile `json:"user"`
}

// UserService handles registration, login, and the participant directory.
type UserService struct {
	users  user.Repository
	tokens TokenIssuer
	logger *slog.Logger
}

// UserServiceOption configures a UserService.
type UserServiceOption func(*UserService)

// WithUserLogger sets the logger for the service.
func WithUserLogger(logger *slog.Logger) UserServiceOption {
	return func(s *UserService) {
		s.logger = logger
	}
}

// NewUserService creates a user service.
func NewUserService(users user.Repository, tokens TokenIssuer, opts ...UserServiceOption) *UserService {
	s := &UserService{
		users:  users,
		tokens: tokens,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register creates an account with a bcrypt-hashed password and returns a
// signed token. A duplicate email fails with ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := user.New(name, email, string(hash))
	if err != nil {
		return nil, err
	}

	if createErr := s.users.Create(ctx, u); createErr != nil {
		return nil, createErr
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", u.ID.String()))

	return s.authResult(u)
}

// Login verifies credentials and returns a signed token. Both an unknown
// email and a bad password fail with ErrUnauthorized so the response does
// not reveal which one was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.ErrUnauthorized
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errs.ErrUnauthorized
	}

	return s.authResult(u)
}

// Profile returns the public projection of the account.
func (s *UserService) Profile(ctx context.Context, userID identifier.ID) (*user.Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := u.Profile()
	return &p, nil
}

// ProfilesByIDs is the participant directory: it batch-resolves ids to
// public profiles. Missing ids are absent from the result.
func (s *UserService) ProfilesByIDs(ctx context.Context, ids []identifier.ID) ([]user.Profile, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]user.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (s *UserService) authResult(u *user.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, u.Name, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Token: token, User: u.Profile()}, nil
}
