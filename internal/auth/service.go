package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service bundles registration, login, and token-based authentication.
//
// The signing secret and token TTL are injected once at construction and
// read-only thereafter; no component reads them from ambient globals.
type Service struct {
	users  UserRepository
	secret string
	ttl    time.Duration
}

// NewService creates an auth service.
func NewService(users UserRepository, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultAccessTokenTTL
	}
	return &Service{users: users, secret: secret, ttl: ttl}
}

// TokenTTL returns the configured access token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.ttl
}

// Register creates a new user account with a freshly hashed password.
//
// Fails with ErrInvalidUsername for an empty or malformed username,
// ErrEmptyPassword for an empty password, and ErrUsernameExists when the
// username is already taken (enforced by the store's uniqueness constraint,
// so concurrent registrations cannot both succeed).
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues an access token.
//
// An unknown username and a wrong password both fail with the identical
// ErrInvalidCredentials, so callers and clients get no signal about which
// check failed.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateAccessToken(user.Username, s.secret, s.ttl)
	if err != nil {
		return "", fmt.Errorf("issuing token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to the user it identifies.
//
// It validates the token (signature and expiry), then looks the subject up
// in the credential store. A token whose subject no longer exists fails
// with ErrUnknownSubject. Every protected operation calls this first; its
// failure short-circuits the operation with no side effects.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("looking up token subject: %w", err)
	}

	return user, nil
}
