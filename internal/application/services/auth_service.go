package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/ai"
	"github.com/AuZanPs/fitmatch-go/internal/domain/entities/user"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/observability/logging"
	userpersist "github.com/AuZanPs/fitmatch-go/internal/infrastructure/persistence/user"
	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/security"
	"github.com/AuZanPs/fitmatch-go/pkg/config"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("an account with this email already exists")
)

// AuthResult is a successful registration or login.
type AuthResult struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// AuthService handles registration, login, and preference updates.
type AuthService struct {
	users  *userpersist.Repository
	logger *logging.ChanneledLogger
}

// NewAuthService creates the authentication service.
func NewAuthService(users *userpersist.Repository, logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Register creates an account and returns a signed session token.
func (s *AuthService) Register(ctx context.Context, email, password, firstName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &user.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(firstName),
	}
	if err := s.users.Create(ctx, account); err != nil {
		return nil, err
	}

	token, err := security.GenerateUserToken(account.ID, account.Email, config.JWTSecret, config.TokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Auth().Info("Account registered", "userId", account.ID)
	return &AuthResult{User: account, Token: token}, nil
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || !security.CheckPassword(account.PasswordHash, password) {
		s.logger.Auth().Warn("Failed login attempt", "email", email)
		return nil, ErrInvalidCredentials
	}

	token, err := security.GenerateUserToken(account.ID, account.Email, config.JWTSecret, config.TokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Auth().Info("User logged in", "userId", account.ID)
	return &AuthResult{User: account, Token: token}, nil
}

// UpdatePreferences replaces the user's standing style preferences.
func (s *AuthService) UpdatePreferences(ctx context.Context, userID string, prefs *ai.Preferences) error {
	if prefs == nil {
		return fmt.Errorf("preferences payload is required")
	}
	return s.users.UpdatePreferences(ctx, userID, prefs)
}

// GetProfile returns the account for an id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*user.User, error) {
	return s.users.FindByID(ctx, userID)
}
