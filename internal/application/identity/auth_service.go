// Package identity contains the application services for accounts and
// authentication.
package identity

import (
	"context"
	"errors"

	"github.com/brandlens/backend/internal/domain/identity"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/brandlens/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterInput holds parameters for creating an account
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput holds credentials for signing in
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult bundles the authenticated user with a fresh token pair
type AuthResult struct {
	User   *identity.User
	Tokens *auth.TokenPair
}

// AuthService implements registration, login, and token refresh
type AuthService struct {
	users  identity.UserRepository
	tokens *auth.JWTService
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users identity.UserRepository, tokens *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account and signs the user in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := identity.NewUser(input.Email, input.Password, input.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issueTokens(user)
}

// Login verifies credentials and issues a token pair. Wrong email and wrong
// password return the same error so the endpoint doesn't leak which emails
// have accounts.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	if !user.IsActive() || !user.VerifyPassword(input.Password) {
		return nil, shared.ErrUnauthorized
	}

	user.RecordLogin()
	if err := s.users.Update(ctx, user); err != nil {
		// Login still succeeds; the timestamp is informational
		s.logger.Warn("Failed to record login time",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.ErrSessionExpired
		}
		return nil, shared.ErrUnauthorized
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.ErrUnauthorized
	}

	return s.issueTokens(user)
}

// GetUser loads the account behind an authenticated request
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issueTokens(user *identity.User) (*AuthResult, error) {
	tokens, err := s.tokens.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Plan:   user.Plan.String(),
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}
