package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brandlens/backend/internal/domain/identity"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/brandlens/backend/internal/infrastructure/auth"
	"github.com/brandlens/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryUserRepo struct {
	users map[uuid.UUID]*identity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[uuid.UUID]*identity.User{}}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *identity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user *identity.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func newAuthService(repo *memoryUserRepo) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "brandlens-test",
	})
	return NewAuthService(repo, jwtService, zap.NewNop())
}

func TestAuthService_Register(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	// Duplicate email is rejected
	_, err = svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "other-pass-123",
		Name:     "Alice Again",
	})
	require.Error(t, err)

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "EMAIL_TAKEN", derr.Code)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc := newAuthService(newMemoryUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "short",
		Name:     "Alice",
	})
	assert.Error(t, err)
}

func TestAuthService_Login(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Name:     "Alice",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotNil(t, result.User.LastLoginAt)
	assert.NotEmpty(t, result.Tokens.AccessToken)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Name:     "Alice",
	})
	require.NoError(t, err)

	// Wrong password and unknown email produce the same error
	_, errWrongPass := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-pass-123",
	})
	_, errNoUser := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, errWrongPass, shared.ErrUnauthorized)
	assert.ErrorIs(t, errNoUser, shared.ErrUnauthorized)
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Name:     "Alice",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), registered.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)

	// An access token cannot be used as a refresh token
	_, err = svc.Refresh(context.Background(), registered.Tokens.AccessToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAuthService_GetUser(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "s3cret-pass",
		Name:     "Alice",
	})
	require.NoError(t, err)

	user, err := svc.GetUser(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
