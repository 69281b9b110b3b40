package identity

import (
	"testing"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("Alice@Example.COM", "s3cret-pass", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, billing.TierFree, user.Plan)
	assert.Equal(t, UserStatusActive, user.Status)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
}

func TestNewUser_InvalidEmail(t *testing.T) {
	cases := []string{"", "not-an-email", "missing@tld"}
	for _, email := range cases {
		_, err := NewUser(email, "s3cret-pass", "")
		require.Error(t, err, "email %q", email)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_EMAIL", domainErr.Code)
	}
}

func TestNewUser_ShortPassword(t *testing.T) {
	_, err := NewUser("alice@example.com", "short", "Alice")
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
}

func TestUser_VerifyPassword(t *testing.T) {
	user, err := NewUser("alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("s3cret-pass"))
	assert.False(t, user.VerifyPassword("wrong-pass"))
}

func TestUser_SetPlan(t *testing.T) {
	user, err := NewUser("alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)

	require.NoError(t, user.SetPlan(billing.TierPro))
	assert.Equal(t, billing.TierPro, user.Plan)
	assert.True(t, user.Plan.HasPro())

	err = user.SetPlan(billing.Tier("platinum"))
	require.Error(t, err)
	assert.Equal(t, billing.TierPro, user.Plan)
}
