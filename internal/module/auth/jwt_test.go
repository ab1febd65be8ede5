package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultJWTConfig(t *testing.T) {
	config := DefaultJWTConfig()
	assert.Equal(t, 15*time.Minute, config.AccessTokenExpiry)
	assert.Equal(t, "lullaby", config.Issuer)
}

func TestNewJWTManager(t *testing.T) {
	t.Run("creates with nil config uses defaults", func(t *testing.T) {
		manager := NewJWTManager(nil)
		assert.NotNil(t, manager)
		assert.Equal(t, 15*time.Minute, manager.config.AccessTokenExpiry)
	})

	t.Run("fills in a missing issuer", func(t *testing.T) {
		manager := NewJWTManager(&JWTConfig{Secret: "s", AccessTokenExpiry: time.Hour})
		assert.Equal(t, "lullaby", manager.config.Issuer)
	})
}

func TestJWTManager_GenerateAccessToken(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{
		Secret:            "test-secret-key-that-is-long-enough",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "test",
	})

	token, expiresAt, err := manager.GenerateAccessToken(uuid.New(), "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
}

func TestJWTManager_ValidateAccessToken(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{
		Secret:            "test-secret-key-that-is-long-enough",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "test",
	})

	t.Run("valid token round trip", func(t *testing.T) {
		userID := uuid.New()
		token, _, err := manager.GenerateAccessToken(userID, "test@example.com")
		require.NoError(t, err)

		claims, err := manager.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "test@example.com", claims.Email)
		assert.Equal(t, "test", claims.Issuer)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewJWTManager(&JWTConfig{
			Secret:            "a-completely-different-secret-key",
			AccessTokenExpiry: 15 * time.Minute,
			Issuer:            "test",
		})
		token, _, err := other.GenerateAccessToken(uuid.New(), "test@example.com")
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		shortLived := NewJWTManager(&JWTConfig{
			Secret:            "test-secret-key-that-is-long-enough",
			AccessTokenExpiry: -time.Minute,
			Issuer:            "test",
		})
		token, _, err := shortLived.GenerateAccessToken(uuid.New(), "test@example.com")
		require.NoError(t, err)

		_, err = shortLived.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
