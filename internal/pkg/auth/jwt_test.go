package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/donate-storefront/internal/config"
)

func testManager() *JWTManager {
	cfg := &config.Config{
		App: config.AppConfig{Name: "Donate Storefront"},
		JWT: config.JWTConfig{Secret: "test-secret-that-is-long-enough-123456", AccessTokenExpiry: time.Hour},
	}
	return NewJWTManager(cfg)
}

func TestGenerateAndValidate(t *testing.T) {
	j := testManager()

	token, err := j.GenerateToken(123456789, true)
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), claims.UserID)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "user:123456789", claims.Subject)
}

func TestExpiredToken(t *testing.T) {
	j := testManager()
	token, err := j.GenerateToken(1, false)
	require.NoError(t, err)

	j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = j.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestForeignSecret(t *testing.T) {
	token, err := testManager().GenerateToken(1, false)
	require.NoError(t, err)

	other := testManager()
	other.secret = []byte("another-secret-that-is-long-enough-0000")
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
}
