package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret")
	token, err := m.GenerateToken("user-1", "org-1", time.Minute)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "org-1", claims.OrganizationID)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret").GenerateToken("user-1", "org-1", time.Minute)
	require.NoError(t, err)

	_, err = NewJWTManager("other").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret")
	token, err := m.GenerateToken("user-1", "org-1", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_MissingOrganization(t *testing.T) {
	m := NewJWTManager("secret")
	token, err := m.GenerateToken("user-1", "", time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
