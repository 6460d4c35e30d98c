package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessAndRefreshUseSeparateSecrets(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	access, _, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(access)
	assert.Error(t, err)
}

func TestJWTManager_RequiresSession(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	access, _, err := m.GenerateAccessToken("u1", "")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(access)
	assert.Error(t, err)
}
