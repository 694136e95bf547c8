package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanbix/interview-backend/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "u-1",
		Email:    "ana@example.com",
		UserType: models.UserCandidate,
	}
}

func TestTokenRoundtrip(t *testing.T) {
	m, err := NewTokenManager("test-secret", "interview-backend", time.Hour)
	require.NoError(t, err)

	token, err := m.Issue(testUser(), time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, models.UserCandidate, claims.UserType)
	assert.Equal(t, "interview-backend", claims.Issuer)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	m, err := NewTokenManager("test-secret", "interview-backend", time.Hour)
	require.NoError(t, err)

	token, err := m.Issue(testUser(), time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("secret-a", "interview-backend", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenManager("secret-b", "interview-backend", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(testUser(), time.Now().UTC())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerify_RejectsGarbage(t *testing.T) {
	m, err := NewTokenManager("test-secret", "", time.Hour)
	require.NoError(t, err)

	_, err = m.Verify("not.a.token")
	assert.Error(t, err)
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", "interview-backend", time.Hour)
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_TTL", "30m")

	m, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "interview-backend", m.issuer)
	assert.Equal(t, 30*time.Minute, m.ttl)

	t.Setenv("JWT_TTL", "soon")
	_, err = FromEnv()
	assert.Error(t, err)
}
