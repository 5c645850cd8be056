package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("s3cret", time.Hour)

	token, err := m.GenerateToken("uid-cust-1", RoleCustomer)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-cust-1", claims.UserID)
	assert.Equal(t, RoleCustomer, claims.Role)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewManager("a", time.Hour).GenerateToken("u", RoleAdmin)
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("s3cret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := m.GenerateToken("u", RoleCustomer)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_SubjectFallback(t *testing.T) {
	m := NewManager("s3cret", time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "uid-tech-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	parsed, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-tech-1", parsed.UserID)
	assert.Empty(t, parsed.Role)
}
