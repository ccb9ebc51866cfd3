package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestExtractExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	bearer := signed(t, jwt.MapClaims{"exp": exp.Unix(), "user_id": "u1"})

	got, err := ExtractExpiry(bearer)

	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestExtractExpiry_NoExpClaim(t *testing.T) {
	bearer := signed(t, jwt.MapClaims{"user_id": "u1"})

	_, err := ExtractExpiry(bearer)

	assert.Error(t, err)
}

func TestExtractExpiry_NotAToken(t *testing.T) {
	_, err := ExtractExpiry("opaque-session-id")

	assert.Error(t, err)
}
