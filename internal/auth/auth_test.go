package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalconnect-engine/internal/domain"
)

var testSecret = []byte("this-is-a-test-signing-secret-32-chars")

func testUser() domain.User {
	return domain.User{ID: 7, Email: "ana@example.com", Role: domain.RoleAdmin}
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer(Config{Secret: testSecret, Issuer: "legalconnect", TTL: time.Hour})

	tok, err := iss.Issue(testUser())
	require.NoError(t, err)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "7", claims.Subject)
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer(Config{Secret: testSecret, TTL: time.Minute})
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return start }

	tok, err := iss.Issue(testUser())
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_WrongSecret(t *testing.T) {
	tok, err := NewIssuer(Config{Secret: testSecret}).Issue(testUser())
	require.NoError(t, err)

	_, err = NewIssuer(Config{Secret: []byte("another-secret-another-secret-xx")}).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: 1, Role: "admin"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = NewIssuer(Config{Secret: testSecret}).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer(Config{}).Issue(testUser())
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	_, err := BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("abc")
	assert.ErrorIs(t, err, ErrTokenFormat)

	_, err = BearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrTokenFormat)

	tok, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)

	assert.NoError(t, CheckPassword(hash, "admin123"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrBadCredentials)

	_, err = HashPassword("")
	assert.Error(t, err)
}
