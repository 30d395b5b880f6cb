package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/personal-library/internal/apperr"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("super-secret", time.Hour)

	tok, err := svc.Issue("user-123")
	require.NoError(t, err)

	got, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestDefaultTTLIsSevenDays(t *testing.T) {
	svc := NewTokenService("s", 0)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(issued)

	tok, err := svc.Issue("u1")
	require.NoError(t, err)

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)
	assert.True(t, issued.Add(7*24*time.Hour).Equal(claims.ExpiresAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	ttl := 7 * 24 * time.Hour
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewTokenService("secret", ttl)
	svc.now = fixedClock(issued)

	tok, err := svc.Issue("u1")
	require.NoError(t, err)

	svc.now = fixedClock(issued.Add(ttl - time.Second))
	got, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", got)

	// the expiry instant itself is already invalid
	svc.now = fixedClock(issued.Add(ttl))
	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	svc.now = fixedClock(issued.Add(ttl + time.Second))
	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := NewTokenService("right-secret", time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenService("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewTokenService("k", time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		_, err := svc.Verify(tok)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated, tok)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	secret := []byte("k")
	claims := Claims{
		UserID: "u3",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenService("k", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestVerifyRequiresExpiryAndUser(t *testing.T) {
	secret := []byte("k")
	svc := NewTokenService("k", time.Hour)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u4"}).SignedString(secret)
	require.NoError(t, err)
	_, err = svc.Verify(noExp)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = svc.Verify(noUser)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestMissingSecretIsConfigurationError(t *testing.T) {
	svc := NewTokenService("", time.Hour)

	_, err := svc.Issue("u1")
	assert.ErrorIs(t, err, apperr.ErrConfiguration)

	_, err = svc.Verify("whatever")
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}
