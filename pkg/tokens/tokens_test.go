package tokens

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Now()
	tok, err := NewAccessToken(secret, "user-1", "admin", now, now.Add(time.Minute))
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAccessToken_Expired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	tok, err := NewAccessToken(secret, "user-1", "user", past, past.Add(time.Minute))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired), "got %v", err)
}

func TestRefreshToken_UniqueJTI(t *testing.T) {
	now := time.Now()
	a, jtiA, err := NewRefreshToken(secret, "user-1", now, now.Add(time.Hour))
	require.NoError(t, err)
	b, jtiB, err := NewRefreshToken(secret, "user-1", now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, jtiA, jtiB)

	claims, err := RefreshClaimsFromToken(a, secret)
	require.NoError(t, err)
	assert.Equal(t, jtiA, claims.ID)
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	claims := AccessClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	assert.ErrorIs(t, err, ErrSignMethod)
}

func TestCookies(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	ck := CreateCookie(AccessCookie, "v", "/", exp)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	del := DeleteCookie(RefreshCookie, "/")
	assert.Equal(t, -1, del.MaxAge)
	assert.Empty(t, del.Value)
}

func TestSha256Hex(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sha256Hex(""))
	assert.Len(t, Sha256Hex("token"), 64)
}
