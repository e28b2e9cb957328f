package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/internal/rbac"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()})

	got, err := DecodeExpiry(token)
	require.NoError(t, err)
	assert.Equal(t, exp.Unix(), got.Unix())
}

func TestDecodeExpiryRejectsMalformedTokens(t *testing.T) {
	noExp := signedToken(t, jwt.MapClaims{"sub": "u1"})
	garbagePayload := "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"

	cases := map[string]string{
		"empty":            "",
		"two segments":     "abc.def",
		"four segments":    "a.b.c.d",
		"bad base64":       "a.%%%.c",
		"payload not json": garbagePayload,
		"missing exp":      noExp,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeExpiry(token)
			assert.Error(t, err)
			assert.True(t, TokenExpired(token, time.Now()))
		})
	}
}

func TestDecodeExpiryAcceptsPaddedPayload(t *testing.T) {
	payload := base64.URLEncoding.EncodeToString([]byte(`{"exp": 4102444800}`))
	got, err := DecodeExpiry("e30." + payload + ".sig")
	require.NoError(t, err)
	assert.Equal(t, int64(4102444800), got.Unix())
}

func TestTokenExpired(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	future := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	past := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Second).Unix()})
	boundary := signedToken(t, jwt.MapClaims{"exp": now.Unix()})

	assert.False(t, TokenExpired(future, now))
	assert.True(t, TokenExpired(past, now))
	assert.False(t, TokenExpired(boundary, now), "a token expiring this second is still valid")
}

func TestIssuerRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", time.Hour, 0)
	require.NoError(t, err)

	principal := rbac.Principal{ID: "u1", Email: "a@b.it", Level: rbac.LevelUserPlus, IsActive: true}
	grant, err := issuer.Issue(principal)
	require.NoError(t, err)
	assert.Equal(t, 3600, grant.ExpiresIn)
	assert.False(t, TokenExpired(grant.Token, time.Now()))

	subject, err := issuer.ParseRefresh(grant.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", subject)

	_, err = issuer.ParseRefresh(grant.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "access tokens are not refresh tokens")

	other, err := NewIssuer("other", time.Hour, 0)
	require.NoError(t, err)
	_, err = other.ParseRefresh(grant.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewIssuerValidates(t *testing.T) {
	_, err := NewIssuer("", time.Hour, 0)
	assert.Error(t, err)
	_, err = NewIssuer("secret", 0, 0)
	assert.Error(t, err)
}

func TestDecodeExpiryAcceptsStandardAlphabet(t *testing.T) {
	// The name makes the standard encoding carry '+' and '/' characters.
	raw := []byte(`{"exp":4102444800,"sub":"u1","name":"???>>>!"}`)
	padded := base64.StdEncoding.EncodeToString(raw)
	require.True(t, strings.ContainsAny(padded, "+/"))
	require.True(t, strings.HasSuffix(padded, "="))

	for name, payload := range map[string]string{
		"padded":   padded,
		"unpadded": base64.RawStdEncoding.EncodeToString(raw),
	} {
		t.Run(name, func(t *testing.T) {
			token := "eyJhbGciOiJIUzI1NiJ9." + payload + ".sig"
			got, err := DecodeExpiry(token)
			require.NoError(t, err)
			assert.Equal(t, int64(4102444800), got.Unix())
			assert.False(t, TokenExpired(token, time.Now()))
		})
	}
}

func TestCheckExpiryWrapsErrTokenExpired(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	past := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	future := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()})

	assert.NoError(t, CheckExpiry(future, now))
	for name, token := range map[string]string{"past": past, "empty": "", "malformed": "a.%%%.c"} {
		err := CheckExpiry(token, now)
		assert.ErrorIs(t, err, ErrTokenExpired, name)
	}
	assert.ErrorIs(t, CheckExpiry("a.b", now), errMalformedToken)
}
