package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// TokenType separates access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims carried by tokens minted by the local backend.
type Claims struct {
	jwt.RegisteredClaims

	Email     string     `json:"email,omitempty"`
	Role      rbac.Level `json:"role"`
	TokenType TokenType  `json:"token_type"`
}

var errMalformedToken = errors.New("auth: malformed bearer token")

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeExpiry reads the exp claim from the payload segment of a bearer token
// without verifying its signature. The token must have exactly three
// dot-separated segments and the payload must carry an exp claim.
func DecodeExpiry(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, errMalformedToken
	}
	payload, err := decodePayload(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errMalformedToken, err)
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errMalformedToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp", errMalformedToken)
	}
	return exp.Time, nil
}

// decodePayload accepts base64url segments as well as the standard alphabet
// some collaborators emit.
func decodePayload(seg string) ([]byte, error) {
	payload, err := segmentParser.DecodeSegment(seg)
	if err == nil {
		return payload, nil
	}
	if strings.HasSuffix(seg, "=") {
		if payload, stdErr := base64.StdEncoding.DecodeString(seg); stdErr == nil {
			return payload, nil
		}
	} else if payload, stdErr := base64.RawStdEncoding.DecodeString(seg); stdErr == nil {
		return payload, nil
	}
	return nil, err
}

// CheckExpiry returns an error wrapping ErrTokenExpired when token is past
// its expiry at now or cannot be decoded.
func CheckExpiry(token string, now time.Time) error {
	if token == "" {
		return fmt.Errorf("%w: no token", ErrTokenExpired)
	}
	exp, err := DecodeExpiry(token)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	}
	if exp.Unix() < now.Unix() {
		return fmt.Errorf("%w: expired at %s", ErrTokenExpired, exp.UTC().Format(time.RFC3339))
	}
	return nil
}

// TokenExpired reports whether token is expired at now. Anything that cannot
// be decoded counts as expired.
func TokenExpired(token string, now time.Time) bool {
	return CheckExpiry(token, now) != nil
}

// Issuer mints HS256 access and refresh tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer builds an Issuer. refreshTTL defaults to 24 times accessTTL.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("auth: access token ttl must be positive")
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * accessTTL
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue mints a grant for p.
func (i *Issuer) Issue(p rbac.Principal) (*Grant, error) {
	access, err := i.sign(p, TokenTypeAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(p, TokenTypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Grant{
		Principal:    p,
		Token:        access,
		RefreshToken: refresh,
		ExpiresIn:    int(i.accessTTL / time.Second),
	}, nil
}

// ParseRefresh verifies a refresh token and returns its subject.
func (i *Issuer) ParseRefresh(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidCredentials
	}
	if claims.TokenType != TokenTypeRefresh || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

func (i *Issuer) sign(p rbac.Principal, kind TokenType, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     p.Email,
		Role:      p.Level,
		TokenType: kind,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign %s token: %w", kind, err)
	}
	return signed, nil
}
