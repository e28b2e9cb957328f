package auth

import (
	"errors"
	"time"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// Failure taxonomy of the identity provider.
var (
	// ErrInvalidCredentials means the backend rejected the credential.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrTokenExpired means the bearer token is past its expiry or undecodable.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrStorageCorrupt means persisted identity state could not be decoded.
	ErrStorageCorrupt = errors.New("auth: stored session corrupt")
	// ErrCollaboratorUnavailable wraps transport or backend failures.
	ErrCollaboratorUnavailable = errors.New("auth: authentication backend unavailable")
	// ErrLoginInProgress rejects a login while another one is in flight.
	ErrLoginInProgress = errors.New("auth: login already in progress")
	// ErrNoRefreshToken means a refresh was requested without a stored token.
	ErrNoRefreshToken = errors.New("auth: no refresh token")
)

// Credentials identify a principal at login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Grant is what the authentication backend returns on login or refresh.
type Grant struct {
	Principal    rbac.Principal `json:"user"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    int            `json:"expiresIn"`
}

func (g *Grant) valid() bool {
	return g != nil && g.Token != "" && g.Principal.ID != "" && g.Principal.Level.Valid()
}

// Session is the in-memory view of who is logged in. It is owned by a
// Provider; other components receive copies.
type Session struct {
	Principal    *rbac.Principal
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
	Loading      bool
}

// Authenticated reports whether both a principal and a token are present.
func (s Session) Authenticated() bool {
	return s.Principal != nil && s.Token != ""
}
