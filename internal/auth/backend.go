package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
)

// Backend is the authentication collaborator the provider talks to.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (*Grant, error)
	Refresh(ctx context.Context, refreshToken string) (*Grant, error)
	Logout(ctx context.Context, token string) error
}

// LocalBackend authenticates against an account repository and mints its
// own tokens.
type LocalBackend struct {
	accounts AccountRepository
	issuer   *Issuer
}

// NewLocalBackend constructs a LocalBackend.
func NewLocalBackend(accounts AccountRepository, issuer *Issuer) *LocalBackend {
	return &LocalBackend{accounts: accounts, issuer: issuer}
}

// Login validates email/password credentials.
func (b *LocalBackend) Login(ctx context.Context, creds Credentials) (*Grant, error) {
	acc, err := b.accounts.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
	if !acc.Principal.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return b.issuer.Issue(acc.Principal)
}

// Refresh exchanges a refresh token for a new grant.
func (b *LocalBackend) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	subject, err := b.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	acc, err := b.accounts.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
	if !acc.Principal.IsActive {
		return nil, ErrInvalidCredentials
	}
	return b.issuer.Issue(acc.Principal)
}

// Logout is a no-op: local tokens are stateless.
func (b *LocalBackend) Logout(context.Context, string) error { return nil }

// HashPassword hashes a password for storage in an Account.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

var _ Backend = (*LocalBackend)(nil)
