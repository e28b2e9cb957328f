package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// Provider owns the identity session for one client: who is logged in, the
// bearer credential, and the loading flag. It is safe for concurrent use.
type Provider struct {
	backend Backend
	store   Store
	policy  *rbac.Policy
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	session Session
}

// Option customises a Provider.
type Option func(*Provider)

// WithPolicy overrides the resource policy used by CanAccess.
func WithPolicy(policy *rbac.Policy) Option {
	return func(p *Provider) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProvider constructs an unauthenticated Provider. Call Initialize to
// restore persisted state.
func NewProvider(backend Backend, store Store, opts ...Option) *Provider {
	p := &Provider{
		backend: backend,
		store:   store,
		policy:  rbac.DefaultPolicy,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Initialize restores the session from the store. Undecodable state is
// cleared and the provider stays unauthenticated.
func (p *Provider) Initialize(ctx context.Context) {
	snap, err := p.store.Load(ctx)
	if err != nil {
		p.logger.Warn("auth: discarding stored session", slog.Any("error", err))
		p.clearStore(ctx)
		p.reset()
		return
	}
	if snap.Token == "" || snap.Principal == "" {
		p.reset()
		return
	}
	principal, err := decodePrincipal(snap.Principal)
	if err != nil {
		p.logger.Warn("auth: discarding stored session", slog.Any("error", err))
		p.clearStore(ctx)
		p.reset()
		return
	}

	p.mu.Lock()
	p.session = Session{
		Principal:    principal,
		Token:        snap.Token,
		RefreshToken: snap.RefreshToken,
		ExpiresAt:    expiryOf(snap.Token),
	}
	p.mu.Unlock()
}

// Login authenticates creds. A second login while one is in flight fails
// with ErrLoginInProgress. On failure the session is left unchanged.
func (p *Provider) Login(ctx context.Context, creds Credentials) (*rbac.Principal, error) {
	p.mu.Lock()
	if p.session.Loading {
		p.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	p.session.Loading = true
	p.mu.Unlock()
	defer p.setLoading(false)

	if locker, ok := p.store.(Locker); ok {
		acquired, err := locker.TryLock(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
		}
		if !acquired {
			return nil, ErrLoginInProgress
		}
		defer func() {
			if err := locker.Unlock(context.WithoutCancel(ctx)); err != nil {
				p.logger.Warn("auth: release login lock", slog.Any("error", err))
			}
		}()
	}

	grant, err := p.backend.Login(ctx, creds)
	if err != nil {
		return nil, classify(err)
	}
	if !grant.valid() {
		return nil, fmt.Errorf("%w: incomplete login response", ErrCollaboratorUnavailable)
	}
	if err := p.persist(ctx, grant); err != nil {
		return nil, err
	}
	return grant.Principal.Clone(), nil
}

// Logout tells the backend (best effort) and always clears local state.
func (p *Provider) Logout(ctx context.Context) {
	p.mu.Lock()
	token := p.session.Token
	p.mu.Unlock()

	if token != "" && p.backend != nil {
		if err := p.backend.Logout(ctx, token); err != nil {
			p.logger.Warn("auth: backend logout failed", slog.Any("error", err))
		}
	}
	p.clearStore(ctx)
	p.reset()
}

// Refresh exchanges the stored refresh token for a new grant. Any failure
// logs the client out.
func (p *Provider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	refresh := p.session.RefreshToken
	p.mu.Unlock()

	if refresh == "" {
		p.Logout(ctx)
		return ErrNoRefreshToken
	}
	grant, err := p.backend.Refresh(ctx, refresh)
	if err != nil {
		p.Logout(ctx)
		return classify(err)
	}
	if !grant.valid() {
		p.Logout(ctx)
		return fmt.Errorf("%w: incomplete refresh response", ErrCollaboratorUnavailable)
	}
	if grant.RefreshToken == "" {
		grant.RefreshToken = refresh
	}
	if err := p.persist(ctx, grant); err != nil {
		p.Logout(ctx)
		return err
	}
	return nil
}

// IsAuthenticated reports whether a principal and token are both held.
func (p *Provider) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Authenticated()
}

// IsTokenExpired reports whether the held token is absent, undecodable or
// past its expiry.
func (p *Provider) IsTokenExpired() bool {
	p.mu.Lock()
	token := p.session.Token
	p.mu.Unlock()
	err := CheckExpiry(token, p.now())
	if err != nil && token != "" {
		p.logger.Info("auth: token rejected", slog.Any("error", err))
	}
	return err != nil
}

// HasRole reports whether the principal is at least as privileged as required.
func (p *Provider) HasRole(required rbac.Level) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Principal.HasRole(required)
}

// CanAccess evaluates the resource policy for the current principal.
func (p *Provider) CanAccess(resource string, action rbac.Action) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.Principal == nil {
		return false
	}
	return p.policy.CanAccess(p.session.Principal.Level, resource, action)
}

// DashboardRoute is the landing route for the current principal.
func (p *Provider) DashboardRoute() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session.Principal == nil {
		return rbac.LoginRoute
	}
	return rbac.DashboardRoute(p.session.Principal.Level)
}

// Principal returns a copy of the current principal, or nil.
func (p *Provider) Principal() *rbac.Principal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Principal.Clone()
}

// Loading reports whether a login is in flight.
func (p *Provider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Loading
}

// Session returns a copy of the current session.
func (p *Provider) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.session
	out.Principal = p.session.Principal.Clone()
	return out
}

// SetRedirect remembers where to send the client after login.
func (p *Provider) SetRedirect(ctx context.Context, path string) error {
	return p.store.SetRedirect(ctx, path)
}

// TakeRedirect returns and forgets the remembered redirect target.
func (p *Provider) TakeRedirect(ctx context.Context) (string, error) {
	return p.store.TakeRedirect(ctx)
}

func (p *Provider) persist(ctx context.Context, grant *Grant) error {
	encoded, err := json.Marshal(grant.Principal)
	if err != nil {
		return fmt.Errorf("auth: encode principal: %w", err)
	}
	snap := Snapshot{Token: grant.Token, RefreshToken: grant.RefreshToken, Principal: string(encoded)}
	if err := p.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("auth: persist session: %w", err)
	}

	p.mu.Lock()
	p.session.Principal = grant.Principal.Clone()
	p.session.Token = grant.Token
	p.session.RefreshToken = grant.RefreshToken
	p.session.ExpiresAt = expiryOf(grant.Token)
	p.mu.Unlock()
	return nil
}

func (p *Provider) clearStore(ctx context.Context) {
	if err := p.store.Clear(ctx); err != nil {
		p.logger.Warn("auth: clear stored session", slog.Any("error", err))
	}
}

func (p *Provider) reset() {
	p.mu.Lock()
	loading := p.session.Loading
	p.session = Session{Loading: loading}
	p.mu.Unlock()
}

func (p *Provider) setLoading(v bool) {
	p.mu.Lock()
	p.session.Loading = v
	p.mu.Unlock()
}

func decodePrincipal(raw string) (*rbac.Principal, error) {
	var principal rbac.Principal
	if err := json.Unmarshal([]byte(raw), &principal); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageCorrupt, err)
	}
	if principal.ID == "" || !principal.Level.Valid() {
		return nil, fmt.Errorf("%w: principal record incomplete", ErrStorageCorrupt)
	}
	return &principal, nil
}

func expiryOf(token string) time.Time {
	exp, err := DecodeExpiry(token)
	if err != nil {
		return time.Time{}
	}
	return exp
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrCollaboratorUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrCollaboratorUnavailable, err)
	}
}
