package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/shared"
)

type providerContextKey struct{}

// ContextWithProvider stores a provider in context.
func ContextWithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerContextKey{}, p)
}

// ProviderFromContext returns the request provider, or nil.
func ProviderFromContext(ctx context.Context) *Provider {
	p, _ := ctx.Value(providerContextKey{}).(*Provider)
	return p
}

// PrincipalFromRequest returns the authenticated principal of r, or nil.
func PrincipalFromRequest(r *http.Request) *rbac.Principal {
	p := ProviderFromContext(r.Context())
	if p == nil || !p.IsAuthenticated() {
		return nil
	}
	return p.Principal()
}

// Factory builds one Provider per request on top of the request session.
type Factory struct {
	Backend  Backend
	Sessions *shared.SessionManager
	Policy   *rbac.Policy
	Logger   *slog.Logger
	LockTTL  time.Duration
}

// Middleware restores the provider from the session and stores it in the
// request context. Requests without a session pass through untouched.
func (f *Factory) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		store := NewSessionStore(f.Sessions, sess, f.LockTTL)
		provider := NewProvider(f.Backend, store, WithPolicy(f.Policy), WithLogger(f.Logger))
		provider.Initialize(r.Context())
		next.ServeHTTP(w, r.WithContext(ContextWithProvider(r.Context(), provider)))
	})
}
