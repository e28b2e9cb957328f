package rbac

import (
	"log/slog"
	"net/http"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
)

// PrincipalFunc resolves the principal of a request, or nil when anonymous.
type PrincipalFunc func(r *http.Request) *Principal

// Middleware wires level and resource checks for non-navigation endpoints
// (JSON mutations). Page navigations go through the route guard instead,
// which redirects rather than answering 403.
type Middleware struct {
	Policy    *Policy
	Principal PrincipalFunc
	Logger    *slog.Logger
}

// RequireLevel ensures the current principal is at least as privileged as level.
func (m Middleware) RequireLevel(level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := m.current(r)
			if p == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !p.HasRole(level) {
				m.logDenied(r, p, "level")
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireResource ensures the current principal may perform action on resource.
func (m Middleware) RequireResource(resource string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := m.current(r)
			if p == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !m.policy().CanAccess(p.Level, resource, action) {
				m.logDenied(r, p, "resource")
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) current(r *http.Request) *Principal {
	if m.Principal == nil {
		return nil
	}
	return m.Principal(r)
}

func (m Middleware) policy() *Policy {
	if m.Policy == nil {
		return DefaultPolicy
	}
	return m.Policy
}

func (m Middleware) logDenied(r *http.Request, p *Principal, check string) {
	if m.Logger == nil {
		return
	}
	m.Logger.Info("rbac denied",
		slog.String("check", check),
		slog.String("principal", p.ID),
		slog.Int("level", int(p.Level)),
		slog.String("path", r.URL.Path))
}
