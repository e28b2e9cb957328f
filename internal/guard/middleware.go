package guard

import (
	"net/http"

	"github.com/synergy-shm/synergy/internal/auth"
)

// identityOf returns the request identity. A nil provider is returned as a
// nil interface so the state machine treats it as anonymous.
func identityOf(r *http.Request) Identity {
	if p := auth.ProviderFromContext(r.Context()); p != nil {
		return p
	}
	return nil
}

// Require gates page navigations; denials answer 303 See Other.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Check(r.Context(), identityOf(r), r.URL.RequestURI())
		if !d.Allowed {
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NoAuth sends authenticated clients to their dashboard.
func (g *Guard) NoAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.CheckNoAuth(identityOf(r))
		if !d.Allowed {
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
