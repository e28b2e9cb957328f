package guard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/internal/auth"
	"github.com/synergy-shm/synergy/internal/guard"
	"github.com/synergy-shm/synergy/internal/rbac"
)

func serve(t *testing.T, provider *auth.Provider, g *guard.Guard, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	if provider != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.ContextWithProvider(req.Context(), provider)))
			})
		})
	}
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	r.With(g.NoAuth).Get("/auth/login", ok)
	r.Group(func(r chi.Router) {
		r.Use(g.Require)
		r.Get("/dashboard", ok)
		r.Get("/tools", ok)
	})
	r.Route("/api", guard.NewHandler(g).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestRequireRedirectsWithSeeOther(t *testing.T) {
	g, _ := newGuard(t)
	anonymous := auth.NewProvider(&stubBackend{}, auth.NewMemoryStore(), auth.WithLogger(quiet()))

	rr := serve(t, anonymous, g, http.MethodGet, "/tools?tab=fft")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login", rr.Header().Get("Location"))

	target, err := anonymous.TakeRedirect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "/tools?tab=fft", target)

	user, _ := loggedIn(t, &stubBackend{level: rbac.LevelUser, exp: time.Now().Add(time.Hour)})
	rr = serve(t, user, g, http.MethodGet, "/tools")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

	rr = serve(t, user, g, http.MethodGet, "/dashboard")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(t, user, g, http.MethodGet, "/auth/login")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/dashboard", rr.Header().Get("Location"))

	rr = serve(t, nil, g, http.MethodGet, "/auth/login")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNavigationEndpoint(t *testing.T) {
	g, _ := newGuard(t)
	plus, _ := loggedIn(t, &stubBackend{level: rbac.LevelUserPlus, exp: time.Now().Add(time.Hour)})

	rr := serve(t, plus, g, http.MethodGet, "/api/navigation?path=/admin/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	var d guard.Decision
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, guard.Decision{Allowed: false, Redirect: "/dashboard", Reason: guard.ReasonInsufficientRole}, d)

	rr = serve(t, plus, g, http.MethodGet, "/api/navigation?path=/auth/login&mode=noauth")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &d))
	assert.Equal(t, guard.ReasonAlreadyAuthenticated, d.Reason)

	rr = serve(t, plus, g, http.MethodGet, "/api/navigation?path=https://evil.example")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
