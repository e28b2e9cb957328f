package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synergy-shm/synergy/internal/auth"
	"github.com/synergy-shm/synergy/internal/console"
	"github.com/synergy-shm/synergy/internal/guard"
	"github.com/synergy-shm/synergy/internal/menu"
	"github.com/synergy-shm/synergy/internal/observability"
	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/shared"
	"github.com/synergy-shm/synergy/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthFactory    *auth.Factory
	AuthHandler    *auth.Handler
	Guard          *guard.Guard
	ConsoleHandler *console.Handler
	MenuHandler    *menu.Handler
	PolicyHandler  *rbac.PolicyHandler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with the platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(params.AuthFactory.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, rbac.DashboardPath, http.StatusSeeOther)
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r, params.Guard.NoAuth)
	})

	r.Route("/api", func(r chi.Router) {
		guard.NewHandler(params.Guard).MountRoutes(r)
		if params.MenuHandler != nil {
			r.Route("/menu", params.MenuHandler.MountRoutes)
		}
		if params.PolicyHandler != nil {
			r.Route("/policy", params.PolicyHandler.MountRoutes)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Require)
		params.ConsoleHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
