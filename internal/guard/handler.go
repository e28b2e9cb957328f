package guard

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
)

// Handler exposes guard decisions to the SPA router.
type Handler struct {
	guard *Guard
}

// NewHandler constructs a Handler.
func NewHandler(g *Guard) *Handler {
	return &Handler{guard: g}
}

// MountRoutes registers the navigation check endpoint.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/navigation", h.check)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("path")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "path must be an absolute application path")
		return
	}
	var d Decision
	if r.URL.Query().Get("mode") == "noauth" {
		d = h.guard.CheckNoAuth(identityOf(r))
	} else {
		d = h.guard.Check(r.Context(), identityOf(r), target)
	}
	httpx.JSON(w, http.StatusOK, d)
}
