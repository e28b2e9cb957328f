package menu

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/rbac"
)

// Handler serves the navigation menu.
type Handler struct {
	principal rbac.PrincipalFunc
}

// NewHandler builds a Handler. principal resolves the caller, returning nil
// when anonymous.
func NewHandler(principal rbac.PrincipalFunc) *Handler {
	return &Handler{principal: principal}
}

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
}

// TranslatorFor negotiates the locale of r. An explicit lang query
// parameter wins over Accept-Language.
func TranslatorFor(r *http.Request) Translator {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return NewTranslator(Negotiate(lang))
	}
	return NewTranslator(Negotiate(r.Header.Get("Accept-Language")))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	var p *rbac.Principal
	if h.principal != nil {
		p = h.principal(r)
	}
	httpx.JSON(w, http.StatusOK, Build(p, TranslatorFor(r)))
}
