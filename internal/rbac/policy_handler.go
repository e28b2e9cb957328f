package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
)

// PolicyHandler publishes the resource table so it can be audited.
type PolicyHandler struct {
	policy *Policy
}

// NewPolicyHandler builds a PolicyHandler for policy.
func NewPolicyHandler(policy *Policy) *PolicyHandler {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &PolicyHandler{policy: policy}
}

// MountRoutes registers policy routes.
func (h *PolicyHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
}

type levelView struct {
	Level Level  `json:"level"`
	Label string `json:"label"`
}

func (h *PolicyHandler) show(w http.ResponseWriter, r *http.Request) {
	levels := make([]levelView, 0, len(Levels()))
	for _, l := range Levels() {
		levels = append(levels, levelView{Level: l, Label: l.Label()})
	}
	fallback := h.policy.Fallback()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"levels":    levels,
		"resources": h.policy.Rules(),
		"fallback":  levelView{Level: fallback, Label: fallback.Label()},
	})
}
