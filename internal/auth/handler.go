package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/shared"
)

// LoginObserver counts login outcomes.
type LoginObserver interface {
	ObserveLogin(result string)
}

// Login outcome labels.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginInProgress         = "in_progress"
	LoginUnavailable        = "unavailable"
	LoginInvalidRequest     = "invalid_request"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	csrf      *shared.CSRFManager
	audit     shared.AuditRecorder
	metrics   LoginObserver
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, csrf *shared.CSRFManager, audit shared.AuditRecorder, metrics LoginObserver) *Handler {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	return &Handler{
		logger:    logger,
		csrf:      csrf,
		audit:     audit,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes. gate, when set, wraps the login page and
// the login action so authenticated clients are sent to their dashboard.
func (h *Handler) MountRoutes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if gate != nil {
			r.Use(gate)
		}
		r.Get("/login", h.showLogin)
		r.Post("/login", h.handleLogin)
	})
	r.Post("/logout", h.handleLogout)
	r.Post("/refresh", h.handleRefresh)
	r.Get("/me", h.handleMe)
}

type loginPage struct {
	CSRFToken string `json:"csrfToken"`
}

type loginResponse struct {
	User      *rbac.Principal `json:"user"`
	RoleLabel string          `json:"roleLabel"`
	Redirect  string          `json:"redirect"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type meResponse struct {
	Authenticated bool               `json:"authenticated"`
	Loading       bool               `json:"loading"`
	User          *rbac.Principal    `json:"user,omitempty"`
	RoleLabel     string             `json:"roleLabel,omitempty"`
	Dashboard     string             `json:"dashboard"`
	TokenExpired  bool               `json:"tokenExpired"`
	ExpiresAt     *time.Time         `json:"expiresAt,omitempty"`
	Capabilities  *rbac.Capabilities `json:"capabilities,omitempty"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.EnsureToken(shared.SessionFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("issue csrf token", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, loginPage{CSRFToken: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	provider := h.provider(w, r)
	if provider == nil {
		return
	}
	var creds Credentials
	if err := httpx.DecodeJSON(r, &creds); err != nil {
		h.observe(LoginInvalidRequest)
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed login payload")
		return
	}
	if err := h.validator.Struct(creds); err != nil {
		h.observe(LoginInvalidRequest)
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	principal, err := provider.Login(r.Context(), creds)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		h.observe(LoginInvalidCredentials)
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Invalid credentials. Please try again.")
		return
	case errors.Is(err, ErrLoginInProgress):
		h.observe(LoginInProgress)
		httpx.Problem(w, http.StatusConflict, "Conflict", "A login is already in progress.")
		return
	case err != nil:
		h.observe(LoginUnavailable)
		h.logger.Error("login failed", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrUnavailable)
		return
	}
	h.observe(LoginSuccess)
	h.record(r, shared.AuditLog{ActorID: principal.ID, Action: shared.AuditLogin, Entity: "user", EntityID: principal.ID,
		Meta: map[string]any{"roleLevel": int(principal.Level)}})

	target, err := provider.TakeRedirect(r.Context())
	if err != nil {
		h.logger.Warn("read redirect target", slog.Any("error", err))
	}
	if target == "" {
		target = provider.DashboardRoute()
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		User:      principal,
		RoleLabel: principal.Level.Label(),
		Redirect:  target,
		ExpiresAt: expiresAt(provider.Session()),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	provider := h.provider(w, r)
	if provider == nil {
		return
	}
	if p := provider.Principal(); p != nil {
		h.record(r, shared.AuditLog{ActorID: p.ID, Action: shared.AuditLogout, Entity: "user", EntityID: p.ID})
	}
	provider.Logout(r.Context())
	httpx.JSON(w, http.StatusOK, redirectResponse{Redirect: rbac.LoginRoute})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	provider := h.provider(w, r)
	if provider == nil {
		return
	}
	before := provider.Principal()
	if err := provider.Refresh(r.Context()); err != nil {
		if before != nil {
			h.record(r, shared.AuditLog{ActorID: before.ID, Action: shared.AuditForcedOut, Entity: "user", EntityID: before.ID,
				Meta: map[string]any{"reason": err.Error()}})
		}
		h.logger.Info("refresh failed, session cleared", slog.Any("error", err))
		httpx.JSON(w, http.StatusUnauthorized, redirectResponse{Redirect: rbac.LoginRoute})
		return
	}
	httpx.JSON(w, http.StatusOK, meFrom(provider))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	provider := h.provider(w, r)
	if provider == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, meFrom(provider))
}

func meFrom(provider *Provider) meResponse {
	sess := provider.Session()
	resp := meResponse{
		Authenticated: sess.Authenticated(),
		Loading:       sess.Loading,
		Dashboard:     provider.DashboardRoute(),
		TokenExpired:  provider.IsTokenExpired(),
		ExpiresAt:     expiresAt(sess),
	}
	if sess.Principal != nil {
		caps := rbac.CapabilitiesFor(sess.Principal)
		resp.User = sess.Principal
		resp.RoleLabel = sess.Principal.Level.Label()
		resp.Capabilities = &caps
	}
	return resp
}

func expiresAt(sess Session) *time.Time {
	if sess.ExpiresAt.IsZero() {
		return nil
	}
	at := sess.ExpiresAt.UTC()
	return &at
}

func (h *Handler) provider(w http.ResponseWriter, r *http.Request) *Provider {
	provider := ProviderFromContext(r.Context())
	if provider == nil {
		h.logger.Error("identity provider missing from request context")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "session unavailable")
	}
	return provider
}

func (h *Handler) record(r *http.Request, entry shared.AuditLog) {
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("audit record", slog.String("action", entry.Action), slog.Any("error", err))
	}
}

func (h *Handler) observe(result string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(result)
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	return verrs[0].Field() + " failed " + verrs[0].Tag()
}
