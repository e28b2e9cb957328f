package console

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synergy-shm/synergy/internal/menu"
	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/projects"
	"github.com/synergy-shm/synergy/internal/rbac"
)

// Handler exposes the console pages as JSON.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	principal rbac.PrincipalFunc
}

// NewHandler builds a Handler. principal resolves the authenticated caller.
func NewHandler(logger *slog.Logger, service *Service, principal rbac.PrincipalFunc) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, principal: principal}
}

// MountRoutes registers the page routes. Navigation guarding is applied by
// the caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/projects", h.listProjects)
	r.Get("/projects/new", h.newProject)
	r.Get("/projects/{id}/building", h.showProject)
	r.Get("/tools", h.tools)
	r.Get("/analytics", h.analytics)
	r.Get("/reports", h.reports)
	mutations := rbac.Middleware{Principal: h.principal, Logger: h.logger}
	r.Route("/user-management", func(r chi.Router) {
		r.Get("/", h.userManagement)
		r.With(mutations.RequireLevel(rbac.LevelUserPlus)).Post("/invitations", h.invite)
		r.With(mutations.RequireResource(rbac.ResourceUsers, rbac.ActionWrite)).Patch("/users/{id}/role", h.changeRole)
	})
	r.Get("/settings/profile", h.profile)
	r.Get("/settings/preferences", h.preferences)
	r.Get("/admin/dashboard", h.adminDashboard)
	r.Get("/admin/projects", h.adminProjects)
	r.Get("/app/documentation", h.documentation)
}

func (h *Handler) current(r *http.Request) *rbac.Principal {
	if h.principal == nil {
		return nil
	}
	return h.principal(r)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if httpx.StatusOf(err) >= http.StatusInternalServerError {
		h.logger.Error("console request", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

type dashboardResponse struct {
	Dashboard
	User      *rbac.Principal `json:"user"`
	RoleLabel string          `json:"roleLabel"`
	Menu      menu.Menu       `json:"menu"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	p := h.current(r)
	data, err := h.service.Dashboard(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboardResponse{
		Dashboard: data,
		User:      p,
		RoleLabel: p.Level.Label(),
		Menu:      menu.Build(p, menu.TranslatorFor(r)),
	})
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	q, err := projects.ParseQuery(r.URL.Query())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	page, err := h.service.Projects(r.Context(), h.current(r), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) showProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Project(r.Context(), h.current(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) newProject(w http.ResponseWriter, r *http.Request) {
	statuses := []projects.Status{projects.StatusPlanning, projects.StatusInstallation, projects.StatusMonitoring, projects.StatusInactive}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"statuses":     statuses,
		"riskClasses":  []string{"A", "B", "C", "D"},
		"seismicZones": []int{1, 2, 3, 4},
	})
}

type tool struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Icon   string `json:"icon"`
	Status string `json:"status"`
}

var toolbox = []tool{
	{Key: "sensor-configuration", Title: "Configurazione Sensori", Icon: "pi pi-cog", Status: "in_development"},
	{Key: "alarm-management", Title: "Gestione Allarmi", Icon: "pi pi-bell", Status: "in_development"},
	{Key: "calibration", Title: "Calibrazione", Icon: "pi pi-wrench", Status: "in_development"},
	{Key: "maintenance", Title: "Manutenzione", Icon: "pi pi-calendar", Status: "in_development"},
	{Key: "backup", Title: "Backup & Restore", Icon: "pi pi-database", Status: "in_development"},
	{Key: "diagnostics", Title: "Diagnostica", Icon: "pi pi-search", Status: "in_development"},
}

func (h *Handler) tools(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"tools": toolbox})
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Analytics(r.Context(), h.current(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Reports(r.Context(), h.current(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

type userManagementResponse struct {
	UserManagement
	Labels menu.ConsoleLabels `json:"labels"`
}

func (h *Handler) userManagement(w http.ResponseWriter, r *http.Request) {
	p := h.current(r)
	data, err := h.service.UserManagement(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userManagementResponse{UserManagement: data, Labels: menu.Labels(p, menu.TranslatorFor(r))})
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	created, err := h.service.Invite(r.Context(), h.current(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"user":    created,
		"message": menu.Notice(menu.TranslatorFor(r), menu.NoticeInvitationSent),
	})
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	var req RoleChangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	updated, err := h.service.ChangeRole(r.Context(), h.current(r), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":    updated,
		"message": menu.Notice(menu.TranslatorFor(r), menu.NoticeRoleUpdated),
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	p := h.current(r)
	if p == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":         p,
		"roleLabel":    p.Level.Label(),
		"capabilities": rbac.CapabilitiesFor(p),
	})
}

func (h *Handler) preferences(w http.ResponseWriter, r *http.Request) {
	locales := make([]string, 0, len(menu.Supported))
	for _, tag := range menu.Supported {
		locales = append(locales, tag.String())
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"locale":  menu.TranslatorFor(r).Tag().String(),
		"locales": locales,
	})
}

func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.SystemOverview(r.Context(), h.current(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) adminProjects(w http.ResponseWriter, r *http.Request) {
	q, err := projects.ParseQuery(r.URL.Query())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if q.SortBy == "" {
		q.SortBy = projects.SortByName
	}
	page, err := h.service.Projects(r.Context(), h.current(r), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) documentation(w http.ResponseWriter, r *http.Request) {
	m := menu.Build(h.current(r), menu.TranslatorFor(r))
	routes := make([]string, 0, len(m.Main))
	for _, s := range m.Main {
		for _, it := range s.Items {
			routes = append(routes, it.Route)
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sections": routes})
}
