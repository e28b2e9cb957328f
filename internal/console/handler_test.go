package console

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/users"
)

const userHeader = "X-Test-User"

func newTestRouter(t *testing.T) (http.Handler, fixture) {
	t.Helper()
	f := newFixture(t, true)
	resolve := func(r *http.Request) *rbac.Principal {
		id := r.Header.Get(userHeader)
		if id == "" {
			return nil
		}
		return principal(t, id)
	}
	router := chi.NewRouter()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), f.svc, resolve).MountRoutes(router)
	return router, f
}

func serve(router http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestDashboardHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/dashboard", users.FixtureDesignerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "User+", body["roleLabel"])
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 37, stats["totalSensors"])
	assert.Len(t, body["recentProjects"], 2)
	assert.Equal(t, "it", body["menu"].(map[string]any)["locale"])

	rec = serve(router, http.MethodGet, "/dashboard", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectsHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/projects?status=monitoring&limit=3&sort_by=name", users.FixtureSuperAdminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["projects"], 3)
	assert.EqualValues(t, 7, body["pagination"].(map[string]any)["total"])

	rec = serve(router, http.MethodGet, "/projects?status=demolished", users.FixtureSuperAdminID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodGet, "/projects/"+projectB+"/building", users.FixtureDesignerID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodGet, "/projects/"+projectA+"/building", users.FixtureDesignerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Centro Storico Arezzo", decode(t, rec)["name"])

	rec = serve(router, http.MethodGet, "/admin/projects?limit=1", users.FixtureSuperAdminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode(t, rec)["projects"].([]any)[0].(map[string]any)
	assert.Equal(t, "Centro Storico Arezzo", first["name"])
}

func TestStaticPages(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/tools", users.FixtureOwnerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["tools"], len(toolbox))

	rec = serve(router, http.MethodGet, "/projects/new", users.FixtureDesignerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["statuses"], 4)

	rec = serve(router, http.MethodGet, "/settings/preferences?lang=en", users.FixtureOwnerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", decode(t, rec)["locale"])

	rec = serve(router, http.MethodGet, "/settings/profile", users.FixtureOwnerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User", decode(t, rec)["roleLabel"])

	rec = serve(router, http.MethodGet, "/settings/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/app/documentation", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"/dashboard", "/app/documentation"}, decode(t, rec)["sections"])
}

func TestAnalyticsReportsAndAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/analytics", users.FixtureDesignerID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec), "breakdown")

	rec = serve(router, http.MethodGet, "/reports", users.FixtureAdminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["rows"], 2)

	rec = serve(router, http.MethodGet, "/admin/dashboard", users.FixtureAdminID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(router, http.MethodGet, "/admin/dashboard", users.FixtureSuperAdminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["lineageViolations"])
}

func TestUserManagementHandlers(t *testing.T) {
	router, f := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/user-management/", users.FixtureAdminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["users"], 2)
	assert.Equal(t, "Gestione Utenti Organizzazione", body["labels"].(map[string]any)["tableTitle"])

	rec = serve(router, http.MethodPost, "/user-management/invitations", users.FixtureAdminID,
		`{"email":"nuovo@whitelabel.com","firstName":"Anna","roleLevel":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, "Invito inviato con successo", body["message"])
	assert.Equal(t, "pending", body["user"].(map[string]any)["status"])
	require.Len(t, f.queue.payloads, 1)

	rec = serve(router, http.MethodPost, "/user-management/invitations", users.FixtureAdminID,
		`{"email":"nuovo@whitelabel.com","roleLevel":3}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(router, http.MethodPost, "/user-management/invitations", users.FixtureAdminID, `{"email":"x@y.it","roleLevel":3,"admin":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPost, "/user-management/invitations", users.FixtureOwnerID, `{"email":"x@y.it","roleLevel":4}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(router, http.MethodPatch, "/user-management/users/"+users.FixtureDesignerID+"/role?lang=en", users.FixtureAdminID, `{"roleLevel":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "Role updated", body["message"])
	assert.EqualValues(t, 4, body["user"].(map[string]any)["roleLevel"])

	rec = serve(router, http.MethodPatch, "/user-management/users/"+users.FixtureSuperAdminID+"/role", users.FixtureAdminID, `{"roleLevel":4}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutationGates(t *testing.T) {
	router, f := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/user-management/invitations", "", `{"email":"x@y.it","roleLevel":4}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodPatch, "/user-management/users/"+users.FixtureOwnerID+"/role", users.FixtureOwnerID, `{"roleLevel":4}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Role changes need write access to users, which starts at Admin.
	rec = serve(router, http.MethodPatch, "/user-management/users/"+users.FixtureDesignerID+"/role", users.FixtureDesignerID, `{"roleLevel":4}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.audit.logs)

	rec = serve(router, http.MethodPost, "/user-management/invitations", users.FixtureDesignerID,
		`{"email":"  Collega@Studio.it ","roleLevel":4}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "collega@studio.it", decode(t, rec)["user"].(map[string]any)["email"])
}

func TestUserManagementRowActions(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/user-management/", users.FixtureAdminID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	actions := map[string]map[string]any{}
	for _, raw := range decode(t, rec)["users"].([]any) {
		row := raw.(map[string]any)
		actions[row["id"].(string)] = row["actions"].(map[string]any)
	}
	require.Len(t, actions, 2)
	assert.Equal(t, map[string]any{"canEdit": true, "canManageProjects": false, "canRemove": false}, actions[users.FixtureAdminID])
	assert.Equal(t, map[string]any{"canEdit": true, "canManageProjects": true, "canRemove": true}, actions[users.FixtureDesignerID])
}
