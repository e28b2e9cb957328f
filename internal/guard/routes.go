package guard

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// Route is a protected route descriptor. A zero Level means no role
// annotation; an empty Resource means no resource annotation.
type Route struct {
	Pattern  string
	Level    rbac.Level
	Resource string
	Action   rbac.Action
}

// Table resolves request paths to route descriptors using chi's pattern
// matcher, so descriptors use the same syntax as the router.
type Table struct {
	mux    *chi.Mux
	routes map[string]Route
}

// NewTable validates descriptors and builds a Table.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{mux: chi.NewMux(), routes: make(map[string]Route, len(routes))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		if r.Pattern == "" || r.Pattern[0] != '/' {
			return nil, fmt.Errorf("guard: invalid route pattern %q", r.Pattern)
		}
		if r.Level != 0 && !r.Level.Valid() {
			return nil, fmt.Errorf("guard: route %s: invalid level %d", r.Pattern, r.Level)
		}
		if r.Resource != "" && r.Action == "" {
			r.Action = rbac.ActionRead
		}
		if _, dup := t.routes[r.Pattern]; dup {
			return nil, fmt.Errorf("guard: duplicate route %s", r.Pattern)
		}
		t.routes[r.Pattern] = r
		t.mux.Handle(r.Pattern, noop)
	}
	return t, nil
}

// MustTable is NewTable for static configuration.
func MustTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Match returns the descriptor for path. Unknown paths match nothing.
func (t *Table) Match(path string) (Route, bool) {
	pattern := t.mux.Find(chi.NewRouteContext(), http.MethodGet, path)
	if pattern == "" {
		return Route{}, false
	}
	r, ok := t.routes[pattern]
	return r, ok
}

// Routes returns every descriptor.
func (t *Table) Routes() []Route {
	out := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		out = append(out, r)
	}
	return out
}

// DefaultRoutes is the page navigation table of the dashboard.
func DefaultRoutes() []Route {
	return []Route{
		{Pattern: "/dashboard", Level: rbac.LevelUser},
		{Pattern: "/projects", Level: rbac.LevelUser},
		{Pattern: "/projects/new", Level: rbac.LevelUserPlus, Resource: rbac.ResourceProjects, Action: rbac.ActionWrite},
		{Pattern: "/projects/{id}/building", Level: rbac.LevelUser},
		{Pattern: "/tools", Level: rbac.LevelUserPlus, Resource: rbac.ResourceAlgorithms},
		{Pattern: "/reports", Level: rbac.LevelUser},
		{Pattern: "/analytics", Level: rbac.LevelUser},
		{Pattern: "/user-management", Level: rbac.LevelUserPlus},
		{Pattern: "/user-management/*", Level: rbac.LevelUserPlus},
		{Pattern: "/settings/profile", Level: rbac.LevelUser},
		{Pattern: "/settings/preferences", Level: rbac.LevelUser},
		{Pattern: "/admin/dashboard", Level: rbac.LevelSuperAdmin, Resource: rbac.ResourceSystem},
		{Pattern: "/admin/projects", Level: rbac.LevelAdmin},
		{Pattern: "/app/documentation"},
	}
}
