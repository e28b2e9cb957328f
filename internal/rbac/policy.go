package rbac

import (
	"fmt"
	"sort"
	"strings"
)

// Action qualifies an access request against a resource.
type Action string

// Supported actions. An empty action means read.
const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	ActionAdmin Action = "admin"
)

// ParseAction normalises an action string, defaulting to read.
func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(raw))); a {
	case "":
		return ActionRead, nil
	case ActionRead, ActionWrite, ActionAdmin:
		return a, nil
	default:
		return "", fmt.Errorf("rbac: unknown action %q", raw)
	}
}

// Resource names known to the default policy.
const (
	ResourceProjects   = "projects"
	ResourceSensors    = "sensors"
	ResourceAlgorithms = "algorithms"
	ResourceUsers      = "users"
	ResourceSystem     = "system"
)

// ResourceRule is one row of the policy table.
type ResourceRule struct {
	Resource string `json:"resource"`
	Minimum  Level  `json:"minimumLevel"`
	Label    string `json:"minimumLabel"`
}

// Policy maps resources to the minimum level allowed to use them. It is
// built once and never mutated, so it is safe for concurrent use.
type Policy struct {
	minimum  map[string]Level
	fallback Level
}

// NewPolicy builds a policy from a resource table. Unknown resources resolve
// to fallback.
func NewPolicy(table map[string]Level, fallback Level) (*Policy, error) {
	if !fallback.Valid() {
		return nil, fmt.Errorf("rbac: invalid fallback level %d", fallback)
	}
	minimum := make(map[string]Level, len(table))
	for resource, level := range table {
		resource = strings.ToLower(strings.TrimSpace(resource))
		if resource == "" {
			return nil, fmt.Errorf("rbac: empty resource name")
		}
		if !level.Valid() {
			return nil, fmt.Errorf("rbac: invalid level %d for resource %q", level, resource)
		}
		minimum[resource] = level
	}
	return &Policy{minimum: minimum, fallback: fallback}, nil
}

// DefaultPolicy is the platform resource table. Unknown resources are open to
// any authenticated principal.
var DefaultPolicy = mustPolicy(map[string]Level{
	ResourceProjects:   LevelUserPlus,
	ResourceSensors:    LevelUserPlus,
	ResourceAlgorithms: LevelUserPlus,
	ResourceUsers:      LevelAdmin,
	ResourceSystem:     LevelSuperAdmin,
}, LevelUser)

func mustPolicy(table map[string]Level, fallback Level) *Policy {
	p, err := NewPolicy(table, fallback)
	if err != nil {
		panic(err)
	}
	return p
}

// MinimumLevel returns the least privileged level allowed on resource.
func (p *Policy) MinimumLevel(resource string) Level {
	if level, ok := p.minimum[strings.ToLower(strings.TrimSpace(resource))]; ok {
		return level
	}
	return p.fallback
}

// CanAccess decides whether a principal at level may perform action on
// resource. Super Admin always passes. The table is per resource; action is
// accepted for callers that carry it but does not change the minimum.
func (p *Policy) CanAccess(level Level, resource string, action Action) bool {
	if !level.Valid() {
		return false
	}
	if level == LevelSuperAdmin {
		return true
	}
	return IsAtLeast(level, p.MinimumLevel(resource))
}

// Rules returns the table sorted by resource name.
func (p *Policy) Rules() []ResourceRule {
	rules := make([]ResourceRule, 0, len(p.minimum))
	for resource, level := range p.minimum {
		rules = append(rules, ResourceRule{Resource: resource, Minimum: level, Label: level.Label()})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Resource < rules[j].Resource })
	return rules
}

// Fallback returns the level applied to unknown resources.
func (p *Policy) Fallback() Level {
	return p.fallback
}

// Route paths used for post-login and denial redirects.
const (
	LoginRoute    = "/auth/login"
	DashboardPath = "/dashboard"
)

// DashboardRoute returns where a principal at level lands after login or on
// an authorization failure.
func DashboardRoute(level Level) string {
	if level.Valid() {
		return DashboardPath
	}
	return LoginRoute
}
