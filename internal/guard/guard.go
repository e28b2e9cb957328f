// Package guard decides, per navigation, whether to proceed and where to
// redirect otherwise.
package guard

import (
	"context"
	"log/slog"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// Reason explains a decision.
type Reason string

const (
	ReasonAllowed              Reason = "allowed"
	ReasonUnauthenticated      Reason = "unauthenticated"
	ReasonTokenExpired         Reason = "token_expired"
	ReasonInsufficientRole     Reason = "insufficient_role"
	ReasonResourceDenied       Reason = "resource_denied"
	ReasonAlreadyAuthenticated Reason = "already_authenticated"
)

// Decision is the outcome of a navigation check. A denial is not an error.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Reason   Reason `json:"reason"`
}

// Identity is the view of the identity provider the guard needs.
type Identity interface {
	IsAuthenticated() bool
	IsTokenExpired() bool
	HasRole(required rbac.Level) bool
	CanAccess(resource string, action rbac.Action) bool
	DashboardRoute() string
	Principal() *rbac.Principal
	SetRedirect(ctx context.Context, path string) error
	Logout(ctx context.Context)
}

// Observer counts decisions.
type Observer interface {
	ObserveGuard(outcome string)
}

// Guard applies the route table to navigations.
type Guard struct {
	table    *Table
	logger   *slog.Logger
	observer Observer
}

// New constructs a Guard. observer may be nil.
func New(table *Table, logger *slog.Logger, observer Observer) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{table: table, logger: logger, observer: observer}
}

// Check runs the navigation state machine for target. The checks run in
// order and the first failure decides: authentication, token expiry, role
// level, resource.
func (g *Guard) Check(ctx context.Context, id Identity, target string) Decision {
	route, _ := g.table.Match(stripQuery(target))
	return g.CheckRoute(ctx, id, route, target)
}

// CheckRoute is Check with an already resolved descriptor.
func (g *Guard) CheckRoute(ctx context.Context, id Identity, route Route, target string) Decision {
	if id == nil || !id.IsAuthenticated() {
		if id != nil {
			if err := id.SetRedirect(ctx, target); err != nil {
				g.logger.Warn("guard: store redirect target", slog.String("path", target), slog.Any("error", err))
			}
		}
		return g.deny(target, nil, rbac.LoginRoute, ReasonUnauthenticated)
	}
	principal := id.Principal()
	if id.IsTokenExpired() {
		id.Logout(ctx)
		return g.deny(target, principal, rbac.LoginRoute, ReasonTokenExpired)
	}
	if route.Level != 0 && !id.HasRole(route.Level) {
		return g.deny(target, principal, id.DashboardRoute(), ReasonInsufficientRole)
	}
	if route.Resource != "" {
		action := route.Action
		if action == "" {
			action = rbac.ActionRead
		}
		if !id.CanAccess(route.Resource, action) {
			return g.deny(target, principal, id.DashboardRoute(), ReasonResourceDenied)
		}
	}
	g.observe(ReasonAllowed)
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

// CheckNoAuth guards routes that must be unreachable while authenticated.
func (g *Guard) CheckNoAuth(id Identity) Decision {
	if id != nil && id.IsAuthenticated() {
		return g.deny("", id.Principal(), id.DashboardRoute(), ReasonAlreadyAuthenticated)
	}
	g.observe(ReasonAllowed)
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

func (g *Guard) deny(target string, p *rbac.Principal, redirect string, reason Reason) Decision {
	attrs := []any{slog.String("path", target), slog.String("reason", string(reason)), slog.String("redirect", redirect)}
	if p != nil {
		attrs = append(attrs, slog.String("principal", p.ID), slog.Int("level", int(p.Level)))
	}
	g.logger.Info("navigation denied", attrs...)
	g.observe(reason)
	return Decision{Allowed: false, Redirect: redirect, Reason: reason}
}

func (g *Guard) observe(reason Reason) {
	if g.observer != nil {
		g.observer.ObserveGuard(string(reason))
	}
}

func stripQuery(target string) string {
	for i := 0; i < len(target); i++ {
		if target[i] == '?' || target[i] == '#' {
			return target[:i]
		}
	}
	return target
}
