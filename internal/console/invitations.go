package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/shared"
	"github.com/synergy-shm/synergy/internal/users"
	"github.com/synergy-shm/synergy/jobs"
)

// InviteRequest is the payload of an invitation.
type InviteRequest struct {
	Email     string     `json:"email" validate:"required,email,max=254"`
	FirstName string     `json:"firstName" validate:"max=100"`
	LastName  string     `json:"lastName" validate:"max=100"`
	Level     rbac.Level `json:"roleLevel" validate:"required,min=1,max=4"`
	ProjectID string     `json:"projectId" validate:"omitempty,max=64"`
}

// RoleChangeRequest is the payload of a role change.
type RoleChangeRequest struct {
	Level rbac.Level `json:"roleLevel" validate:"required,min=1,max=4"`
}

const pendingInviteID = "invitation:pending"

// Invite creates a pending account whose lineage parent is p and queues the
// invitation mail.
func (s *Service) Invite(ctx context.Context, p *rbac.Principal, req InviteRequest) (*users.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.check(req); err != nil {
		return nil, err
	}
	if !rbac.CanInviteUsers(p) {
		return nil, s.deny(p, "invite", "")
	}
	if !rbac.CanAssignLevel(p, req.Level) {
		return nil, s.deny(p, "invite.level", "")
	}

	scope, all, err := s.scope(ctx, p)
	if err != nil {
		return nil, err
	}
	if req.ProjectID != "" && !containsProject(scope, req.ProjectID) {
		return nil, fmt.Errorf("project %s: %w", req.ProjectID, httpx.ErrNotFound)
	}
	for _, u := range all {
		if strings.EqualFold(u.Email, req.Email) {
			return nil, fmt.Errorf("email %s: %w", req.Email, httpx.ErrDuplicate)
		}
	}
	nodes := append(users.LineageNodes(all), rbac.LineageNode{ID: pendingInviteID, ParentID: p.ID, Level: req.Level})
	if err := s.lineage.Admit(nodes, pendingInviteID); err != nil {
		return nil, fmt.Errorf("%w: %w", httpx.ErrConflict, err)
	}

	created, err := s.users.CreateUser(ctx, users.NewUser{
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Level:            req.Level,
		SubscriptionType: p.SubscriptionType,
		ParentID:         p.ID,
		ProjectID:        req.ProjectID,
	})
	if err != nil {
		return nil, err
	}

	if s.queue != nil {
		payload := jobs.InvitationPayload{
			UserID:    created.ID,
			Email:     created.Email,
			Level:     int(created.Level),
			InviterID: p.ID,
			Inviter:   p.FullName(),
			ProjectID: req.ProjectID,
		}
		if err := s.queue.EnqueueInvitation(ctx, payload); err != nil {
			s.logger.Warn("enqueue invitation", slog.String("user", created.ID), slog.Any("error", err))
		}
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  p.ID,
		Action:   shared.AuditInvite,
		Entity:   "user",
		EntityID: created.ID,
		Meta:     map[string]any{"email": created.Email, "level": int(created.Level), "projectId": req.ProjectID},
	})
	s.logger.Info("user invited", slog.String("principal", p.ID), slog.String("user", created.ID), slog.Int("level", int(created.Level)))
	return created, nil
}

// ChangeRole moves a visible user to another level. The caller must be
// allowed to edit the target, must be at least as privileged as the target
// and may only grant levels it could assign to an invitee.
func (s *Service) ChangeRole(ctx context.Context, p *rbac.Principal, targetID string, req RoleChangeRequest) (*users.User, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	scope, all, err := s.scope(ctx, p)
	if err != nil {
		return nil, err
	}
	var target *users.User
	for i := range scope.Users {
		if scope.Users[i].ID == targetID {
			target = &scope.Users[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("user %s: %w", targetID, httpx.ErrNotFound)
	}
	if !rbac.ActionsOn(p, target.ID, target.Level).Edit {
		return nil, s.deny(p, "role.edit", target.ID)
	}
	if !rbac.CanAssignLevel(p, req.Level) {
		return nil, s.deny(p, "role.level", target.ID)
	}
	if target.Level == req.Level {
		out := target.Clone()
		return &out, nil
	}

	nodes := users.LineageNodes(all)
	for i := range nodes {
		if nodes[i].ID == target.ID {
			nodes[i].Level = req.Level
		}
	}
	if err := s.lineage.Admit(nodes, target.ID); err != nil {
		return nil, fmt.Errorf("%w: %w", httpx.ErrConflict, err)
	}
	if err := s.users.UpdateLevel(ctx, target.ID, req.Level); err != nil {
		return nil, err
	}

	previous := target.Level
	out := target.Clone()
	out.Level = req.Level
	s.record(ctx, shared.AuditLog{
		ActorID:  p.ID,
		Action:   shared.AuditRoleChanged,
		Entity:   "user",
		EntityID: target.ID,
		Meta:     map[string]any{"from": int(previous), "to": int(req.Level)},
	})
	s.logger.Info("role changed", slog.String("principal", p.ID), slog.String("user", target.ID),
		slog.Int("from", int(previous)), slog.Int("to", int(req.Level)))
	return &out, nil
}

func (s *Service) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("%w: invalid %s", httpx.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}

func (s *Service) deny(p *rbac.Principal, check, target string) error {
	if p == nil {
		return httpx.ErrUnauthorized
	}
	s.logger.Info("console denied", slog.String("check", check), slog.String("principal", p.ID),
		slog.Int("level", int(p.Level)), slog.String("target", target))
	return httpx.ErrForbidden
}

func (s *Service) record(ctx context.Context, entry shared.AuditLog) {
	entry.At = s.now().UTC()
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record", slog.String("action", entry.Action), slog.Any("error", err))
	}
}
