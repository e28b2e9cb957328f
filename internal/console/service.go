// Package console serves the authenticated pages of the platform. Every
// operation loads the user directory and the project catalogue, narrows them
// to what the caller may see and derives the page payload from that set.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/projects"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/shared"
	"github.com/synergy-shm/synergy/internal/users"
	"github.com/synergy-shm/synergy/internal/visibility"
	"github.com/synergy-shm/synergy/jobs"
)

// InvitationQueue hands invitation mails to the background worker.
type InvitationQueue interface {
	EnqueueInvitation(ctx context.Context, payload jobs.InvitationPayload) error
}

// Service builds page payloads from the two data sources.
type Service struct {
	users    users.Repository
	projects projects.Repository
	queue    InvitationQueue
	audit    shared.AuditRecorder
	lineage  rbac.LineagePolicy
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// Options carries the optional collaborators of Service.
type Options struct {
	Queue   InvitationQueue
	Audit   shared.AuditRecorder
	Lineage rbac.LineagePolicy
	Logger  *slog.Logger
}

// NewService builds a Service.
func NewService(userRepo users.Repository, projectRepo projects.Repository, opts Options) *Service {
	if opts.Audit == nil {
		opts.Audit = shared.NopAudit{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		users:    userRepo,
		projects: projectRepo,
		queue:    opts.Queue,
		audit:    opts.Audit,
		lineage:  opts.Lineage,
		logger:   opts.Logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *Service) load(ctx context.Context) ([]users.User, []projects.Project, error) {
	var (
		allUsers    []users.User
		allProjects []projects.Project
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.users.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		allUsers = list
		return nil
	})
	g.Go(func() error {
		list, err := s.projects.ListProjects(ctx)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		allProjects = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return allUsers, allProjects, nil
}

func (s *Service) scope(ctx context.Context, p *rbac.Principal) (visibility.Scope, []users.User, error) {
	if p == nil {
		return visibility.Scope{}, nil, httpx.ErrUnauthorized
	}
	allUsers, allProjects, err := s.load(ctx)
	if err != nil {
		return visibility.Scope{}, nil, err
	}
	return visibility.Apply(p, allUsers, allProjects), allUsers, nil
}

const recentProjects = 5

// Dashboard is the landing page payload.
type Dashboard struct {
	Stats          visibility.Stats   `json:"stats"`
	RecentProjects []projects.Project `json:"recentProjects"`
	Alarms         int                `json:"alarms"`
}

// Dashboard returns statistics and the most recently created projects
// visible to p.
func (s *Service) Dashboard(ctx context.Context, p *rbac.Principal) (Dashboard, error) {
	scope, _, err := s.scope(ctx, p)
	if err != nil {
		return Dashboard{}, err
	}
	recent, _ := projects.Query{SortBy: projects.SortByCreatedAt, SortDesc: true, Limit: recentProjects}.Apply(scope.Projects)
	out := Dashboard{Stats: scope.Stats, RecentProjects: recent}
	for _, pr := range scope.Projects {
		out.Alarms += pr.AlarmsCount
	}
	return out, nil
}

// ProjectPage is one page of the project list.
type ProjectPage struct {
	Projects   []projects.Project `json:"projects"`
	Pagination shared.Pagination  `json:"pagination"`
	Stats      visibility.Stats   `json:"stats"`
}

// Projects lists the projects visible to p, narrowed and paged by q.
// Statistics describe the whole visible set, not the page.
func (s *Service) Projects(ctx context.Context, p *rbac.Principal, q projects.Query) (ProjectPage, error) {
	scope, _, err := s.scope(ctx, p)
	if err != nil {
		return ProjectPage{}, err
	}
	page, meta := q.Apply(scope.Projects)
	return ProjectPage{Projects: page, Pagination: meta, Stats: scope.Stats}, nil
}

// Project returns one project if p may see it. Hidden and missing projects
// are indistinguishable.
func (s *Service) Project(ctx context.Context, p *rbac.Principal, id string) (*projects.Project, error) {
	scope, _, err := s.scope(ctx, p)
	if err != nil {
		return nil, err
	}
	for _, pr := range scope.Projects {
		if pr.ID == id {
			out := pr.Clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", id, httpx.ErrNotFound)
}

// Analytics groups the visible projects for the charts page.
type Analytics struct {
	Stats     visibility.Stats     `json:"stats"`
	Breakdown visibility.Breakdown `json:"breakdown"`
}

// Analytics returns statistics and breakdowns of the visible projects.
func (s *Service) Analytics(ctx context.Context, p *rbac.Principal) (Analytics, error) {
	scope, _, err := s.scope(ctx, p)
	if err != nil {
		return Analytics{}, err
	}
	return Analytics{Stats: scope.Stats, Breakdown: visibility.Breakdowns(scope.Projects)}, nil
}

// ReportRow summarises one project for the reports page.
type ReportRow struct {
	ProjectID     string          `json:"projectId"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Status        projects.Status `json:"status"`
	RiskClass     string          `json:"riskClass"`
	SensorCount   int             `json:"sensorCount"`
	ActiveSensors int             `json:"activeSensors"`
	AlarmsCount   int             `json:"alarmsCount"`
}

// Reports is the reports page payload.
type Reports struct {
	Templates []string         `json:"templates"`
	Rows      []ReportRow      `json:"rows"`
	Stats     visibility.Stats `json:"stats"`
}

var reportTemplates = []string{"daily", "weekly", "monthly", "alarms", "custom"}

// Reports lists one row per visible project, ordered by name.
func (s *Service) Reports(ctx context.Context, p *rbac.Principal) (Reports, error) {
	scope, _, err := s.scope(ctx, p)
	if err != nil {
		return Reports{}, err
	}
	rows := make([]ReportRow, 0, len(scope.Projects))
	for _, pr := range scope.Projects {
		rows = append(rows, ReportRow{
			ProjectID:     pr.ID,
			Name:          pr.Name,
			Code:          pr.Code,
			Status:        pr.Status,
			RiskClass:     pr.RiskClass,
			SensorCount:   pr.SensorCount,
			ActiveSensors: pr.ActiveSensors,
			AlarmsCount:   pr.AlarmsCount,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name) })
	return Reports{Templates: append([]string(nil), reportTemplates...), Rows: rows, Stats: scope.Stats}, nil
}

// UserRow is a visible user plus the actions the caller has on it.
type UserRow struct {
	users.User
	Actions rbac.UserActions `json:"actions"`
}

// UserManagement is the console payload.
type UserManagement struct {
	Users        []UserRow         `json:"users"`
	Stats        visibility.Stats  `json:"stats"`
	Capabilities rbac.Capabilities `json:"capabilities"`
}

// UserManagement returns the users visible to p and what p may do with them.
func (s *Service) UserManagement(ctx context.Context, p *rbac.Principal) (UserManagement, error) {
	scope, _, err := s.scope(ctx, p)
	if err != nil {
		return UserManagement{}, err
	}
	rows := make([]UserRow, 0, len(scope.Users))
	for _, u := range scope.Users {
		rows = append(rows, UserRow{User: u, Actions: rbac.ActionsOn(p, u.ID, u.Level)})
	}
	return UserManagement{Users: rows, Stats: scope.Stats, Capabilities: rbac.CapabilitiesFor(p)}, nil
}

// SystemOverview is the super admin dashboard: platform-wide counts and the
// lineage violations currently present in the directory.
type SystemOverview struct {
	Stats      visibility.Stats `json:"stats"`
	Violations []string         `json:"lineageViolations"`
}

// SystemOverview computes platform-wide statistics. Only super admins may
// call it.
func (s *Service) SystemOverview(ctx context.Context, p *rbac.Principal) (SystemOverview, error) {
	if p == nil {
		return SystemOverview{}, httpx.ErrUnauthorized
	}
	if !p.HasRole(rbac.LevelSuperAdmin) {
		return SystemOverview{}, httpx.ErrForbidden
	}
	allUsers, allProjects, err := s.load(ctx)
	if err != nil {
		return SystemOverview{}, err
	}
	out := SystemOverview{Stats: visibility.ComputeStats(allUsers, allProjects), Violations: []string{}}
	for _, v := range rbac.ValidateLineage(users.LineageNodes(allUsers)) {
		out.Violations = append(out.Violations, v.Error())
	}
	return out, nil
}

func containsProject(scope visibility.Scope, id string) bool {
	for _, pr := range scope.Projects {
		if pr.ID == id {
			return true
		}
	}
	return false
}
