package visibility

import (
	"github.com/synergy-shm/synergy/internal/projects"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/users"
)

// Stats aggregates a visible user and project set.
type Stats struct {
	TotalUsers         int `json:"totalUsers"`
	TotalProjects      int `json:"totalProjects"`
	ActiveProjects     int `json:"activeProjects"`
	TotalSensors       int `json:"totalSensors"`
	PendingInvitations int `json:"pendingInvitations"`
}

// ComputeStats derives Stats from already filtered sets.
func ComputeStats(visibleUsers []users.User, visibleProjects []projects.Project) Stats {
	stats := Stats{TotalUsers: len(visibleUsers), TotalProjects: len(visibleProjects)}
	for _, pr := range visibleProjects {
		if pr.Status == projects.StatusMonitoring {
			stats.ActiveProjects++
		}
		stats.TotalSensors += pr.SensorCount
	}
	for _, u := range visibleUsers {
		if u.Pending() {
			stats.PendingInvitations++
		}
	}
	return stats
}

// Breakdown counts visible projects by category.
type Breakdown struct {
	ByStatus        map[projects.Status]int `json:"byStatus"`
	ByStructureType map[string]int          `json:"byStructureType"`
	ByRiskClass     map[string]int          `json:"byRiskClass"`
}

// Breakdowns groups visible projects by status, structure type and risk
// class.
func Breakdowns(visibleProjects []projects.Project) Breakdown {
	b := Breakdown{
		ByStatus:        make(map[projects.Status]int),
		ByStructureType: make(map[string]int),
		ByRiskClass:     make(map[string]int),
	}
	for _, pr := range visibleProjects {
		b.ByStatus[pr.Status]++
		if pr.StructureType != "" {
			b.ByStructureType[pr.StructureType]++
		}
		if pr.RiskClass != "" {
			b.ByRiskClass[pr.RiskClass]++
		}
	}
	return b
}

// Scope is the visible slice of the directory for one principal.
type Scope struct {
	Users    []users.User
	Projects []projects.Project
	Stats    Stats
}

// Apply filters both sets for p and computes their statistics.
func Apply(p *rbac.Principal, allUsers []users.User, allProjects []projects.Project) Scope {
	visibleUsers := Users(p, allUsers)
	visibleProjects := Projects(p, allProjects, allUsers)
	return Scope{
		Users:    visibleUsers,
		Projects: visibleProjects,
		Stats:    ComputeStats(visibleUsers, visibleProjects),
	}
}
