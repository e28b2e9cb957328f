// Package visibility narrows user and project sets to what a principal may
// see and derives statistics from the narrowed sets only.
//
// Rules by role level:
//
//	1  everything
//	2  own records, records whose lineage parent is the principal, and
//	   records sharing the principal's lineage parent (same organisation)
//	3  own records, direct invitees, and records linked through a shared
//	   project grant
//	4  own records only
//
// Any other level, or a nil principal, sees nothing. Inputs are never
// modified and results preserve input order.
package visibility

import (
	"github.com/synergy-shm/synergy/internal/projects"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/users"
)

// Users returns the users visible to p.
func Users(p *rbac.Principal, list []users.User) []users.User {
	if p == nil {
		return []users.User{}
	}
	var keep func(users.User) bool
	switch p.Level {
	case rbac.LevelSuperAdmin:
		keep = func(users.User) bool { return true }
	case rbac.LevelAdmin:
		keep = func(u users.User) bool {
			return u.ID == p.ID || u.ParentID == p.ID || sameOrganisation(p, u.ParentID)
		}
	case rbac.LevelUserPlus:
		mine := grantsOf(p.ID, list)
		keep = func(u users.User) bool {
			return u.ID == p.ID || u.ParentID == p.ID || sharesProject(mine, u.ProjectIDs)
		}
	case rbac.LevelUser:
		keep = func(u users.User) bool { return u.ID == p.ID }
	default:
		return []users.User{}
	}
	out := make([]users.User, 0, len(list))
	for _, u := range list {
		if keep(u) {
			out = append(out, u.Clone())
		}
	}
	return out
}

// Projects returns the projects visible to p. directory supplies the lineage
// of project owners and the principal's own project grants.
func Projects(p *rbac.Principal, list []projects.Project, directory []users.User) []projects.Project {
	if p == nil {
		return []projects.Project{}
	}
	var keep func(projects.Project) bool
	switch p.Level {
	case rbac.LevelSuperAdmin:
		keep = func(projects.Project) bool { return true }
	case rbac.LevelAdmin:
		lineage := lineageOf(directory)
		keep = func(pr projects.Project) bool {
			if pr.OwnerID == p.ID {
				return true
			}
			parent, known := lineage[pr.OwnerID]
			if !known {
				return false
			}
			return parent == p.ID || sameOrganisation(p, parent)
		}
	case rbac.LevelUserPlus:
		mine := grantsOf(p.ID, directory)
		keep = func(pr projects.Project) bool {
			if pr.OwnerID == p.ID || pr.HasMember(p.ID) {
				return true
			}
			_, granted := mine[pr.ID]
			return granted
		}
	case rbac.LevelUser:
		keep = func(pr projects.Project) bool { return pr.OwnerID == p.ID }
	default:
		return []projects.Project{}
	}
	out := make([]projects.Project, 0, len(list))
	for _, pr := range list {
		if keep(pr) {
			out = append(out, pr.Clone())
		}
	}
	return out
}

// sameOrganisation reports whether a record whose lineage parent is parent
// belongs to the principal's organisation. Root principals have none.
func sameOrganisation(p *rbac.Principal, parent string) bool {
	return p.ParentID != "" && parent == p.ParentID
}

func grantsOf(id string, directory []users.User) map[string]struct{} {
	grants := make(map[string]struct{})
	for _, u := range directory {
		if u.ID != id {
			continue
		}
		for _, pid := range u.ProjectIDs {
			grants[pid] = struct{}{}
		}
	}
	return grants
}

func sharesProject(mine map[string]struct{}, theirs []string) bool {
	for _, pid := range theirs {
		if _, ok := mine[pid]; ok {
			return true
		}
	}
	return false
}

func lineageOf(directory []users.User) map[string]string {
	lineage := make(map[string]string, len(directory))
	for _, u := range directory {
		lineage[u.ID] = u.ParentID
	}
	return lineage
}
