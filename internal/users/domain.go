package users

import (
	"time"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// Status of a platform account.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusInactive Status = "inactive"
)

// User is a platform account together with the projects it has been granted.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Level            rbac.Level `json:"roleLevel"`
	SubscriptionType string     `json:"subscriptionType"`
	ParentID         string     `json:"parentUserId,omitempty"`
	Status           Status     `json:"status"`
	ProjectIDs       []string   `json:"projects"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
}

// Pending reports whether the account has been invited but not activated.
func (u User) Pending() bool {
	return u.Status == StatusPending
}

// HasProject reports whether the user holds a grant on projectID.
func (u User) HasProject(projectID string) bool {
	for _, id := range u.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// Principal converts the record to the identity shape used for authorization.
func (u User) Principal() rbac.Principal {
	return rbac.Principal{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Level:            u.Level,
		SubscriptionType: u.SubscriptionType,
		ParentID:         u.ParentID,
		IsActive:         u.Status == StatusActive,
	}
}

// LineageNode returns the lineage view of the record.
func (u User) LineageNode() rbac.LineageNode {
	return rbac.LineageNode{ID: u.ID, ParentID: u.ParentID, Level: u.Level}
}

// LineageNodes maps a user set to lineage nodes.
func LineageNodes(list []User) []rbac.LineageNode {
	nodes := make([]rbac.LineageNode, 0, len(list))
	for _, u := range list {
		nodes = append(nodes, u.LineageNode())
	}
	return nodes
}

// NewUser describes an invited account.
type NewUser struct {
	Email            string
	FirstName        string
	LastName         string
	Level            rbac.Level
	SubscriptionType string
	ParentID         string
	ProjectID        string
}

// Clone returns a deep copy.
func (u User) Clone() User {
	out := u
	out.ProjectIDs = append([]string(nil), u.ProjectIDs...)
	if u.LastLogin != nil {
		at := *u.LastLogin
		out.LastLogin = &at
	}
	return out
}
