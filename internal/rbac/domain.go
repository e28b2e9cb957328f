package rbac

import "fmt"

// Level is a position in the role hierarchy. Lower values carry more privilege:
// 1 is Super Admin and 4 is a plain User.
type Level int

// Role hierarchy levels.
const (
	LevelSuperAdmin Level = 1
	LevelAdmin      Level = 2
	LevelUserPlus   Level = 3
	LevelUser       Level = 4
)

// Levels lists every valid level from most to least privileged.
func Levels() []Level {
	return []Level{LevelSuperAdmin, LevelAdmin, LevelUserPlus, LevelUser}
}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	return l >= LevelSuperAdmin && l <= LevelUser
}

// Label returns the display name for the level.
func (l Level) Label() string {
	switch l {
	case LevelSuperAdmin:
		return "Super Admin"
	case LevelAdmin:
		return "Admin"
	case LevelUserPlus:
		return "User+"
	case LevelUser:
		return "User"
	default:
		return "Unknown"
	}
}

func (l Level) String() string {
	return fmt.Sprintf("%s(%d)", l.Label(), int(l))
}

// IsAtLeast reports whether actual is at least as privileged as required.
// Every privilege comparison in the module goes through here; never compare
// levels with raw integer operators at call sites.
func IsAtLeast(actual, required Level) bool {
	if !actual.Valid() {
		return false
	}
	return actual <= required
}

// Principal describes the authenticated actor. The JSON shape matches what the
// authentication backend returns and what is persisted in the session record.
type Principal struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Level            Level  `json:"roleLevel"`
	SubscriptionType string `json:"subscriptionType"`
	ParentID         string `json:"parentUserId,omitempty"`
	IsActive         bool   `json:"isActive"`
}

// FullName joins first and last name.
func (p *Principal) FullName() string {
	if p == nil {
		return ""
	}
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// HasRole reports whether the principal is at least as privileged as required.
// A nil principal never has a role.
func (p *Principal) HasRole(required Level) bool {
	if p == nil {
		return false
	}
	return IsAtLeast(p.Level, required)
}

// Clone returns an independent copy of the principal.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
