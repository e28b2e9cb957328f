package users

import (
	"time"

	"github.com/synergy-shm/synergy/internal/rbac"
)

// Fixture ids of the demo organisation.
const (
	FixtureSuperAdminID = "11111111-1111-1111-1111-111111111111"
	FixtureAdminID      = "22222222-2222-2222-2222-222222222222"
	FixtureDesignerID   = "33333333-3333-3333-3333-333333333333"
	FixtureOwnerID      = "44444444-4444-4444-4444-444444444444"
	FixturePendingID    = "55555555-5555-5555-5555-555555555555"
)

const (
	projectArezzo = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	projectVerdi  = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	projectMilano = "cccccccc-cccc-cccc-cccc-cccccccccccc"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// Fixtures returns the demo organisation: one principal per role level plus
// a pending invitation.
func Fixtures() []User {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []User{
		{
			ID: FixtureSuperAdminID, Email: "admin@logicatre.it", FirstName: "Super", LastName: "Admin",
			Level: rbac.LevelSuperAdmin, SubscriptionType: "business", Status: StatusActive,
			ProjectIDs: []string{projectArezzo, projectVerdi, projectMilano},
			CreatedAt:  created, LastLogin: at("2024-12-18T16:30:00Z"),
		},
		{
			ID: FixtureAdminID, Email: "admin@whitelabel.com", FirstName: "Marco", LastName: "Bianchi",
			Level: rbac.LevelAdmin, SubscriptionType: "business", ParentID: FixtureSuperAdminID, Status: StatusActive,
			ProjectIDs: []string{projectArezzo, projectVerdi},
			CreatedAt:  created.Add(time.Hour), LastLogin: at("2024-12-18T15:45:00Z"),
		},
		{
			ID: FixtureDesignerID, Email: "progettista@studio.it", FirstName: "Giovanni", LastName: "Rossi",
			Level: rbac.LevelUserPlus, SubscriptionType: "plus", ParentID: FixtureAdminID, Status: StatusActive,
			ProjectIDs: []string{projectArezzo, projectMilano},
			CreatedAt:  created.Add(2 * time.Hour), LastLogin: at("2024-12-18T14:20:00Z"),
		},
		{
			ID: FixtureOwnerID, Email: "condominio@email.it", FirstName: "Mario", LastName: "Conti",
			Level: rbac.LevelUser, SubscriptionType: "freemium", ParentID: FixtureDesignerID, Status: StatusActive,
			ProjectIDs: []string{projectArezzo},
			CreatedAt:  created.Add(3 * time.Hour), LastLogin: at("2024-12-17T10:15:00Z"),
		},
		{
			ID: FixturePendingID, Email: "collaboratore@test.it", FirstName: "Alessandro", LastName: "Bianchi",
			Level: rbac.LevelUser, SubscriptionType: "base", ParentID: FixtureDesignerID, Status: StatusPending,
			ProjectIDs: []string{projectVerdi},
			CreatedAt:  created.Add(4 * time.Hour), LastLogin: at("2024-12-16T09:30:00Z"),
		},
	}
}
