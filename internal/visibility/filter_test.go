package visibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-shm/synergy/internal/projects"
	"github.com/synergy-shm/synergy/internal/rbac"
	"github.com/synergy-shm/synergy/internal/users"
	"github.com/synergy-shm/synergy/internal/visibility"
)

func principalOf(t *testing.T, id string) *rbac.Principal {
	t.Helper()
	for _, u := range users.Fixtures() {
		if u.ID == id {
			p := u.Principal()
			return &p
		}
	}
	t.Fatalf("fixture %s not found", id)
	return nil
}

func userIDs(list []users.User) []string {
	ids := make([]string, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	return ids
}

func projectIDs(list []projects.Project) []string {
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestSuperAdminSeesEverything(t *testing.T) {
	allUsers, allProjects := users.Fixtures(), projects.Fixtures()
	require.Len(t, allProjects, 10)

	scope := visibility.Apply(principalOf(t, users.FixtureSuperAdminID), allUsers, allProjects)
	assert.Equal(t, userIDs(allUsers), userIDs(scope.Users))
	assert.Equal(t, projectIDs(allProjects), projectIDs(scope.Projects))
	assert.Equal(t, visibility.Stats{
		TotalUsers:         5,
		TotalProjects:      10,
		ActiveProjects:     7,
		TotalSensors:       100,
		PendingInvitations: 1,
	}, scope.Stats)
}

func TestUserPlusSeesOwnedProjectsOnly(t *testing.T) {
	scope := visibility.Apply(principalOf(t, users.FixtureDesignerID), users.Fixtures(), projects.Fixtures())

	assert.ElementsMatch(t, []string{
		"aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		"cccccccc-cccc-cccc-cccc-cccccccccccc",
	}, projectIDs(scope.Projects))
	assert.Equal(t, 37, scope.Stats.TotalSensors)
	assert.Equal(t, 2, scope.Stats.ActiveProjects)
	assert.Contains(t, userIDs(scope.Users), users.FixtureOwnerID, "direct invitee")
	assert.Contains(t, userIDs(scope.Users), users.FixturePendingID, "direct invitee")
	assert.Equal(t, 1, scope.Stats.PendingInvitations)
}

func TestUserPlusSeesProjectsSharedThroughGrants(t *testing.T) {
	designer := rbac.Principal{ID: "d1", Level: rbac.LevelUserPlus}
	directory := []users.User{
		{ID: "d1", Level: rbac.LevelUserPlus, ProjectIDs: []string{"p2"}},
		{ID: "x", Level: rbac.LevelUser, ProjectIDs: []string{"p2"}},
		{ID: "y", Level: rbac.LevelUser, ProjectIDs: []string{"p9"}},
	}
	list := []projects.Project{
		{ID: "p1", OwnerID: "d1"},
		{ID: "p2", OwnerID: "someone"},
		{ID: "p3", OwnerID: "someone", MemberIDs: []string{"d1"}},
		{ID: "p4", OwnerID: "someone"},
	}

	assert.Equal(t, []string{"p1", "p2", "p3"}, projectIDs(visibility.Projects(&designer, list, directory)))
	assert.Equal(t, []string{"d1", "x"}, userIDs(visibility.Users(&designer, directory)))
}

func TestAdminSeesOrganisation(t *testing.T) {
	scope := visibility.Apply(principalOf(t, users.FixtureAdminID), users.Fixtures(), projects.Fixtures())

	assert.Equal(t, []string{users.FixtureAdminID, users.FixtureDesignerID}, userIDs(scope.Users))
	assert.ElementsMatch(t, []string{
		"aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		"cccccccc-cccc-cccc-cccc-cccccccccccc",
	}, projectIDs(scope.Projects))
}

func TestAdminOrganisationMembership(t *testing.T) {
	admin := rbac.Principal{ID: "a1", ParentID: "root", Level: rbac.LevelAdmin}
	directory := []users.User{
		{ID: "root", Level: rbac.LevelSuperAdmin},
		{ID: "a1", ParentID: "root", Level: rbac.LevelAdmin},
		{ID: "a2", ParentID: "root", Level: rbac.LevelAdmin},
		{ID: "u1", ParentID: "a1", Level: rbac.LevelUser},
		{ID: "u2", ParentID: "a2", Level: rbac.LevelUser},
		{ID: "other", ParentID: "elsewhere", Level: rbac.LevelUser},
	}
	list := []projects.Project{
		{ID: "p-own", OwnerID: "a1"},
		{ID: "p-invitee", OwnerID: "u1"},
		{ID: "p-sibling", OwnerID: "a2"},
		{ID: "p-nephew", OwnerID: "u2"},
		{ID: "p-root", OwnerID: "root"},
		{ID: "p-unknown", OwnerID: "ghost"},
	}

	assert.Equal(t, []string{"a1", "a2", "u1"}, userIDs(visibility.Users(&admin, directory)))
	assert.Equal(t, []string{"p-own", "p-invitee", "p-sibling"}, projectIDs(visibility.Projects(&admin, list, directory)))

	orphan := rbac.Principal{ID: "a3", Level: rbac.LevelAdmin}
	assert.Empty(t, visibility.Users(&orphan, []users.User{{ID: "z"}}), "empty parent never matches empty parent")
}

func TestUserSeesOnlySelf(t *testing.T) {
	scope := visibility.Apply(principalOf(t, users.FixtureOwnerID), users.Fixtures(), projects.Fixtures())

	assert.Equal(t, []string{users.FixtureOwnerID}, userIDs(scope.Users))
	assert.Empty(t, scope.Projects)
	assert.Equal(t, visibility.Stats{TotalUsers: 1}, scope.Stats)

	owner := rbac.Principal{ID: "o1", Level: rbac.LevelUser}
	list := []projects.Project{{ID: "p1", OwnerID: "o1", SensorCount: 4}, {ID: "p2", OwnerID: "o2", SensorCount: 9, MemberIDs: []string{"o1"}}}
	assert.Equal(t, []string{"p1"}, projectIDs(visibility.Projects(&owner, list, nil)))
}

func TestAbsentOrUnknownPrincipalSeesNothing(t *testing.T) {
	allUsers, allProjects := users.Fixtures(), projects.Fixtures()

	scope := visibility.Apply(nil, allUsers, allProjects)
	assert.Empty(t, scope.Users)
	assert.Empty(t, scope.Projects)
	assert.Equal(t, visibility.Stats{}, scope.Stats)

	for _, level := range []rbac.Level{0, 5, -1} {
		p := &rbac.Principal{ID: users.FixtureSuperAdminID, Level: level}
		scope := visibility.Apply(p, allUsers, allProjects)
		assert.Empty(t, scope.Users)
		assert.Empty(t, scope.Projects)
		assert.Equal(t, visibility.Stats{}, scope.Stats)
	}
}

func TestFilterProperties(t *testing.T) {
	allUsers, allProjects := users.Fixtures(), projects.Fixtures()
	usersBefore, projectsBefore := users.Fixtures(), projects.Fixtures()

	for _, u := range allUsers {
		p := u.Principal()
		t.Run(u.Email, func(t *testing.T) {
			first := visibility.Apply(&p, allUsers, allProjects)
			second := visibility.Apply(&p, allUsers, allProjects)
			assert.Equal(t, first, second, "idempotent")

			assert.Subset(t, userIDs(allUsers), userIDs(first.Users))
			assert.Subset(t, projectIDs(allProjects), projectIDs(first.Projects))

			if p.Level == rbac.LevelUser {
				assert.LessOrEqual(t, len(first.Users), 1)
			}
			if p.Level == rbac.LevelSuperAdmin {
				assert.Len(t, first.Users, len(allUsers))
				assert.Len(t, first.Projects, len(allProjects))
			}
		})
	}
	assert.Equal(t, usersBefore, allUsers, "input users untouched")
	assert.Equal(t, projectsBefore, allProjects, "input projects untouched")
}

func TestResultsDoNotAliasInput(t *testing.T) {
	admin := &rbac.Principal{ID: "root", Level: rbac.LevelSuperAdmin}
	list := []users.User{{ID: "u1", ProjectIDs: []string{"p1"}}}

	out := visibility.Users(admin, list)
	out[0].ProjectIDs[0] = "changed"
	assert.Equal(t, "p1", list[0].ProjectIDs[0])
}
