// Package menu builds the role-dependent navigation menu and the labels of
// the user management console.
package menu

import (
	"github.com/synergy-shm/synergy/internal/rbac"
)

// Item is a navigation entry.
type Item struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Route string `json:"route"`
}

// Section groups items under a heading.
type Section struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Menu is the sidebar: main sections plus an optional section pinned to the
// bottom.
type Menu struct {
	Locale string    `json:"locale"`
	Main   []Section `json:"main"`
	Bottom *Section  `json:"bottom,omitempty"`
}

func section(t Translator, heading, label, icon, route string) Section {
	return Section{Label: t.T(heading), Items: []Item{{Label: t.T(label), Icon: icon, Route: route}}}
}

// Build returns the menu for p. A nil principal gets the reduced anonymous
// menu.
func Build(p *rbac.Principal, t Translator) Menu {
	m := Menu{Locale: t.Tag().String()}
	if p == nil || !p.Level.Valid() {
		m.Main = []Section{
			section(t, keyHome, keyDashboard, "pi pi-fw pi-home", rbac.DashboardPath),
			section(t, keyDocumentation, keyDocumentation, "pi pi-fw pi-book", "/app/documentation"),
		}
		return m
	}
	m.Main = []Section{
		section(t, keyDashboard, keyDashboard, "pi pi-fw pi-home", rbac.DashboardPath),
		section(t, keyProjects, keyMyProjects, "pi pi-fw pi-building", "/projects"),
		section(t, keyTools, keyToolbox, "pi pi-fw pi-wrench", "/tools"),
		section(t, keyAnalytics, keyCharts, "pi pi-fw pi-chart-bar", "/analytics"),
		section(t, keyReport, keyReports, "pi pi-fw pi-file-pdf", "/reports"),
	}
	if p.HasRole(rbac.LevelUserPlus) {
		m.Main = append(m.Main, section(t, keyUserManagement, keyUserManagement, "pi pi-fw pi-users", "/user-management"))
	}
	bottom := section(t, keyPreferences, keyPreferences, "pi pi-fw pi-cog", "/settings/preferences")
	m.Bottom = &bottom
	return m
}

// ConsoleLabels are the level-dependent texts of the user management page.
type ConsoleLabels struct {
	TableTitle   string `json:"tableTitle"`
	UsersStat    string `json:"usersStatLabel"`
	EmptyTitle   string `json:"emptyTitle"`
	EmptyMessage string `json:"emptyMessage"`
	RoleLabel    string `json:"roleLabel,omitempty"`
}

// Labels returns the console labels for p.
func Labels(p *rbac.Principal, t Translator) ConsoleLabels {
	out := ConsoleLabels{EmptyTitle: t.T(keyNoUsersFound)}
	level := rbac.Level(0)
	if p != nil {
		level = p.Level
		out.RoleLabel = level.Label()
	}
	switch level {
	case rbac.LevelSuperAdmin:
		out.TableTitle, out.UsersStat, out.EmptyMessage = t.T(keyTitleSuperAdmin), t.T(keyStatSuperAdmin), t.T(keyEmptySuperAdmin)
	case rbac.LevelAdmin:
		out.TableTitle, out.UsersStat, out.EmptyMessage = t.T(keyTitleAdmin), t.T(keyStatAdmin), t.T(keyEmptyAdmin)
	case rbac.LevelUserPlus:
		out.TableTitle, out.UsersStat, out.EmptyMessage = t.T(keyTitleUserPlus), t.T(keyStatUserPlus), t.T(keyEmptyUserPlus)
	case rbac.LevelUser:
		out.TableTitle, out.UsersStat, out.EmptyMessage = t.T(keyTitleUser), t.T(keyStatUser), t.T(keyEmptyUser)
	default:
		out.TableTitle, out.UsersStat, out.EmptyMessage = t.T(keyTitleDefault), t.T(keyStatDefault), t.T(keyEmptyDefault)
	}
	return out
}

// Notice translates a console notice.
func Notice(t Translator, key string) string { return t.T(key) }

// Console notices.
const (
	NoticeInvitationSent = keyInvitationSent
	NoticeRoleUpdated    = keyRoleUpdated
)
