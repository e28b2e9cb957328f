package menu

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the locales labels are available in. The first entry is
// the fallback.
var Supported = []language.Tag{language.Italian, language.English}

var matcher = language.NewMatcher(Supported)

// Negotiate picks a supported locale from an Accept-Language header.
func Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Message IDs.
const (
	keyDashboard       = "menu.dashboard"
	keyProjects        = "menu.projects"
	keyMyProjects      = "menu.projects.mine"
	keyTools           = "menu.tools"
	keyToolbox         = "menu.tools.toolbox"
	keyAnalytics       = "menu.analytics"
	keyCharts          = "menu.analytics.charts"
	keyReport          = "menu.report"
	keyReports         = "menu.report.list"
	keyUserManagement  = "menu.users"
	keyPreferences     = "menu.preferences"
	keyHome            = "menu.home"
	keyDocumentation   = "menu.documentation"
	keyTitleSuperAdmin = "console.title.superadmin"
	keyTitleAdmin      = "console.title.admin"
	keyTitleUserPlus   = "console.title.userplus"
	keyTitleUser       = "console.title.user"
	keyTitleDefault    = "console.title.default"
	keyStatSuperAdmin  = "console.stat.superadmin"
	keyStatAdmin       = "console.stat.admin"
	keyStatUserPlus    = "console.stat.userplus"
	keyStatUser        = "console.stat.user"
	keyStatDefault     = "console.stat.default"
	keyEmptySuperAdmin = "console.empty.superadmin"
	keyEmptyAdmin      = "console.empty.admin"
	keyEmptyUserPlus   = "console.empty.userplus"
	keyEmptyUser       = "console.empty.user"
	keyEmptyDefault    = "console.empty.default"
	keyNoUsersFound    = "console.empty.title"
	keyInvitationSent  = "notice.invitation_sent"
	keyRoleUpdated     = "notice.role_updated"
)

var english = map[string]string{
	keyDashboard:       "Dashboard",
	keyProjects:        "Projects",
	keyMyProjects:      "My projects",
	keyTools:           "Tools",
	keyToolbox:         "Toolbox",
	keyAnalytics:       "Analytics",
	keyCharts:          "Charts and analysis",
	keyReport:          "Report",
	keyReports:         "Reports",
	keyUserManagement:  "User management",
	keyPreferences:     "Preferences",
	keyHome:            "Home",
	keyDocumentation:   "Documentation",
	keyTitleSuperAdmin: "Users and permissions",
	keyTitleAdmin:      "Organisation users",
	keyTitleUserPlus:   "Collaborators",
	keyTitleUser:       "My data",
	keyTitleDefault:    "User management",
	keyStatSuperAdmin:  "Total users",
	keyStatAdmin:       "Organisation users",
	keyStatUserPlus:    "Collaborators",
	keyStatUser:        "Accessible projects",
	keyStatDefault:     "Users",
	keyEmptySuperAdmin: "No users registered on the platform",
	keyEmptyAdmin:      "No users in your organisation",
	keyEmptyUserPlus:   "You have not invited any collaborators yet",
	keyEmptyUser:       "No data available",
	keyEmptyDefault:    "No users available",
	keyNoUsersFound:    "No users found",
	keyInvitationSent:  "Invitation sent",
	keyRoleUpdated:     "Role updated",
}

var italian = map[string]string{
	keyDashboard:       "Dashboard",
	keyProjects:        "Progetti",
	keyMyProjects:      "I Miei Progetti",
	keyTools:           "Tools",
	keyToolbox:         "Strumenti",
	keyAnalytics:       "Analytics",
	keyCharts:          "Grafici e Analisi",
	keyReport:          "Report",
	keyReports:         "Rapporti",
	keyUserManagement:  "Gestione Utenti",
	keyPreferences:     "Preferenze",
	keyHome:            "Home",
	keyDocumentation:   "Documentazione",
	keyTitleSuperAdmin: "Gestione Utenti & Autorizzazioni",
	keyTitleAdmin:      "Gestione Utenti Organizzazione",
	keyTitleUserPlus:   "Gestione Collaboratori",
	keyTitleUser:       "I Miei Dati",
	keyTitleDefault:    "Gestione Utenti",
	keyStatSuperAdmin:  "Utenti Totali",
	keyStatAdmin:       "Utenti Organizzazione",
	keyStatUserPlus:    "Collaboratori",
	keyStatUser:        "Progetti Accessibili",
	keyStatDefault:     "Utenti",
	keyEmptySuperAdmin: "Nessun utente registrato nella piattaforma",
	keyEmptyAdmin:      "Nessun utente nella tua organizzazione",
	keyEmptyUserPlus:   "Non hai ancora invitato collaboratori",
	keyEmptyUser:       "Nessun dato disponibile",
	keyEmptyDefault:    "Nessun utente disponibile",
	keyNoUsersFound:    "Nessun utente trovato",
	keyInvitationSent:  "Invito inviato con successo",
	keyRoleUpdated:     "Ruolo aggiornato con successo",
}

var labels = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, texts := range map[language.Tag]map[string]string{
		language.English: english,
		language.Italian: italian,
	} {
		for key, text := range texts {
			if err := b.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Translator renders labels in one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// NewTranslator returns a Translator for tag.
func NewTranslator(tag language.Tag) Translator {
	return Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(labels))}
}

// Tag is the translator's locale.
func (t Translator) Tag() language.Tag { return t.tag }

// T translates a message key.
func (t Translator) T(key string) string {
	return t.printer.Sprintf(key)
}
