package rbac

// Capabilities summarises what the user-management console lets a principal
// do. Target-specific checks are exposed as functions below.
type Capabilities struct {
	InviteUsers        bool    `json:"inviteUsers"`
	ExportData         bool    `json:"exportData"`
	ManageMultiple     bool    `json:"manageMultipleUsers"`
	ShowProjectsColumn bool    `json:"showProjectsColumn"`
	AssignableLevels   []Level `json:"assignableLevels"`
}

// CapabilitiesFor computes the console capabilities of p.
func CapabilitiesFor(p *Principal) Capabilities {
	return Capabilities{
		InviteUsers:        CanInviteUsers(p),
		ExportData:         CanExportData(p),
		ManageMultiple:     CanManageMultipleUsers(p),
		ShowProjectsColumn: ShowProjectsColumn(p),
		AssignableLevels:   AssignableLevels(p),
	}
}

// CanInviteUsers is granted to User+ and above.
func CanInviteUsers(p *Principal) bool {
	return p.HasRole(LevelUserPlus)
}

// CanExportData is granted to Admin and above.
func CanExportData(p *Principal) bool {
	return p.HasRole(LevelAdmin)
}

// CanManageMultipleUsers enables bulk actions for Admin and above.
func CanManageMultipleUsers(p *Principal) bool {
	return p.HasRole(LevelAdmin)
}

// ShowProjectsColumn reports whether project assignments are listed.
func ShowProjectsColumn(p *Principal) bool {
	return p.HasRole(LevelUserPlus)
}

// CanEditUser allows Admins to edit anyone and everyone else to edit themselves.
func CanEditUser(p *Principal, targetID string) bool {
	if p == nil {
		return false
	}
	return p.HasRole(LevelAdmin) || p.ID == targetID
}

// CanManageProjects allows User+ and above to manage project assignments of
// User+ or User accounts.
func CanManageProjects(p *Principal, target Level) bool {
	if !p.HasRole(LevelUserPlus) || !target.Valid() {
		return false
	}
	return !IsAtLeast(target, LevelAdmin)
}

// CanRemoveUser allows Admins to remove anyone but themselves.
func CanRemoveUser(p *Principal, targetID string) bool {
	if p == nil {
		return false
	}
	return p.HasRole(LevelAdmin) && p.ID != targetID
}

// UserActions are the row actions the console offers on one user.
type UserActions struct {
	Edit           bool `json:"canEdit"`
	ManageProjects bool `json:"canManageProjects"`
	Remove         bool `json:"canRemove"`
}

// ActionsOn computes the row actions p has on the user targetID at level
// target. Editing and removal also require p to be at least as privileged as
// the target.
func ActionsOn(p *Principal, targetID string, target Level) UserActions {
	if p == nil {
		return UserActions{}
	}
	outranked := !IsAtLeast(p.Level, target)
	return UserActions{
		Edit:           CanEditUser(p, targetID) && !outranked,
		ManageProjects: CanManageProjects(p, target),
		Remove:         CanRemoveUser(p, targetID) && !outranked,
	}
}

// AssignableLevels lists the levels p may grant: its own and every less
// privileged one.
func AssignableLevels(p *Principal) []Level {
	if p == nil || !p.Level.Valid() {
		return nil
	}
	out := make([]Level, 0, len(Levels()))
	for _, l := range Levels() {
		if IsAtLeast(p.Level, l) {
			out = append(out, l)
		}
	}
	return out
}

// CanAssignLevel reports whether p may grant level.
func CanAssignLevel(p *Principal, level Level) bool {
	if p == nil || !level.Valid() {
		return false
	}
	return IsAtLeast(p.Level, level)
}
