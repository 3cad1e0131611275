// Package rbac resolves tenant, role and permission bindings for
// authenticated subjects and enforces per-route requirements.
package rbac

// Role names. Keep these stable; they are part of the auth contract and of
// the rows seeded in the roles table.
const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleAdmin       = "ADMIN"
	RoleHRManager   = "HR_MANAGER"
	RoleHRExecutive = "HR_EXECUTIVE"
	RoleEmployee    = "EMPLOYEE"
)

// Permission names, grouped by feature area.
const (
	PermCreateEmployee = "CREATE_EMPLOYEE"
	PermReadEmployee   = "READ_EMPLOYEE"
	PermUpdateEmployee = "UPDATE_EMPLOYEE"
	PermDeleteEmployee = "DELETE_EMPLOYEE"

	PermManageLeave  = "MANAGE_LEAVE"
	PermApproveLeave = "APPROVE_LEAVE"
	PermRequestLeave = "REQUEST_LEAVE"

	PermManageAttendance = "MANAGE_ATTENDANCE"
	PermMarkAttendance   = "MARK_ATTENDANCE"
	PermViewAttendance   = "VIEW_ATTENDANCE"

	PermManagePayroll = "MANAGE_PAYROLL"
	PermViewPayroll   = "VIEW_PAYROLL"

	PermManageDocuments = "MANAGE_DOCUMENTS"
	PermViewDocuments   = "VIEW_DOCUMENTS"

	PermManageSettings = "MANAGE_SETTINGS"
	PermViewSettings   = "VIEW_SETTINGS"
)

// KnownRoles lists the fixed role enumeration.
func KnownRoles() []string {
	return []string{RoleSuperAdmin, RoleAdmin, RoleHRManager, RoleHRExecutive, RoleEmployee}
}

// IsKnownRole reports whether name is part of the fixed enumeration.
func IsKnownRole(name string) bool {
	for _, r := range KnownRoles() {
		if r == name {
			return true
		}
	}
	return false
}

// Requirement is the static metadata attached to a route at registration
// time. The zero value means: not public, authentication required, any
// authenticated identity passes.
type Requirement struct {
	Public       bool
	OptionalAuth bool
	Roles        []string
	Permissions  []string
}

// Authenticated is the default requirement.
func Authenticated() Requirement { return Requirement{} }

// Public marks a route as requiring no identity resolution at all.
func Public() Requirement { return Requirement{Public: true} }

// RequireRoles builds a requirement satisfied by any one of the roles.
func RequireRoles(roles ...string) Requirement { return Requirement{Roles: roles} }

// RequirePermissions builds a requirement satisfied only by holding every
// listed permission.
func RequirePermissions(permissions ...string) Requirement {
	return Requirement{Permissions: permissions}
}

// MatchRoles reports whether granted satisfies required. SUPER_ADMIN is a
// universal override checked explicitly before set matching, not a role
// hierarchy. An empty required set always passes.
func MatchRoles(required, granted []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	if _, ok := set[RoleSuperAdmin]; ok {
		return true
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

// MatchPermissions reports whether granted contains every required
// permission. Conjunction, not disjunction; no override applies here.
func MatchPermissions(required, granted []string) bool {
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
