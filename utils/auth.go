package utils

// Staff permission levels, highest first.
const (
	DeveloperPermission  = "developer"
	SuperAdminPermission = "super_admin"
	AdminPermission      = "admin"
	NoPermission         = "none"
)

func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// CheckPermission resolves the highest staff level a member holds.
// Developer ids are process-wide, super admin roles are process-wide,
// admin roles come from the guild's server config.
func CheckPermission(memberRoleIDs []string, userID string, adminRoleIDs, developerUserIDs, superAdminRoleIDs []string) string {
	if contains(developerUserIDs, userID) {
		return DeveloperPermission
	}

	for _, roleID := range memberRoleIDs {
		if contains(superAdminRoleIDs, roleID) {
			return SuperAdminPermission
		}
	}

	for _, roleID := range memberRoleIDs {
		if contains(adminRoleIDs, roleID) {
			return AdminPermission
		}
	}

	return NoPermission
}

// IsStaff reports whether the level may run moderation commands.
func IsStaff(level string) bool {
	return level == AdminPermission || level == SuperAdminPermission || level == DeveloperPermission
}
