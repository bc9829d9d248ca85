package user

// Permissions
const (
	PermMessagesRead   = "messages:read"
	PermMessagesWrite  = "messages:write"
	PermAttendanceRead = "attendance:read"
	PermAttendanceMark = "attendance:mark"
	PermLeaveSubmit    = "leave:submit"
	PermLeaveApprove   = "leave:approve"
	PermCourseEnroll   = "course:enroll"
	PermCourseManage   = "course:manage"
	PermKPIView        = "kpi:view"
	PermAdminView      = "admin:view"

	// PermAdminAll grants every permission.
	PermAdminAll = "admin:*"
)

// RolePermissions is the single role -> permissions table, used both to answer
// authorization checks and to report a User's permissions at login.
var RolePermissions = map[string][]string{
	RoleStudent: {PermMessagesRead, PermAttendanceRead, PermLeaveSubmit, PermCourseEnroll},
	RoleTeacher: {
		PermMessagesRead, PermMessagesWrite, PermAttendanceRead, PermAttendanceMark, PermLeaveApprove, PermCourseManage,
	},
	RoleHOD: {
		PermMessagesRead, PermMessagesWrite, PermAttendanceRead, PermAttendanceMark, PermLeaveApprove, PermCourseManage,
		PermKPIView,
	},
	RolePrincipal: {PermMessagesRead, PermMessagesWrite, PermKPIView, PermAdminView},
	RoleAdmin:     {PermAdminAll, PermMessagesRead, PermMessagesWrite, PermKPIView, PermAttendanceRead, PermLeaveApprove},
}

// Permissions flattens the permissions of `roles`, without duplicates, in first-seen order.
// Unknown roles grant nothing.
func Permissions(roles []string) []string {
	perms := make([]string, 0)
	seen := make(map[string]bool)
	for _, role := range roles {
		for _, perm := range RolePermissions[role] {
			if !seen[perm] {
				seen[perm] = true
				perms = append(perms, perm)
			}
		}
	}
	return perms
}

// HasPermission reports whether `usr` holds `perm`, either literally or through PermAdminAll.
// A nil User is denied.
func HasPermission(usr *User, perm string) bool {
	if usr == nil {
		return false
	}
	for _, role := range usr.Roles {
		for _, p := range RolePermissions[role] {
			if p == perm || p == PermAdminAll {
				return true
			}
		}
	}
	return false
}

func (u *User) HasPermission(perm string) bool {
	return HasPermission(u, perm)
}
