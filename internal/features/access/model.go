package access

import "strings"

// Role is the coarse identity category carried in the session token.
type Role string

const (
	RoleStudent    Role = "student"
	RoleMentor     Role = "mentor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// AllRoles lists every known role, lowest privilege first.
var AllRoles = []Role{RoleStudent, RoleMentor, RoleAdmin, RoleSuperAdmin}

// ParseRole maps a stored or user-supplied role name onto a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Permission is a named capability granted to a role.
type Permission string

const (
	// shared by students and mentors
	PermViewMentors          Permission = "mentor:read"
	PermManageOwnProfile     Permission = "profile:update_own"
	PermManageOwnSessions    Permission = "session:manage_own"
	PermManageOwnFiles       Permission = "file:manage_own"
	PermUploadFiles          Permission = "file:create"
	PermReadOwnNotifications Permission = "notification:read_own"

	// student grants
	PermBookSessions        Permission = "session:create"
	PermWriteReviews        Permission = "review:create"
	PermViewRecommendations Permission = "recommendation:read"
	PermMakePayments        Permission = "payment:create"

	// mentor grants
	PermManageMentorProfile Permission = "mentor_profile:manage_own"
	PermRespondToSessions   Permission = "session:respond"

	// admin grants
	PermViewAllUsers      Permission = "user:list"
	PermManageUsers       Permission = "user:update"
	PermViewAllSessions   Permission = "session:list"
	PermModerateReviews   Permission = "review:moderate"
	PermApproveMentors    Permission = "mentor_profile:approve"
	PermViewAuditLogs     Permission = "audit:read"
	PermExportReports     Permission = "report:export"
	PermManageAllFiles    Permission = "file:manage"
	PermSendNotifications Permission = "notification:create"

	// super admin grants
	PermManageAdmins         Permission = "user:manage_roles"
	PermManageSystemSettings Permission = "system:manage"
)

// Action is the verb half of an authorization request.
type Action string

const (
	ActionCreate    Action = "create"
	ActionRead      Action = "read"
	ActionList      Action = "list"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionReadOwn   Action = "read_own"
	ActionUpdateOwn Action = "update_own"
	ActionDeleteOwn Action = "delete_own"
	ActionModerate  Action = "moderate"
	ActionManage    Action = "manage"
	ActionExport    Action = "export"
)

// Resource is the noun half of an authorization request.
type Resource string

const (
	ResourceSession        Resource = "session"
	ResourceReview         Resource = "review"
	ResourceFile           Resource = "file"
	ResourceNotification   Resource = "notification"
	ResourceMentorProfile  Resource = "mentor_profile"
	ResourceUser           Resource = "user"
	ResourcePayment        Resource = "payment"
	ResourceRecommendation Resource = "recommendation"
	ResourceAuditLog       Resource = "audit_log"
	ResourceReport         Resource = "report"
)

// AccessContext describes who is asking and, optionally, which resource instance
// they are asking about. Build a new one per check.
type AccessContext struct {
	UserID          string
	Role            Role
	ResourceID      *string
	ResourceOwnerID *string
}

// NewContext returns a context without resource information.
func NewContext(userID string, role Role) AccessContext {
	return AccessContext{UserID: userID, Role: role}
}

// ForResource returns a copy of c scoped to one resource instance.
func (c AccessContext) ForResource(resourceID, ownerID string) AccessContext {
	c.ResourceID = &resourceID
	c.ResourceOwnerID = &ownerID
	return c
}
