package access

import "slices"

// HasRole reports whether role is one of allowed.
func HasRole(role Role, allowed ...Role) bool {
	return slices.Contains(allowed, role)
}

// IsAdmin reports whether role bypasses ownership and permission checks.
func IsAdmin(role Role) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// PermissionsFor returns the fixed permission set of role. Unknown roles get an empty set.
func PermissionsFor(role Role) PermissionSet {
	if set, ok := rolePermissions[role]; ok {
		return set
	}
	return PermissionSet{}
}

// HasPermission reports whether the caller's role grants p.
func HasPermission(ctx AccessContext, p Permission) bool {
	return PermissionsFor(ctx.Role).Has(p)
}

// CanPerform decides whether ctx may apply action to resource. It never panics and
// denies anything it has no mapping for.
func CanPerform(ctx AccessContext, action Action, resource Resource) bool {
	if IsAdmin(ctx.Role) {
		return true
	}

	if _, known := rolePermissions[ctx.Role]; !known {
		return false
	}

	rule, ok := RuleFor(action, resource)
	if !ok {
		return false
	}

	if rule.Ownership {
		return isOwner(ctx)
	}

	return HasPermission(ctx, rule.Permission)
}

func isOwner(ctx AccessContext) bool {
	if ctx.ResourceOwnerID == nil || ctx.UserID == "" {
		return false
	}
	return *ctx.ResourceOwnerID == ctx.UserID
}
