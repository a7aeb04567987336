package access

import (
	"fmt"
	"slices"
)

// PermissionSet is an immutable-by-convention set of permissions.
type PermissionSet map[Permission]struct{}

func newPermissionSet(groups ...[]Permission) PermissionSet {
	set := make(PermissionSet)
	for _, g := range groups {
		for _, p := range g {
			set[p] = struct{}{}
		}
	}
	return set
}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Contains reports whether every permission in other is also in s.
func (s PermissionSet) Contains(other PermissionSet) bool {
	for p := range other {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Sorted returns the permissions in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

var (
	basePermissions = []Permission{
		PermViewMentors,
		PermManageOwnProfile,
		PermManageOwnSessions,
		PermManageOwnFiles,
		PermUploadFiles,
		PermReadOwnNotifications,
	}
	studentGrants = []Permission{
		PermBookSessions,
		PermWriteReviews,
		PermViewRecommendations,
		PermMakePayments,
	}
	mentorGrants = []Permission{
		PermManageMentorProfile,
		PermRespondToSessions,
	}
	adminGrants = []Permission{
		PermViewAllUsers,
		PermManageUsers,
		PermViewAllSessions,
		PermModerateReviews,
		PermApproveMentors,
		PermViewAuditLogs,
		PermExportReports,
		PermManageAllFiles,
		PermSendNotifications,
	}
	superAdminGrants = []Permission{
		PermManageAdmins,
		PermManageSystemSettings,
	}
)

// rolePermissions is built once; higher roles are supersets of lower ones.
var rolePermissions = map[Role]PermissionSet{
	RoleStudent:    newPermissionSet(basePermissions, studentGrants),
	RoleMentor:     newPermissionSet(basePermissions, mentorGrants),
	RoleAdmin:      newPermissionSet(basePermissions, studentGrants, mentorGrants, adminGrants),
	RoleSuperAdmin: newPermissionSet(basePermissions, studentGrants, mentorGrants, adminGrants, superAdminGrants),
}

// Rule is what an (action, resource) pair resolves to.
type Rule struct {
	Permission Permission
	// Ownership rules are decided by comparing the resource owner with the caller.
	Ownership bool
}

type ruleKey struct {
	action   Action
	resource Resource
}

var rules = map[ruleKey]Rule{
	{ActionRead, ResourceMentorProfile}:      {Permission: PermViewMentors},
	{ActionList, ResourceMentorProfile}:      {Permission: PermViewMentors},
	{ActionCreate, ResourceMentorProfile}:    {Permission: PermManageMentorProfile},
	{ActionUpdateOwn, ResourceMentorProfile}: {Permission: PermManageMentorProfile, Ownership: true},
	{ActionModerate, ResourceMentorProfile}:  {Permission: PermApproveMentors},

	{ActionCreate, ResourceSession}:    {Permission: PermBookSessions},
	{ActionReadOwn, ResourceSession}:   {Permission: PermManageOwnSessions, Ownership: true},
	{ActionUpdateOwn, ResourceSession}: {Permission: PermManageOwnSessions, Ownership: true},
	{ActionList, ResourceSession}:      {Permission: PermViewAllSessions},
	{ActionRead, ResourceSession}:      {Permission: PermViewAllSessions},

	{ActionCreate, ResourceReview}:    {Permission: PermWriteReviews},
	{ActionList, ResourceReview}:      {Permission: PermViewMentors},
	{ActionDeleteOwn, ResourceReview}: {Permission: PermWriteReviews, Ownership: true},
	{ActionModerate, ResourceReview}:  {Permission: PermModerateReviews},

	{ActionCreate, ResourceFile}:    {Permission: PermUploadFiles},
	{ActionList, ResourceFile}:      {Permission: PermManageOwnFiles},
	{ActionReadOwn, ResourceFile}:   {Permission: PermManageOwnFiles, Ownership: true},
	{ActionDeleteOwn, ResourceFile}: {Permission: PermManageOwnFiles, Ownership: true},
	{ActionDelete, ResourceFile}:    {Permission: PermManageAllFiles},

	{ActionList, ResourceNotification}:      {Permission: PermReadOwnNotifications},
	{ActionUpdateOwn, ResourceNotification}: {Permission: PermReadOwnNotifications, Ownership: true},
	{ActionCreate, ResourceNotification}:    {Permission: PermSendNotifications},

	{ActionRead, ResourceRecommendation}: {Permission: PermViewRecommendations},
	{ActionList, ResourceRecommendation}: {Permission: PermViewMentors},

	{ActionCreate, ResourcePayment}:  {Permission: PermMakePayments},
	{ActionReadOwn, ResourcePayment}: {Permission: PermMakePayments, Ownership: true},

	{ActionReadOwn, ResourceUser}: {Permission: PermManageOwnProfile, Ownership: true},
	{ActionList, ResourceUser}:    {Permission: PermViewAllUsers},
	{ActionRead, ResourceUser}:    {Permission: PermViewAllUsers},
	{ActionUpdate, ResourceUser}:  {Permission: PermManageUsers},
	{ActionManage, ResourceUser}:  {Permission: PermManageAdmins},

	{ActionList, ResourceAuditLog}: {Permission: PermViewAuditLogs},
	{ActionExport, ResourceReport}: {Permission: PermExportReports},
}

// RuleFor looks up the rule for an (action, resource) pair.
func RuleFor(action Action, resource Resource) (Rule, bool) {
	r, ok := rules[ruleKey{action, resource}]
	return r, ok
}

// MustRule is RuleFor for route registration: an unmapped pair is a configuration
// bug and panics so the process never starts with it.
func MustRule(action Action, resource Resource) Rule {
	r, ok := RuleFor(action, resource)
	if !ok {
		panic(fmt.Sprintf("access: no rule for action %q on resource %q", action, resource))
	}
	return r
}
