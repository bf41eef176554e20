package auth

import (
	"context"

	"perfeval/internal/domain/identity"
)

const (
	PermUsersRead         = "users.read"
	PermUsersWrite        = "users.write"
	PermGoalsRead         = "goals.read"
	PermGoalsWrite        = "goals.write"
	PermGoalsReadOthers   = "goals.read_others"
	PermEvaluationsRead   = "evaluations.read"
	PermEvaluationsWrite  = "evaluations.write"
	PermPerformanceReview = "evaluations.performance_review"
	PermChatRead          = "chat.read"
	PermChatWrite         = "chat.write"
	PermAnalyticsRead     = "analytics.read"
	PermAnalyticsTeam     = "analytics.team"
)

var DefaultPermissions = []string{
	PermUsersRead,
	PermUsersWrite,
	PermGoalsRead,
	PermGoalsWrite,
	PermGoalsReadOthers,
	PermEvaluationsRead,
	PermEvaluationsWrite,
	PermPerformanceReview,
	PermChatRead,
	PermChatWrite,
	PermAnalyticsRead,
	PermAnalyticsTeam,
}

var RolePermissions = map[string][]string{
	identity.RoleEmployee: {
		PermGoalsRead,
		PermGoalsWrite,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermChatRead,
		PermChatWrite,
		PermAnalyticsRead,
	},
	identity.RoleManager: {
		PermUsersRead,
		PermGoalsRead,
		PermGoalsWrite,
		PermGoalsReadOthers,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermPerformanceReview,
		PermChatRead,
		PermChatWrite,
		PermAnalyticsRead,
		PermAnalyticsTeam,
	},
	identity.RoleHR: DefaultPermissions,
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct {
	index map[string]map[string]struct{}
}

func NewStaticPermissions() *StaticPermissions {
	index := make(map[string]map[string]struct{}, len(RolePermissions))
	for role, perms := range RolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		index[role] = set
	}
	return &StaticPermissions{index: index}
}

func (p *StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	_, ok := p.index[role][permission]
	return ok, nil
}

func RoleHas(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
