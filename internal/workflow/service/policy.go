package service

import (
	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
)

// ReviewPolicy decides which roles may transition which instances. It is a
// pure function over (role, current status, target status); ownership-based
// resubmission is handled separately by the engine.
type ReviewPolicy struct{}

func NewReviewPolicy() *ReviewPolicy {
	return &ReviewPolicy{}
}

// CanTransition reports whether an actor with the given role may move an
// instance from current to target. Only MANAGER and ADMIN may transition, and
// their rights are identical; USER never transitions. Terminal instances
// admit no transition at all.
func (p *ReviewPolicy) CanTransition(role users.Role, current, target model.InstanceStatus) bool {
	if current.Terminal() {
		return false
	}
	switch target {
	case model.StatusApproved, model.StatusRejected, model.StatusChangesRequested:
	default:
		return false
	}
	return role.IsReviewer()
}
