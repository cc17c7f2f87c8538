package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
)

func TestReviewPolicy_CanTransition(t *testing.T) {
	policy := NewReviewPolicy()

	tests := []struct {
		name    string
		role    users.Role
		current model.InstanceStatus
		target  model.InstanceStatus
		allowed bool
	}{
		{
			name:    "manager approves pending",
			role:    users.RoleManager,
			current: model.StatusPending,
			target:  model.StatusApproved,
			allowed: true,
		},
		{
			name:    "admin rejects pending",
			role:    users.RoleAdmin,
			current: model.StatusPending,
			target:  model.StatusRejected,
			allowed: true,
		},
		{
			name:    "manager requests changes",
			role:    users.RoleManager,
			current: model.StatusPending,
			target:  model.StatusChangesRequested,
			allowed: true,
		},
		{
			name:    "manager decides changes_requested instance",
			role:    users.RoleManager,
			current: model.StatusChangesRequested,
			target:  model.StatusApproved,
			allowed: true,
		},
		{
			name:    "user may not approve",
			role:    users.RoleUser,
			current: model.StatusPending,
			target:  model.StatusApproved,
			allowed: false,
		},
		{
			name:    "approved is terminal",
			role:    users.RoleAdmin,
			current: model.StatusApproved,
			target:  model.StatusRejected,
			allowed: false,
		},
		{
			name:    "rejected is terminal",
			role:    users.RoleAdmin,
			current: model.StatusRejected,
			target:  model.StatusApproved,
			allowed: false,
		},
		{
			name:    "pending is not a decision target",
			role:    users.RoleManager,
			current: model.StatusChangesRequested,
			target:  model.StatusPending,
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, policy.CanTransition(tt.role, tt.current, tt.target))
		})
	}
}
