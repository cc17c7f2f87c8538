package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/internal/users"
)

// InstanceStatus represents the lifecycle state of a workflow instance.
type InstanceStatus string

const (
	StatusPending          InstanceStatus = "PENDING"
	StatusApproved         InstanceStatus = "APPROVED"
	StatusRejected         InstanceStatus = "REJECTED"
	StatusChangesRequested InstanceStatus = "CHANGES_REQUESTED"
)

// Valid reports whether s is a known status.
func (s InstanceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusChangesRequested:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s InstanceStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// AllStatuses lists every lifecycle status.
func AllStatuses() []InstanceStatus {
	return []InstanceStatus{StatusPending, StatusApproved, StatusRejected, StatusChangesRequested}
}

// Priority represents the urgency of an instance.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// WorkflowInstance is one submitted request tracked through its lifecycle.
// Status transitions are monotonic: APPROVED and REJECTED are terminal.
// Remarks are set only on transition out of PENDING; DecidedAt is the
// last-transition timestamp.
type WorkflowInstance struct {
	BaseModel
	TemplateID   uuid.UUID         `gorm:"type:uuid;column:template_id;not null;index" json:"templateId"`
	Template     *WorkflowTemplate `gorm:"foreignKey:TemplateID" json:"-"`
	OwnerID      uuid.UUID         `gorm:"type:uuid;column:owner_id;not null;index" json:"ownerId"`
	Owner        *users.User       `gorm:"foreignKey:OwnerID" json:"-"`
	Description  string            `gorm:"type:text;column:description;not null" json:"description"`
	Priority     Priority          `gorm:"type:varchar(10);column:priority;not null" json:"priority"`
	DueDate      *time.Time        `gorm:"type:timestamptz;column:due_date" json:"dueDate,omitempty"`
	Status       InstanceStatus    `gorm:"type:varchar(20);column:status;not null;index" json:"status"`
	Remarks      string            `gorm:"type:text;column:remarks" json:"remarks"`
	SubmittedAt  time.Time         `gorm:"type:timestamptz;column:submitted_at;not null;index" json:"submittedAt"`
	DecidedAt    *time.Time        `gorm:"type:timestamptz;column:decided_at" json:"decidedAt,omitempty"`
	AssignedToID *uuid.UUID        `gorm:"type:uuid;column:assigned_to_id;index" json:"assignedToId,omitempty"`
	AssignedTo   *users.User       `gorm:"foreignKey:AssignedToID" json:"-"`
	Attachments  []FileAttachment  `gorm:"foreignKey:InstanceID" json:"-"`
}

func (wi *WorkflowInstance) TableName() string {
	return "workflow_instances"
}
