package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/internal/users"
)

// WorkflowTemplate is a reusable workflow definition that instances are
// created from. Immutable once created except by its owner.
type WorkflowTemplate struct {
	BaseModel
	Title       string      `gorm:"type:varchar(255);column:title;not null" json:"title"`
	Description string      `gorm:"type:text;column:description" json:"description"`
	CreatedByID uuid.UUID   `gorm:"type:uuid;column:created_by_id;not null" json:"createdById"`
	CreatedBy   *users.User `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (wt *WorkflowTemplate) TableName() string {
	return "workflow_templates"
}

// TemplateResponse is the API shape for a workflow template
type TemplateResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToTemplateResponse maps a template row with its preloaded creator to its
// API shape.
func ToTemplateResponse(wt *WorkflowTemplate) *TemplateResponse {
	resp := &TemplateResponse{
		ID:          wt.ID,
		Title:       wt.Title,
		Description: wt.Description,
		CreatedAt:   wt.CreatedAt,
	}
	if wt.CreatedBy != nil {
		resp.CreatedBy = wt.CreatedBy.FullName
	}
	return resp
}

// CreateTemplateRequest is the template creation payload
type CreateTemplateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
