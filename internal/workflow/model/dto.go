package model

import (
	"time"

	"github.com/google/uuid"
)

// CreateInstanceRequest is the submission payload
type CreateInstanceRequest struct {
	TemplateID  uuid.UUID  `json:"workflowId"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// TransitionRequest carries a status decision for an instance
type TransitionRequest struct {
	Status  InstanceStatus `json:"status"`
	Remarks string         `json:"remarks"`
}

// AssignRequest names the user an instance is assigned to
type AssignRequest struct {
	AssignedTo string `json:"assignedTo"`
}

// UpdateDetailsRequest carries mutable scheduling fields
type UpdateDetailsRequest struct {
	DueDate  *time.Time `json:"dueDate,omitempty"`
	Priority *Priority  `json:"priority,omitempty"`
}

// InstanceFilter narrows reviewer instance listings. All fields are optional
// and combine with logical AND.
type InstanceFilter struct {
	Status *InstanceStatus // exact match
	Owner  string          // case-insensitive substring over owner full name
	Date   *time.Time      // calendar-day match on submission timestamp
	Query  string          // case-insensitive substring over description and template title
	Offset *int
	Limit  *int
}

// InstanceResponse is the API shape for a workflow instance
type InstanceResponse struct {
	ID             uuid.UUID            `json:"id"`
	WorkflowTitle  string               `json:"workflowTitle"`
	ApplicantName  string               `json:"applicantName"`
	Description    string               `json:"description"`
	Status         InstanceStatus       `json:"status"`
	Remarks        string               `json:"remarks"`
	Priority       Priority             `json:"priority"`
	DueDate        *time.Time           `json:"dueDate,omitempty"`
	SubmittedAt    time.Time            `json:"submittedAt"`
	DecidedAt      *time.Time           `json:"decidedAt,omitempty"`
	AssignedToName string               `json:"assignedToName,omitempty"`
	Attachments    []AttachmentResponse `json:"attachments"`
}

// ToInstanceResponse maps an instance row with preloaded relations to its
// API shape.
func ToInstanceResponse(wi *WorkflowInstance) *InstanceResponse {
	resp := &InstanceResponse{
		ID:          wi.ID,
		Description: wi.Description,
		Status:      wi.Status,
		Remarks:     wi.Remarks,
		Priority:    wi.Priority,
		DueDate:     wi.DueDate,
		SubmittedAt: wi.SubmittedAt,
		DecidedAt:   wi.DecidedAt,
		Attachments: make([]AttachmentResponse, 0, len(wi.Attachments)),
	}
	if wi.Template != nil {
		resp.WorkflowTitle = wi.Template.Title
	}
	if wi.Owner != nil {
		resp.ApplicantName = wi.Owner.FullName
	}
	if wi.AssignedTo != nil {
		resp.AssignedToName = wi.AssignedTo.FullName
	}
	for i := range wi.Attachments {
		resp.Attachments = append(resp.Attachments, ToAttachmentResponse(&wi.Attachments[i]))
	}
	return resp
}
