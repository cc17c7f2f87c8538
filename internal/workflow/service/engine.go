package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// AuditRecorder appends an audit entry inside the caller's transaction.
type AuditRecorder interface {
	RecordInTx(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// NotificationDispatcher delivers an inbox notification inside the caller's
// transaction.
type NotificationDispatcher interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, message string) error
}

// InstanceEngine holds the lifecycle rules for workflow instances. All
// mutating methods run inside the caller's transaction; the engine writes the
// instance change, its audit entry and any notification through the same tx
// so they commit or roll back together.
type InstanceEngine struct {
	instances     InstanceRepository
	templates     TemplateRepository
	recorder      AuditRecorder
	notifier      NotificationDispatcher
	policy        *ReviewPolicy
	allowResubmit bool
	now           func() time.Time
}

func NewInstanceEngine(instances InstanceRepository, templates TemplateRepository, recorder AuditRecorder, notifier NotificationDispatcher, policy *ReviewPolicy, allowResubmit bool) *InstanceEngine {
	return &InstanceEngine{
		instances:     instances,
		templates:     templates,
		recorder:      recorder,
		notifier:      notifier,
		policy:        policy,
		allowResubmit: allowResubmit,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create submits a new instance of a workflow template on behalf of actor.
// The instance starts PENDING with the submission timestamp set server-side.
func (e *InstanceEngine) Create(ctx context.Context, tx *gorm.DB, actor users.Actor, req *model.CreateInstanceRequest) (*model.WorkflowInstance, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperrors.Validation("description is required")
	}
	if !req.Priority.Valid() {
		return nil, apperrors.Validation("invalid priority: %s", req.Priority)
	}
	now := e.now()
	if req.DueDate != nil && req.DueDate.Before(now) {
		return nil, apperrors.Validation("due date must not be in the past")
	}

	template, err := e.templates.GetByIDInTx(ctx, tx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	instance := &model.WorkflowInstance{
		TemplateID:  template.ID,
		OwnerID:     actor.ID,
		Description: strings.TrimSpace(req.Description),
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Status:      model.StatusPending,
		SubmittedAt: now,
	}
	if err := e.instances.CreateInTx(ctx, tx, instance); err != nil {
		return nil, err
	}
	instance.Template = template

	err = e.recorder.RecordInTx(ctx, tx, auditEntry(actor, audit.ActionInstanceSubmitted,
		fmt.Sprintf("Submitted request for workflow: %s (Instance ID: %s)", template.Title, instance.ID)))
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// Transition moves an instance to the requested status. Reviewers decide
// PENDING and CHANGES_REQUESTED instances; owners may resubmit a
// CHANGES_REQUESTED instance back to PENDING when resubmission is enabled.
// The status row is updated with a compare-and-set over the current status so
// concurrent deciders cannot both win.
func (e *InstanceEngine) Transition(ctx context.Context, tx *gorm.DB, actor users.Actor, id uuid.UUID, req *model.TransitionRequest) (*model.WorkflowInstance, error) {
	if !req.Status.Valid() {
		return nil, apperrors.Validation("invalid status: %s", req.Status)
	}

	instance, err := e.instances.GetByIDInTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if instance.Status.Terminal() {
		return nil, apperrors.InvalidState("instance %s is already %s", id, instance.Status)
	}

	remarks := req.Remarks
	if req.Status == model.StatusPending {
		// Resubmission path: only the owner of a CHANGES_REQUESTED instance
		// may return it to the review queue.
		if !e.allowResubmit {
			return nil, apperrors.InvalidState("resubmission is disabled")
		}
		if instance.Status != model.StatusChangesRequested {
			return nil, apperrors.InvalidState("instance %s is %s, only CHANGES_REQUESTED instances can be resubmitted", id, instance.Status)
		}
		if instance.OwnerID != actor.ID {
			return nil, apperrors.Authorization("only the owner may resubmit instance %s", id)
		}
		remarks = ""
	} else if !e.policy.CanTransition(actor.Role, instance.Status, req.Status) {
		return nil, apperrors.Authorization("role %s may not move instance %s to %s", actor.Role, id, req.Status)
	}

	now := e.now()
	updates := map[string]any{
		"status":     req.Status,
		"remarks":    remarks,
		"decided_at": now,
		"updated_at": now,
	}
	rows, err := e.instances.UpdateStatusInTx(ctx, tx, id, instance.Status, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperrors.InvalidState("instance %s was transitioned concurrently", id)
	}
	instance.Status = req.Status
	instance.Remarks = remarks
	instance.DecidedAt = &now

	title := ""
	if instance.Template != nil {
		title = instance.Template.Title
	}

	details := fmt.Sprintf("Updated status of Instance %s to %s. Remarks: %s", id, req.Status, remarks)
	if err := e.recorder.RecordInTx(ctx, tx, auditEntry(actor, "INSTANCE_"+string(req.Status), details)); err != nil {
		return nil, err
	}

	if instance.OwnerID != actor.ID {
		message := fmt.Sprintf("Update on '%s': %s", title, req.Status)
		if err := e.notifier.CreateInTx(ctx, tx, instance.OwnerID, message); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Assign routes an instance to a reviewer for handling. Only reviewers may
// assign, and only reviewers may be assignees.
func (e *InstanceEngine) Assign(ctx context.Context, tx *gorm.DB, actor users.Actor, id uuid.UUID, assignee *users.User) (*model.WorkflowInstance, error) {
	if !actor.Role.IsReviewer() {
		return nil, apperrors.Authorization("role %s may not assign instances", actor.Role)
	}
	if !assignee.Role.IsReviewer() {
		return nil, apperrors.Validation("user %s cannot be assigned review work", assignee.Username)
	}

	instance, err := e.instances.GetByIDInTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if instance.Status.Terminal() {
		return nil, apperrors.InvalidState("instance %s is already %s", id, instance.Status)
	}

	instance.AssignedToID = &assignee.ID
	if err := e.instances.SaveInTx(ctx, tx, instance); err != nil {
		return nil, err
	}

	err = e.recorder.RecordInTx(ctx, tx, auditEntry(actor, audit.ActionAssignTask,
		fmt.Sprintf("Assigned Instance %s to %s", id, assignee.Username)))
	if err != nil {
		return nil, err
	}

	if assignee.ID != actor.ID {
		title := ""
		if instance.Template != nil {
			title = instance.Template.Title
		}
		message := fmt.Sprintf("You have been assigned the task '%s' by %s.", title, actor.FullName)
		if err := e.notifier.CreateInTx(ctx, tx, assignee.ID, message); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// UpdateDetails adjusts the mutable scheduling fields of a non-terminal
// instance. The owner and reviewers may update; lifecycle fields are not
// touched here.
func (e *InstanceEngine) UpdateDetails(ctx context.Context, tx *gorm.DB, actor users.Actor, id uuid.UUID, req *model.UpdateDetailsRequest) (*model.WorkflowInstance, error) {
	instance, err := e.instances.GetByIDInTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if instance.OwnerID != actor.ID && !actor.Role.IsReviewer() {
		return nil, apperrors.Authorization("caller may not update instance %s", id)
	}
	if instance.Status.Terminal() {
		return nil, apperrors.InvalidState("instance %s is already %s", id, instance.Status)
	}

	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, apperrors.Validation("invalid priority: %s", *req.Priority)
		}
		instance.Priority = *req.Priority
	}
	if req.DueDate != nil {
		if req.DueDate.Before(e.now()) {
			return nil, apperrors.Validation("due date must not be in the past")
		}
		instance.DueDate = req.DueDate
	}

	if err := e.instances.SaveInTx(ctx, tx, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func auditEntry(actor users.Actor, action, details string) audit.Entry {
	actorID := actor.ID
	return audit.Entry{
		ActorID:   &actorID,
		ActorName: actor.FullName,
		ActorRole: string(actor.Role),
		Action:    action,
		Details:   details,
	}
}
