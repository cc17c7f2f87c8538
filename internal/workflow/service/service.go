package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// UserDirectory resolves usernames for assignment.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// InstanceService is the request-facing facade over the lifecycle engine. It
// owns transaction boundaries and response mapping; the engine owns the
// rules.
type InstanceService struct {
	instances InstanceRepository
	engine    *InstanceEngine
	directory UserDirectory
}

func NewInstanceService(instances InstanceRepository, engine *InstanceEngine, directory UserDirectory) *InstanceService {
	return &InstanceService{instances: instances, engine: engine, directory: directory}
}

// Create submits a new instance and returns its detailed view.
func (s *InstanceService) Create(ctx context.Context, actor users.Actor, req *model.CreateInstanceRequest) (*model.InstanceResponse, error) {
	var created *model.WorkflowInstance
	err := s.instances.InTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		created, txErr = s.engine.Create(ctx, tx, actor, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return s.detailed(ctx, created.ID)
}

// Transition moves an instance to a new lifecycle status.
func (s *InstanceService) Transition(ctx context.Context, actor users.Actor, id uuid.UUID, req *model.TransitionRequest) (*model.InstanceResponse, error) {
	err := s.instances.InTx(ctx, func(tx *gorm.DB) error {
		_, txErr := s.engine.Transition(ctx, tx, actor, id, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return s.detailed(ctx, id)
}

// Assign routes an instance to the named reviewer.
func (s *InstanceService) Assign(ctx context.Context, actor users.Actor, id uuid.UUID, req *model.AssignRequest) (*model.InstanceResponse, error) {
	if req.AssignedTo == "" {
		return nil, apperrors.Validation("assignedTo is required")
	}
	assignee, err := s.directory.GetByUsername(ctx, req.AssignedTo)
	if err != nil {
		return nil, err
	}
	err = s.instances.InTx(ctx, func(tx *gorm.DB) error {
		_, txErr := s.engine.Assign(ctx, tx, actor, id, assignee)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return s.detailed(ctx, id)
}

// UpdateDetails adjusts due date and priority on a non-terminal instance.
func (s *InstanceService) UpdateDetails(ctx context.Context, actor users.Actor, id uuid.UUID, req *model.UpdateDetailsRequest) (*model.InstanceResponse, error) {
	err := s.instances.InTx(ctx, func(tx *gorm.DB) error {
		_, txErr := s.engine.UpdateDetails(ctx, tx, actor, id, req)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return s.detailed(ctx, id)
}

// Get returns one instance. Owners see their own instances; reviewers see
// any instance.
func (s *InstanceService) Get(ctx context.Context, actor users.Actor, id uuid.UUID) (*model.InstanceResponse, error) {
	instance, err := s.instances.GetDetailed(ctx, id)
	if err != nil {
		return nil, err
	}
	if instance.OwnerID != actor.ID && !actor.Role.IsReviewer() {
		return nil, apperrors.Authorization("caller may not view instance %s", id)
	}
	return model.ToInstanceResponse(instance), nil
}

// ListMine returns the actor's own submissions, newest first.
func (s *InstanceService) ListMine(ctx context.Context, actor users.Actor) ([]model.InstanceResponse, error) {
	list, err := s.instances.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return mapResponses(list), nil
}

// ListAssigned returns the instances routed to the actor.
func (s *InstanceService) ListAssigned(ctx context.Context, actor users.Actor) ([]model.InstanceResponse, error) {
	list, err := s.instances.ListAssigned(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return mapResponses(list), nil
}

// ListAll returns instances matching the filter. Reviewer-only.
func (s *InstanceService) ListAll(ctx context.Context, actor users.Actor, filter model.InstanceFilter) ([]model.InstanceResponse, error) {
	if !actor.Role.IsReviewer() {
		return nil, apperrors.Authorization("role %s may not list all instances", actor.Role)
	}
	list, err := s.instances.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapResponses(list), nil
}

func (s *InstanceService) detailed(ctx context.Context, id uuid.UUID) (*model.InstanceResponse, error) {
	instance, err := s.instances.GetDetailed(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ToInstanceResponse(instance), nil
}

func mapResponses(list []model.WorkflowInstance) []model.InstanceResponse {
	out := make([]model.InstanceResponse, 0, len(list))
	for i := range list {
		out = append(out, *model.ToInstanceResponse(&list[i]))
	}
	return out
}
