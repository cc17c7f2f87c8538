package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
	"github.com/enterprise-workflow/workflowd/utils"
)

// InstanceRepository is the persistence surface the lifecycle engine works
// against. Methods suffixed InTx operate inside the caller's transaction.
type InstanceRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	CreateInTx(ctx context.Context, tx *gorm.DB, instance *model.WorkflowInstance) error
	GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.WorkflowInstance, error)
	// UpdateStatusInTx applies updates only when the instance still holds the
	// expected status, returning the number of rows changed. This is the
	// compare-and-set that serializes concurrent transitions.
	UpdateStatusInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected model.InstanceStatus, updates map[string]any) (int64, error)
	SaveInTx(ctx context.Context, tx *gorm.DB, instance *model.WorkflowInstance) error
	GetDetailed(ctx context.Context, id uuid.UUID) (*model.WorkflowInstance, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.WorkflowInstance, error)
	ListAssigned(ctx context.Context, assigneeID uuid.UUID) ([]model.WorkflowInstance, error)
	List(ctx context.Context, filter model.InstanceFilter) ([]model.WorkflowInstance, error)
}

// TemplateRepository is the persistence surface for workflow templates.
type TemplateRepository interface {
	GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.WorkflowTemplate, error)
	Create(ctx context.Context, template *model.WorkflowTemplate) error
	List(ctx context.Context) ([]model.WorkflowTemplate, error)
}

type gormInstanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository returns the GORM-backed instance repository.
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &gormInstanceRepository{db: db}
}

func (r *gormInstanceRepository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *gormInstanceRepository) CreateInTx(ctx context.Context, tx *gorm.DB, instance *model.WorkflowInstance) error {
	if err := tx.WithContext(ctx).Create(instance).Error; err != nil {
		return fmt.Errorf("failed to create workflow instance: %w", err)
	}
	return nil
}

func (r *gormInstanceRepository) GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.WorkflowInstance, error) {
	var instance model.WorkflowInstance
	err := tx.WithContext(ctx).Preload("Template").First(&instance, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("instance %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch workflow instance: %w", err)
	}
	return &instance, nil
}

func (r *gormInstanceRepository) UpdateStatusInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected model.InstanceStatus, updates map[string]any) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.WorkflowInstance{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update workflow instance status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormInstanceRepository) SaveInTx(ctx context.Context, tx *gorm.DB, instance *model.WorkflowInstance) error {
	if err := tx.WithContext(ctx).Save(instance).Error; err != nil {
		return fmt.Errorf("failed to save workflow instance: %w", err)
	}
	return nil
}

func (r *gormInstanceRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*model.WorkflowInstance, error) {
	var instance model.WorkflowInstance
	err := r.detailed(r.db.WithContext(ctx)).First(&instance, "workflow_instances.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("instance %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch workflow instance: %w", err)
	}
	return &instance, nil
}

func (r *gormInstanceRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.WorkflowInstance, error) {
	var list []model.WorkflowInstance
	err := r.detailed(r.db.WithContext(ctx)).
		Where("workflow_instances.owner_id = ?", ownerID).
		Order("workflow_instances.submitted_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list instances for owner: %w", err)
	}
	return list, nil
}

func (r *gormInstanceRepository) ListAssigned(ctx context.Context, assigneeID uuid.UUID) ([]model.WorkflowInstance, error) {
	var list []model.WorkflowInstance
	err := r.detailed(r.db.WithContext(ctx)).
		Where("workflow_instances.assigned_to_id = ?", assigneeID).
		Order("workflow_instances.submitted_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned instances: %w", err)
	}
	return list, nil
}

func (r *gormInstanceRepository) List(ctx context.Context, filter model.InstanceFilter) ([]model.WorkflowInstance, error) {
	query := r.detailed(r.db.WithContext(ctx)).
		Joins("JOIN users ON users.id = workflow_instances.owner_id").
		Joins("JOIN workflow_templates ON workflow_templates.id = workflow_instances.template_id")

	if filter.Status != nil {
		query = query.Where("workflow_instances.status = ?", *filter.Status)
	}
	if filter.Owner != "" {
		query = query.Where("LOWER(users.full_name) LIKE ?", "%"+strings.ToLower(filter.Owner)+"%")
	}
	if filter.Date != nil {
		startOfDay := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		query = query.Where("workflow_instances.submitted_at >= ? AND workflow_instances.submitted_at < ?",
			startOfDay, startOfDay.Add(24*time.Hour))
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where("LOWER(workflow_instances.description) LIKE ? OR LOWER(workflow_templates.title) LIKE ?",
			pattern, pattern)
	}
	if filter.Offset != nil || filter.Limit != nil {
		offset, limit := utils.GetPaginationParams(filter.Offset, filter.Limit)
		query = query.Offset(offset).Limit(limit)
	}

	var list []model.WorkflowInstance
	if err := query.Order("workflow_instances.submitted_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	return list, nil
}

func (r *gormInstanceRepository) detailed(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Template").
		Preload("Owner").
		Preload("AssignedTo").
		Preload("Attachments").
		Preload("Attachments.UploadedBy")
}

type gormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository returns the GORM-backed template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &gormTemplateRepository{db: db}
}

func (r *gormTemplateRepository) GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.WorkflowTemplate, error) {
	var template model.WorkflowTemplate
	err := tx.WithContext(ctx).First(&template, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("workflow template %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch workflow template: %w", err)
	}
	return &template, nil
}

func (r *gormTemplateRepository) Create(ctx context.Context, template *model.WorkflowTemplate) error {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create workflow template: %w", err)
	}
	return nil
}

func (r *gormTemplateRepository) List(ctx context.Context) ([]model.WorkflowTemplate, error) {
	var list []model.WorkflowTemplate
	err := r.db.WithContext(ctx).Preload("CreatedBy").Order("created_at ASC").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow templates: %w", err)
	}
	return list, nil
}
