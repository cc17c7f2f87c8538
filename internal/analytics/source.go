package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
)

// DatabaseSource reads the full instance population with template titles
// preloaded for the performance breakdown.
type DatabaseSource struct {
	db *gorm.DB
}

func NewDatabaseSource(db *gorm.DB) *DatabaseSource {
	return &DatabaseSource{db: db}
}

func (s *DatabaseSource) AllInstances(ctx context.Context) ([]model.WorkflowInstance, error) {
	var instances []model.WorkflowInstance
	err := s.db.WithContext(ctx).Preload("Template").Find(&instances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load instances for analytics: %w", err)
	}
	return instances, nil
}
