package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/internal/notifications"
	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
)

// Migrate applies the schema for every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&users.User{},
		&model.WorkflowTemplate{},
		&model.WorkflowInstance{},
		&model.FileAttachment{},
		&audit.AuditEntry{},
		&notifications.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
