package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
)

// Seed creates the default accounts and workflow templates when they are
// missing, then records the startup in the audit log. Safe to run on every
// boot.
func Seed(ctx context.Context, db *gorm.DB, recorder *audit.Recorder) error {
	slog.Info("seeding default data")

	if _, err := seedUser(ctx, db, "admin", "admin123", "System Administrator", users.RoleAdmin); err != nil {
		return err
	}
	manager, err := seedUser(ctx, db, "manager", "manager123", "Workflow Manager", users.RoleManager)
	if err != nil {
		return err
	}
	if _, err := seedUser(ctx, db, "user", "user123", "Standard User", users.RoleUser); err != nil {
		return err
	}

	templates := []model.WorkflowTemplate{
		{Title: "Project Assignment Request", Description: "Request to be assigned to a new project."},
		{Title: "Training Session Enrollment", Description: "Request enrollment in upcoming technical training."},
		{Title: "Leave Application", Description: "Request for annual or sick leave."},
		{Title: "Grievance Report", Description: "Raise a formal complaint or issue to management."},
	}
	for _, template := range templates {
		if err := seedTemplate(ctx, db, manager, template); err != nil {
			return err
		}
	}

	return recorder.RecordSystem(ctx, audit.ActionSystemStartup, "System initialized and ready.")
}

func seedUser(ctx context.Context, db *gorm.DB, username, password, fullName string, role users.Role) (*users.User, error) {
	var existing users.User
	err := db.WithContext(ctx).First(&existing, "username = ?", username).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up seed user %q: %w", username, err)
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := users.User{
		Username:     username,
		FullName:     fullName,
		Role:         role,
		PasswordHash: hash,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create seed user %q: %w", username, err)
	}
	slog.Info("created default user", "username", username, "role", role)
	return &user, nil
}

func seedTemplate(ctx context.Context, db *gorm.DB, creator *users.User, template model.WorkflowTemplate) error {
	var count int64
	err := db.WithContext(ctx).Model(&model.WorkflowTemplate{}).
		Where("title = ?", template.Title).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to look up seed template %q: %w", template.Title, err)
	}
	if count > 0 {
		return nil
	}

	template.CreatedByID = creator.ID
	if err := db.WithContext(ctx).Create(&template).Error; err != nil {
		return fmt.Errorf("failed to create seed template %q: %w", template.Title, err)
	}
	slog.Info("created default workflow template", "title", template.Title)
	return nil
}
