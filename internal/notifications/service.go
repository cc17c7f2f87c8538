package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// Service dispatches and serves inbox notifications.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateInTx records a notification inside the caller's transaction so that a
// rolled-back transition leaves no stray inbox entry.
func (s *Service) CreateInTx(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, message string) error {
	n := Notification{RecipientID: recipientID, Message: message}
	if err := tx.WithContext(ctx).Create(&n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListForRecipient returns the recipient's notifications, newest first.
func (s *Service) ListForRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error) {
	var list []Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// MarkRead flags a notification as read. Only the recipient may do so.
func (s *Service) MarkRead(ctx context.Context, actor users.Actor, id uuid.UUID) error {
	var n Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("notification %s not found", id)
		}
		return fmt.Errorf("failed to fetch notification: %w", err)
	}
	if n.RecipientID != actor.ID {
		return apperrors.Authorization("notification %s does not belong to the caller", id)
	}
	if n.Read {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&n).Update("is_read", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
