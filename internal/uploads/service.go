package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/internal/audit"
	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/internal/workflow/model"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

const saveMaxRetries = 3

// AttachmentService coordinates attachment uploads: bytes go to the storage
// driver, metadata and the audit entry are written in one database
// transaction. A failed transaction deletes the already stored bytes so the
// store never holds orphans the database does not know about.
type AttachmentService struct {
	db            *gorm.DB
	driver        StorageDriver
	recorder      *audit.Recorder
	maxBytes      int64
	retryInterval time.Duration
}

func NewAttachmentService(db *gorm.DB, driver StorageDriver, recorder *audit.Recorder, maxBytes int64) *AttachmentService {
	return &AttachmentService{
		db:            db,
		driver:        driver,
		recorder:      recorder,
		maxBytes:      maxBytes,
		retryInterval: backoff.DefaultInitialInterval,
	}
}

// Attach stores a file against a workflow instance. Only the instance owner
// may attach, and only while the instance is not terminal.
func (s *AttachmentService) Attach(ctx context.Context, actor users.Actor, instanceID uuid.UUID, fileName string, reader io.ReadSeeker, size int64, mimeType string) (*model.AttachmentResponse, error) {
	if size > s.maxBytes {
		return nil, apperrors.PayloadTooLarge("file exceeds the maximum upload size of %d bytes", s.maxBytes)
	}
	if fileName == "" {
		return nil, apperrors.Validation("file name is required")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	var instance model.WorkflowInstance
	if err := s.db.WithContext(ctx).First(&instance, "id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("instance %s not found", instanceID)
		}
		return nil, fmt.Errorf("failed to fetch workflow instance: %w", err)
	}
	if instance.OwnerID != actor.ID {
		return nil, apperrors.Authorization("only the owner may attach files to instance %s", instanceID)
	}
	if instance.Status.Terminal() {
		return nil, apperrors.InvalidState("instance %s is already %s", instanceID, instance.Status)
	}

	key := uuid.New().String() + filepath.Ext(fileName)
	if err := s.saveWithRetry(ctx, key, reader, mimeType); err != nil {
		return nil, err
	}

	attachment := model.FileAttachment{
		InstanceID:   instanceID,
		FileName:     fileName,
		FileType:     mimeType,
		FileSize:     size,
		StorageKey:   key,
		UploadedByID: actor.ID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attachment).Error; err != nil {
			return fmt.Errorf("failed to create attachment record: %w", err)
		}
		actorID := actor.ID
		return s.recorder.RecordInTx(ctx, tx, audit.Entry{
			ActorID:   &actorID,
			ActorName: actor.FullName,
			ActorRole: string(actor.Role),
			Action:    audit.ActionUploadFile,
			Details:   fmt.Sprintf("Uploaded file %q to Instance %s", fileName, instanceID),
		})
	})
	if err != nil {
		if delErr := s.driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned attachment", "key", key, "error", delErr)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "attachment uploaded", "instance_id", instanceID, "key", key, "size", size)
	attachment.UploadedBy = &users.User{FullName: actor.FullName}
	resp := model.ToAttachmentResponse(&attachment)
	return &resp, nil
}

// Resolve streams an attachment back. The instance owner and reviewers may
// download.
func (s *AttachmentService) Resolve(ctx context.Context, actor users.Actor, attachmentID uuid.UUID) (io.ReadCloser, string, string, error) {
	var attachment model.FileAttachment
	if err := s.db.WithContext(ctx).First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", apperrors.NotFound("attachment %s not found", attachmentID)
		}
		return nil, "", "", fmt.Errorf("failed to fetch attachment: %w", err)
	}

	var instance model.WorkflowInstance
	if err := s.db.WithContext(ctx).First(&instance, "id = ?", attachment.InstanceID).Error; err != nil {
		return nil, "", "", fmt.Errorf("failed to fetch workflow instance: %w", err)
	}
	if instance.OwnerID != actor.ID && !actor.Role.IsReviewer() {
		return nil, "", "", apperrors.Authorization("caller may not download attachment %s", attachmentID)
	}

	reader, contentType, err := s.driver.Get(ctx, attachment.StorageKey)
	if err != nil {
		return nil, "", "", apperrors.StorageUnavailable(err, "failed to read attachment %s", attachmentID)
	}
	return reader, contentType, attachment.FileName, nil
}

// ListForInstance returns the attachment metadata for one instance. Access
// follows the same rule as instance reads.
func (s *AttachmentService) ListForInstance(ctx context.Context, actor users.Actor, instanceID uuid.UUID) ([]model.AttachmentResponse, error) {
	var instance model.WorkflowInstance
	if err := s.db.WithContext(ctx).First(&instance, "id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("instance %s not found", instanceID)
		}
		return nil, fmt.Errorf("failed to fetch workflow instance: %w", err)
	}
	if instance.OwnerID != actor.ID && !actor.Role.IsReviewer() {
		return nil, apperrors.Authorization("caller may not list attachments of instance %s", instanceID)
	}

	var attachments []model.FileAttachment
	err := s.db.WithContext(ctx).
		Preload("UploadedBy").
		Where("instance_id = ?", instanceID).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	out := make([]model.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, model.ToAttachmentResponse(&attachments[i]))
	}
	return out, nil
}

// saveWithRetry pushes the bytes to the driver with bounded exponential
// backoff, rewinding the reader before each attempt.
func (s *AttachmentService) saveWithRetry(ctx context.Context, key string, reader io.ReadSeeker, mimeType string) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, saveMaxRetries), ctx)
	err := backoff.Retry(func() error {
		if _, err := reader.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(err)
		}
		return s.driver.Save(ctx, key, reader, mimeType)
	}, policy)
	if err != nil {
		return apperrors.StorageUnavailable(err, "failed to store attachment")
	}
	return nil
}
