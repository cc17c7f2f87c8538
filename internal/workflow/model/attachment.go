package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/enterprise-workflow/workflowd/internal/users"
)

// FileAttachment links an uploaded file to a workflow instance. The row holds
// metadata and an opaque storage key; the bytes live in the external file
// store. Attachments are never mutated and are removed only when the owning
// instance is deleted.
type FileAttachment struct {
	BaseModel
	InstanceID   uuid.UUID   `gorm:"type:uuid;column:instance_id;not null;index" json:"instanceId"`
	FileName     string      `gorm:"type:varchar(255);column:file_name;not null" json:"fileName"`
	FileType     string      `gorm:"type:varchar(100);column:file_type;not null" json:"fileType"`
	FileSize     int64       `gorm:"column:file_size;not null" json:"fileSize"`
	StorageKey   string      `gorm:"type:varchar(255);column:storage_key;not null" json:"-"`
	UploadedByID uuid.UUID   `gorm:"type:uuid;column:uploaded_by_id;not null" json:"uploadedById"`
	UploadedBy   *users.User `gorm:"foreignKey:UploadedByID" json:"-"`
}

func (fa *FileAttachment) TableName() string {
	return "file_attachments"
}

// AttachmentResponse is the API shape for an attachment
type AttachmentResponse struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ToAttachmentResponse maps an attachment row to its API shape.
func ToAttachmentResponse(fa *FileAttachment) AttachmentResponse {
	resp := AttachmentResponse{
		ID:         fa.ID,
		FileName:   fa.FileName,
		FileType:   fa.FileType,
		FileSize:   fa.FileSize,
		UploadedAt: fa.CreatedAt,
	}
	if fa.UploadedBy != nil {
		resp.UploadedBy = fa.UploadedBy.FullName
	}
	return resp
}
