package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit action kinds recorded by the system.
const (
	ActionSystemStartup     = "SYSTEM_STARTUP"
	ActionUserRegister      = "USER_REGISTER"
	ActionUserLogin         = "USER_LOGIN"
	ActionUserCreated       = "USER_CREATED"
	ActionUserUpdated       = "USER_UPDATED"
	ActionUserDeleted       = "USER_DELETED"
	ActionInstanceSubmitted = "INSTANCE_SUBMITTED"
	ActionAssignTask        = "ASSIGN_TASK"
	ActionUploadFile        = "UPLOAD_FILE"
)

// AuditEntry is one immutable record of a mutating action. Entries are
// append-only: never updated, never deleted. ActorRole is a snapshot of the
// actor's role at the time of the action and is not re-derived later.
type AuditEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	ActorID   *uuid.UUID `gorm:"type:uuid;column:actor_id;index" json:"actorId,omitempty"`
	ActorName string     `gorm:"type:varchar(255);column:actor_name;not null" json:"actorName"`
	ActorRole string     `gorm:"type:varchar(20);column:actor_role;not null" json:"actorRole"`
	Action    string     `gorm:"type:varchar(50);column:action;not null;index" json:"action"`
	Details   string     `gorm:"type:text;column:details" json:"details"`
	Timestamp time.Time  `gorm:"type:timestamptz;column:timestamp;not null;index" json:"timestamp"`
}

func (e *AuditEntry) TableName() string {
	return "audit_entries"
}

// BeforeCreate is a GORM hook that assigns an ID when none is set.
func (e *AuditEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewRandom()
	}
	return
}

// Entry is the write-side payload for the recorder. ActorID may be nil for
// system-originated actions.
type Entry struct {
	ActorID   *uuid.UUID
	ActorName string
	ActorRole string
	Action    string
	Details   string
}
