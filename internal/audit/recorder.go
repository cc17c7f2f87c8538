package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/enterprise-workflow/workflowd/utils"
)

// Recorder appends audit entries. A mutating operation and its audit entry
// are written in one transaction: callers inside a transaction must use
// RecordInTx so a rollback removes both or neither.
type Recorder struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// RecordInTx appends an entry using the caller's transaction.
func (r *Recorder) RecordInTx(ctx context.Context, tx *gorm.DB, entry Entry) error {
	row := AuditEntry{
		ActorID:   entry.ActorID,
		ActorName: entry.ActorName,
		ActorRole: entry.ActorRole,
		Action:    entry.Action,
		Details:   entry.Details,
		Timestamp: r.now(),
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Record appends an entry in its own transaction.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	return r.RecordInTx(ctx, r.db, entry)
}

// RecordSystem appends an entry attributed to the system itself.
func (r *Recorder) RecordSystem(ctx context.Context, action, details string) error {
	return r.Record(ctx, Entry{ActorName: "SYSTEM", ActorRole: "SYSTEM", Action: action, Details: details})
}

// Query returns audit entries ordered by timestamp descending.
func (r *Recorder) Query(ctx context.Context, offset, limit *int) ([]AuditEntry, error) {
	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)

	var entries []AuditEntry
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Offset(finalOffset).
		Limit(finalLimit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	return entries, nil
}
