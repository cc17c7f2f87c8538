package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is an inbox record created when an instance transitions or is
// assigned. Only its recipient may mark it read.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;column:id;not null;primaryKey" json:"id"`
	RecipientID uuid.UUID `gorm:"type:uuid;column:recipient_id;not null;index" json:"recipientId"`
	Message     string    `gorm:"type:text;column:message;not null" json:"message"`
	Read        bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
}

func (n *Notification) TableName() string {
	return "notifications"
}

// BeforeCreate is a GORM hook that assigns an ID when none is set.
func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewRandom()
	}
	return
}
