package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLog records one delivery attempt per user, kind and channel.
// History endpoints page over it newest-first, and the ops CLI reads it when
// diagnosing missed reminders. Rows are append-only.
type NotificationLog struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_notification_logs_user_sent" json:"user_id"`
	Kind    string    `gorm:"size:16;not null" json:"kind"`
	Channel string    `gorm:"size:16;not null" json:"channel"`
	Status  string    `gorm:"size:16;not null" json:"status"`
	Detail  string    `gorm:"type:text" json:"detail,omitempty"`
	SentAt  time.Time `gorm:"not null;index:idx_notification_logs_user_sent" json:"sent_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
