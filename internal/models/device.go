package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Device is a Web Push subscription registered from a browser or PWA.
// Endpoint plus the two subscription keys are everything webpush needs;
// the endpoint is unique so re-registering the same browser updates the
// row instead of duplicating it. Inactive devices are kept for audit but
// never pushed to.
type Device struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint  string         `gorm:"type:text;not null;uniqueIndex" json:"endpoint"`
	P256dhKey string         `gorm:"type:text;not null" json:"-"`
	AuthKey   string         `gorm:"type:text;not null" json:"-"`
	Platform  string         `gorm:"size:32" json:"platform"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	LastSeen  *time.Time     `json:"last_seen"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Device) TableName() string {
	return "devices"
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
