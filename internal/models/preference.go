package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationPreference stores a user's reminder schedule. All *_minutes
// columns are minutes since local midnight in the user's profile timezone,
// in [0, 1439]; NULL means "not configured" and the reminder engine applies
// its defaults. Water reminders run under one of two policies: a fixed
// clock time, or an interval measured in whole hours since the last send.
type NotificationPreference struct {
	ID                         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	MealRemindersEnabled       bool           `gorm:"not null;default:true" json:"meal_reminders_enabled"`
	WaterRemindersEnabled      bool           `gorm:"not null;default:false" json:"water_reminders_enabled"`
	SleepRemindersEnabled      bool           `gorm:"not null;default:false" json:"sleep_reminders_enabled"`
	BreakfastTimeMinutes       *int           `gorm:"check:breakfast_time_minutes >= 0 AND breakfast_time_minutes <= 1439" json:"breakfast_time_minutes"`
	LunchTimeMinutes           *int           `gorm:"check:lunch_time_minutes >= 0 AND lunch_time_minutes <= 1439" json:"lunch_time_minutes"`
	DinnerTimeMinutes          *int           `gorm:"check:dinner_time_minutes >= 0 AND dinner_time_minutes <= 1439" json:"dinner_time_minutes"`
	WaterReminderTimeMinutes   *int           `gorm:"check:water_reminder_time_minutes >= 0 AND water_reminder_time_minutes <= 1439" json:"water_reminder_time_minutes"`
	SleepReminderTimeMinutes   *int           `gorm:"check:sleep_reminder_time_minutes >= 0 AND sleep_reminder_time_minutes <= 1439" json:"sleep_reminder_time_minutes"`
	WaterReminderIntervalHours int            `gorm:"not null;default:2" json:"water_reminder_interval_hours"`
	LastWaterReminderAt        *time.Time     `json:"last_water_reminder_at"`
	CreatedAt                  time.Time      `json:"created_at"`
	UpdatedAt                  time.Time      `json:"updated_at"`
	DeletedAt                  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

func (p *NotificationPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
