package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/reminder"
	"github.com/plateful/backend/internal/types"
)

var (
	ErrMinutesOutOfRange = errors.New("reminder time must be between 0 and 1439 minutes")
	ErrInvalidInterval   = errors.New("water reminder interval must not be negative")
)

// PreferenceService persists notification preferences and devices, and feeds
// the reminder pipeline its per-user snapshots. Minute fields are validated
// here at the write edge, so reads can trust the stored range.
type PreferenceService struct {
	db *gorm.DB
}

// Ensure PreferenceService implements IPreferenceService
var _ IPreferenceService = (*PreferenceService)(nil)

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// GetPreferences returns the user's preference row, creating the default one
// for accounts that predate notification preferences.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := s.db.WithContext(ctx).
		Where(models.NotificationPreference{UserID: userID}).
		Attrs(models.NotificationPreference{
			ID:                         uuid.New(),
			MealRemindersEnabled:       true,
			WaterReminderIntervalHours: 2,
		}).
		FirstOrCreate(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func validMinutes(m *int) bool {
	return m == nil || (*m >= 0 && *m <= 1439)
}

// UpdatePreferences replaces the user's reminder schedule. Every minute
// field must be nil or within [0,1439]; nil clears the stored value so the
// engine's defaults apply again.
func (s *PreferenceService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdateNotificationPreferencesRequest) (*models.NotificationPreference, error) {
	for _, m := range []*int{
		req.BreakfastTimeMinutes,
		req.LunchTimeMinutes,
		req.DinnerTimeMinutes,
		req.WaterReminderTimeMinutes,
		req.SleepReminderTimeMinutes,
	} {
		if !validMinutes(m) {
			return nil, ErrMinutesOutOfRange
		}
	}
	if req.WaterReminderIntervalHours < 0 {
		return nil, ErrInvalidInterval
	}

	pref, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	pref.MealRemindersEnabled = req.MealRemindersEnabled
	pref.WaterRemindersEnabled = req.WaterRemindersEnabled
	pref.SleepRemindersEnabled = req.SleepRemindersEnabled
	pref.BreakfastTimeMinutes = req.BreakfastTimeMinutes
	pref.LunchTimeMinutes = req.LunchTimeMinutes
	pref.DinnerTimeMinutes = req.DinnerTimeMinutes
	pref.WaterReminderTimeMinutes = req.WaterReminderTimeMinutes
	pref.SleepReminderTimeMinutes = req.SleepReminderTimeMinutes
	pref.WaterReminderIntervalHours = req.WaterReminderIntervalHours

	// Save writes nil pointers back as NULL, which is exactly the "clear
	// this field" semantics the PUT contract promises.
	if err := s.db.WithContext(ctx).Save(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}

type snapshotRow struct {
	UserID                     uuid.UUID
	Timezone                   string
	MealRemindersEnabled       bool
	WaterRemindersEnabled      bool
	SleepRemindersEnabled      bool
	BreakfastTimeMinutes       *int
	LunchTimeMinutes           *int
	DinnerTimeMinutes          *int
	SleepReminderTimeMinutes   *int
	WaterReminderTimeMinutes   *int
	WaterReminderIntervalHours int
	LastWaterReminderAt        *time.Time
}

// ListReminderSnapshots joins preferences with profile timezones into the
// read-only snapshots the evaluator consumes. Soft-deleted users and
// profiles drop out of the join; a profile with an empty timezone comes
// through as-is and degrades to UTC downstream.
func (s *PreferenceService) ListReminderSnapshots(ctx context.Context) ([]reminder.Snapshot, error) {
	var rows []snapshotRow
	err := s.db.WithContext(ctx).
		Table("notification_preferences").
		Select(`notification_preferences.user_id,
			user_profiles.timezone,
			notification_preferences.meal_reminders_enabled,
			notification_preferences.water_reminders_enabled,
			notification_preferences.sleep_reminders_enabled,
			notification_preferences.breakfast_time_minutes,
			notification_preferences.lunch_time_minutes,
			notification_preferences.dinner_time_minutes,
			notification_preferences.sleep_reminder_time_minutes,
			notification_preferences.water_reminder_time_minutes,
			notification_preferences.water_reminder_interval_hours,
			notification_preferences.last_water_reminder_at`).
		Joins(`JOIN user_profiles ON user_profiles.user_id = notification_preferences.user_id
			AND user_profiles.deleted_at IS NULL`).
		Where("notification_preferences.deleted_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	snaps := make([]reminder.Snapshot, 0, len(rows))
	for _, r := range rows {
		snaps = append(snaps, reminder.Snapshot{
			UserID:                     r.UserID.String(),
			Timezone:                   r.Timezone,
			MealRemindersEnabled:       r.MealRemindersEnabled,
			WaterRemindersEnabled:      r.WaterRemindersEnabled,
			SleepRemindersEnabled:      r.SleepRemindersEnabled,
			BreakfastTimeMinutes:       r.BreakfastTimeMinutes,
			LunchTimeMinutes:           r.LunchTimeMinutes,
			DinnerTimeMinutes:          r.DinnerTimeMinutes,
			SleepReminderTimeMinutes:   r.SleepReminderTimeMinutes,
			WaterReminderTimeMinutes:   r.WaterReminderTimeMinutes,
			WaterReminderIntervalHours: r.WaterReminderIntervalHours,
			LastWaterReminderAt:        r.LastWaterReminderAt,
		})
	}
	return snaps, nil
}

// UpdateLastWaterReminder records the send instant the interval policy
// measures from.
func (s *PreferenceService) UpdateLastWaterReminder(ctx context.Context, userID uuid.UUID, sentAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.NotificationPreference{}).
		Where("user_id = ?", userID).
		Update("last_water_reminder_at", sentAt.UTC()).Error
}

// RegisterDevice stores a web-push subscription. Re-registering an endpoint
// updates the existing row, so browser refreshes do not pile up duplicates.
func (s *PreferenceService) RegisterDevice(ctx context.Context, userID uuid.UUID, req *types.RegisterDeviceRequest) (*models.Device, error) {
	now := time.Now().UTC()

	var device models.Device
	err := s.db.WithContext(ctx).Where("endpoint = ?", req.Endpoint).First(&device).Error
	switch {
	case err == nil:
		device.UserID = userID
		device.P256dhKey = req.P256dhKey
		device.AuthKey = req.AuthKey
		device.Platform = req.Platform
		device.Active = true
		device.LastSeen = &now
		if err := s.db.WithContext(ctx).Save(&device).Error; err != nil {
			return nil, err
		}
		return &device, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		device = models.Device{
			ID:        uuid.New(),
			UserID:    userID,
			Endpoint:  req.Endpoint,
			P256dhKey: req.P256dhKey,
			AuthKey:   req.AuthKey,
			Platform:  req.Platform,
			Active:    true,
			LastSeen:  &now,
		}
		if err := s.db.WithContext(ctx).Create(&device).Error; err != nil {
			return nil, err
		}
		return &device, nil
	default:
		return nil, err
	}
}

// RemoveDevice soft-deletes one of the user's devices.
func (s *PreferenceService) RemoveDevice(ctx context.Context, userID, deviceID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", deviceID, userID).
		Delete(&models.Device{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActiveDevices returns the devices push delivery should target.
func (s *PreferenceService) ListActiveDevices(ctx context.Context, userID uuid.UUID) ([]models.Device, error) {
	var devices []models.Device
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Find(&devices).Error
	return devices, err
}

// DeactivateDevice marks a subscription dead. Push delivery calls this when
// the endpoint returns 404 or 410.
func (s *PreferenceService) DeactivateDevice(ctx context.Context, deviceID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", deviceID).
		Update("active", false).Error
}

// AppendLog records one delivery attempt.
func (s *PreferenceService) AppendLog(ctx context.Context, entry *models.NotificationLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// ListHistory returns the user's most recent delivery log entries.
func (s *PreferenceService) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	var logs []models.NotificationLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
