package types

// RegisterRequest is the signup payload. Timezone is optional; when present
// it must be a known IANA zone, otherwise the account starts in the
// deployment default.
type RegisterRequest struct {
	Name               string   `json:"name" binding:"required"`
	Email              string   `json:"email" binding:"required,email"`
	Password           string   `json:"password" binding:"required,min=8"`
	Username           string   `json:"username" binding:"required"`
	Timezone           string   `json:"timezone"`
	DietaryPreferences []string `json:"dietary_preferences"`
	Allergies          []string `json:"allergies"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateNotificationPreferencesRequest replaces the user's reminder schedule
// wholesale (PUT semantics). Minute fields are minutes since local midnight;
// null or omitted clears the field back to "not configured".
type UpdateNotificationPreferencesRequest struct {
	MealRemindersEnabled       bool `json:"meal_reminders_enabled"`
	WaterRemindersEnabled      bool `json:"water_reminders_enabled"`
	SleepRemindersEnabled      bool `json:"sleep_reminders_enabled"`
	BreakfastTimeMinutes       *int `json:"breakfast_time_minutes"`
	LunchTimeMinutes           *int `json:"lunch_time_minutes"`
	DinnerTimeMinutes          *int `json:"dinner_time_minutes"`
	WaterReminderTimeMinutes   *int `json:"water_reminder_time_minutes"`
	SleepReminderTimeMinutes   *int `json:"sleep_reminder_time_minutes"`
	WaterReminderIntervalHours int  `json:"water_reminder_interval_hours"`
}

// RegisterDeviceRequest subscribes a browser for web push.
type RegisterDeviceRequest struct {
	Endpoint  string `json:"endpoint" binding:"required"`
	P256dhKey string `json:"p256dh_key" binding:"required"`
	AuthKey   string `json:"auth_key" binding:"required"`
	Platform  string `json:"platform"`
}

// SuggestMealRequest asks the LLM for a meal suggestion.
type SuggestMealRequest struct {
	MealKind string `json:"meal_kind" binding:"required,oneof=breakfast lunch dinner snack"`
	Query    string `json:"query"`
}
