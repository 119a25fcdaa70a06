package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/reminder"
	"github.com/plateful/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error)
	GetDietaryProfile(ctx context.Context, userID uuid.UUID) (prefs []string, allergens []string, err error)
}

// IPreferenceService is the persistence seam between user-facing preference
// writes and the reminder pipeline's reads.
type IPreferenceService interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdateNotificationPreferencesRequest) (*models.NotificationPreference, error)
	ListReminderSnapshots(ctx context.Context) ([]reminder.Snapshot, error)
	UpdateLastWaterReminder(ctx context.Context, userID uuid.UUID, sentAt time.Time) error

	RegisterDevice(ctx context.Context, userID uuid.UUID, req *types.RegisterDeviceRequest) (*models.Device, error)
	RemoveDevice(ctx context.Context, userID, deviceID uuid.UUID) error
	ListActiveDevices(ctx context.Context, userID uuid.UUID) ([]models.Device, error)
	DeactivateDevice(ctx context.Context, deviceID uuid.UUID) error

	AppendLog(ctx context.Context, entry *models.NotificationLog) error
	ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.NotificationLog, error)
}

// ISuggestionService defines the interface for meal suggestion operations
type ISuggestionService interface {
	Generate(ctx context.Context, userID uuid.UUID, req *types.SuggestMealRequest) (*models.MealSuggestion, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.MealSuggestion, error)
	Similar(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.MealSuggestion, error)
}

// LLMClient generates meal payloads. Implementations return the raw JSON
// document produced by the model; the suggestion service owns parsing.
type LLMClient interface {
	GenerateMeal(ctx context.Context, query, kind string, dietaryPrefs, allergens []string) (string, error)
}

// IEmbeddingService defines the interface for embedding generation
type IEmbeddingService interface {
	GenerateEmbedding(text string) (pgvector.Vector, error)
}

// IStorageService defines the interface for avatar storage operations
type IStorageService interface {
	UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error)
	DeleteAvatar(ctx context.Context, avatarURL string) error
}

// IEmailService defines the interface for email operations
type IEmailService interface {
	SendEmail(to, subject, body string) error
	SendReminderEmail(user *models.User, kind, message string) error
	SendWelcomeEmail(user *models.User) error
}
