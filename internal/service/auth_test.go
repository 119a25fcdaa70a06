package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/testhelpers"
	"github.com/plateful/backend/internal/types"
)

func registerRequest(email, username string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
		Username: username,
	}
}

func TestRegisterCreatesProfileAndDefaults(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "UTC")

	req := registerRequest("t@example.com", "tester")
	req.Timezone = "America/New_York"
	req.DietaryPreferences = []string{"vegetarian"}
	req.Allergies = []string{"peanuts"}

	user, token, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "tester", profile.Username)
	assert.Equal(t, "America/New_York", profile.Timezone)

	// Registration seeds a preference row so the scheduler sees the user
	// immediately, with meal reminders on and no times configured.
	var prefs models.NotificationPreference
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&prefs).Error)
	assert.True(t, prefs.MealRemindersEnabled)
	assert.False(t, prefs.WaterRemindersEnabled)
	assert.Nil(t, prefs.BreakfastTimeMinutes)

	var dietary []models.DietaryPreference
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&dietary).Error)
	require.Len(t, dietary, 1)
	assert.Equal(t, "vegetarian", dietary[0].PreferenceType)

	var allergens []models.Allergen
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&allergens).Error)
	require.Len(t, allergens, 1)
	assert.Equal(t, "peanuts", allergens[0].AllergenName)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "tester", claims.Username)
}

func TestRegisterDefaultsTimezone(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "Europe/Berlin")

	user, _, err := svc.Register(context.Background(), registerRequest("tz@example.com", "tzuser"))
	require.NoError(t, err)

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Europe/Berlin", profile.Timezone)
}

func TestRegisterRejectsUnknownTimezone(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "UTC")

	req := registerRequest("bad@example.com", "baduser")
	req.Timezone = "Mars/Olympus_Mons"

	_, _, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidTimezone)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "UTC")

	_, _, err := svc.Register(context.Background(), registerRequest("dup@example.com", "first"))
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), registerRequest("dup@example.com", "second"))
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "UTC")

	_, _, err := svc.Register(context.Background(), registerRequest("a@example.com", "taken"))
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), registerRequest("b@example.com", "taken"))
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "UTC")

	registered, _, err := svc.Register(context.Background(), registerRequest("login@example.com", "login"))
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "login", claims.Username)
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "UTC")

	_, _, err := svc.Register(context.Background(), registerRequest("wrong@example.com", "wrong"))
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "wrong@example.com", "not-the-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	svc := service.NewAuthService(db, "test-secret", "UTC")

	_, token, err := svc.Register(context.Background(), registerRequest("sig@example.com", "sig"))
	require.NoError(t, err)

	other := service.NewAuthService(db, "different-secret", "UTC")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
