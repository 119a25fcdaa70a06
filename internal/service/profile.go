package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/reminder"
	"github.com/plateful/backend/internal/types"
)

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates a user's profile. A timezone patch is validated
// against the tz database before it is stored; every reminder the user has
// configured is interpreted in this zone from the next scheduler pass on.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	if req.Username != "" {
		profile.Username = req.Username
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.ProfilePictureURL != nil {
		profile.ProfilePictureURL = *req.ProfilePictureURL
	}
	if req.Timezone != nil {
		if !reminder.IsValidTimezone(*req.Timezone) {
			return nil, ErrInvalidTimezone
		}
		profile.Timezone = *req.Timezone
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

// GetDietaryProfile returns the user's dietary preference and allergen names
// for suggestion prompts.
func (s *ProfileService) GetDietaryProfile(ctx context.Context, userID uuid.UUID) ([]string, []string, error) {
	var dietary []models.DietaryPreference
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&dietary).Error; err != nil {
		return nil, nil, err
	}

	var allergens []models.Allergen
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&allergens).Error; err != nil {
		return nil, nil, err
	}

	prefs := make([]string, 0, len(dietary))
	for _, d := range dietary {
		name := d.PreferenceType
		if name == "custom" && d.CustomName != "" {
			name = d.CustomName
		}
		prefs = append(prefs, name)
	}

	names := make([]string, 0, len(allergens))
	for _, a := range allergens {
		names = append(names, a.AllergenName)
	}

	return prefs, names, nil
}
