package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/reminder"
	"github.com/plateful/backend/internal/types"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTimezone    = errors.New("unknown timezone")
)

// AuthService issues and validates JWTs and owns the registration flow.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string

	// defaultTimezone is stamped onto profiles registered without one.
	defaultTimezone string
}

// Ensure AuthService implements IAuthService
var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, jwtSecret, defaultTimezone string) *AuthService {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &AuthService{
		db:              db,
		jwtSecret:       jwtSecret,
		defaultTimezone: defaultTimezone,
	}
}

// Register creates the user, their profile and a default notification
// preference row in one transaction, then returns the user and a signed
// token. The timezone is checked here, at the write edge; reminder
// evaluation itself never rejects a zone.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error) {
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = s.defaultTimezone
	} else if !reminder.IsValidTimezone(tz) {
		return nil, "", ErrInvalidTimezone
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, "", ErrUserExists
	}
	var existingProfile models.UserProfile
	if err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&existingProfile).Error; err == nil {
		return nil, "", ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		profile := models.UserProfile{
			ID:       uuid.New(),
			UserID:   user.ID,
			Username: req.Username,
			Timezone: tz,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		pref := models.NotificationPreference{
			UserID: user.ID,
		}
		if err := tx.Create(&pref).Error; err != nil {
			return err
		}

		for _, p := range req.DietaryPreferences {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			dp := models.DietaryPreference{
				ID:             uuid.New(),
				UserID:         user.ID,
				PreferenceType: p,
			}
			if err := tx.Create(&dp).Error; err != nil {
				return err
			}
		}

		for _, a := range req.Allergies {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			record := models.Allergen{
				ID:            uuid.New(),
				UserID:        user.ID,
				AllergenName:  a,
				SeverityLevel: 1,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: req.Username})
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	var profile models.UserProfile
	username := ""
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
		username = profile.Username
	}

	token, err := s.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: username})
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// GenerateToken signs the claims, stamping a 24h expiry when none is set.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(24 * time.Hour))
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(time.Now())
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a token string.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetUserByID loads a user by primary key.
func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
