package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/types"
)

// ErrUnusableSuggestion is returned when the model reply cannot be parsed
// into a meal.
var ErrUnusableSuggestion = errors.New("model returned an unusable suggestion")

// Repeating the same request within this window returns the cached result
// instead of spending another model call.
const suggestionCacheTTL = 10 * time.Minute

// SuggestionService generates and stores meal suggestions.
type SuggestionService struct {
	db        *gorm.DB
	llm       LLMClient
	embedding IEmbeddingService
	profiles  IProfileService
	redis     *redis.Client
}

var _ ISuggestionService = (*SuggestionService)(nil)

// NewSuggestionService creates a new SuggestionService instance. The redis
// client may be nil, which disables the short lived generation cache.
func NewSuggestionService(db *gorm.DB, llm LLMClient, embedding IEmbeddingService, profiles IProfileService, redisClient *redis.Client) *SuggestionService {
	return &SuggestionService{
		db:        db,
		llm:       llm,
		embedding: embedding,
		profiles:  profiles,
		redis:     redisClient,
	}
}

// cachedSuggestion is the redis payload for the last generation per user and
// meal kind.
type cachedSuggestion struct {
	Query      string                `json:"query"`
	Suggestion models.MealSuggestion `json:"suggestion"`
}

func suggestionCacheKey(userID uuid.UUID, kind string) string {
	return fmt.Sprintf("suggestion:last:%s:%s", userID, kind)
}

// Generate asks the model for a meal matching the user's dietary profile and
// persists the result. A repeat of the same query inside the cache window is
// served from redis without another model call.
func (s *SuggestionService) Generate(ctx context.Context, userID uuid.UUID, req *types.SuggestMealRequest) (*models.MealSuggestion, error) {
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, suggestionCacheKey(userID, req.MealKind)).Bytes(); err == nil {
			var cached cachedSuggestion
			if err := json.Unmarshal(data, &cached); err == nil && strings.EqualFold(cached.Query, req.Query) {
				return &cached.Suggestion, nil
			}
		}
	}

	prefs, allergens, err := s.profiles.GetDietaryProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dietary profile: %w", err)
	}

	raw, err := s.llm.GenerateMeal(ctx, req.Query, req.MealKind, prefs, allergens)
	if err != nil {
		return nil, err
	}

	var data MealData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusableSuggestion, err)
	}
	if data.Name == "" {
		return nil, ErrUnusableSuggestion
	}

	embedText := data.Name + " " + data.Description + " " + strings.Join(data.Ingredients, " ")
	vec, err := s.embedding.GenerateEmbedding(embedText)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	suggestion := &models.MealSuggestion{
		ID:          uuid.New(),
		UserID:      userID,
		MealKind:    req.MealKind,
		Name:        data.Name,
		Description: data.Description,
		Ingredients: models.JSONBStringArray(data.Ingredients),
		Calories:    data.Calories,
		Protein:     data.Protein,
		Carbs:       data.Carbs,
		Fat:         data.Fat,
		Embedding:   vec,
	}
	if err := s.db.WithContext(ctx).Create(suggestion).Error; err != nil {
		return nil, err
	}

	if s.redis != nil {
		payload, err := json.Marshal(cachedSuggestion{Query: req.Query, Suggestion: *suggestion})
		if err == nil {
			// A failed cache write only costs a future model call.
			_ = s.redis.Set(ctx, suggestionCacheKey(userID, req.MealKind), payload, suggestionCacheTTL).Err()
		}
	}

	return suggestion, nil
}

// List returns the user's most recent suggestions, newest first.
func (s *SuggestionService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.MealSuggestion, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	var suggestions []models.MealSuggestion
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&suggestions).Error
	if err != nil {
		return nil, err
	}
	return suggestions, nil
}

// Similar finds stored suggestions closest to the query. On PostgreSQL this
// orders by embedding distance; elsewhere it falls back to keyword search.
func (s *SuggestionService) Similar(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.MealSuggestion, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}

	dbQuery := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if s.db.Dialector.Name() == "postgres" {
		vec, err := s.embedding.GenerateEmbedding(query)
		if err != nil {
			return nil, err
		}
		dbQuery = dbQuery.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
		})
	} else {
		like := "%" + strings.ToLower(query) + "%"
		dbQuery = dbQuery.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var suggestions []models.MealSuggestion
	if err := dbQuery.Limit(limit).Find(&suggestions).Error; err != nil {
		return nil, err
	}
	return suggestions, nil
}
