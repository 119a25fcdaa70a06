package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// MealSuggestion is an LLM-generated meal saved for a user. The embedding
// column backs pgvector similarity search so near-duplicate suggestions can
// be surfaced instead of regenerated.
type MealSuggestion struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	MealKind    string           `gorm:"size:16;not null" json:"meal_kind"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Calories    float64          `gorm:"type:float" json:"calories"`
	Protein     float64          `gorm:"type:float" json:"protein"`
	Carbs       float64          `gorm:"type:float" json:"carbs"`
	Fat         float64          `gorm:"type:float" json:"fat"`
	Embedding   pgvector.Vector  `gorm:"type:vector(1536)" json:"-"`
}

func (MealSuggestion) TableName() string {
	return "meal_suggestions"
}

func (m *MealSuggestion) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
