package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Recipe categories. An empty category is allowed.
const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
)

// Difficulty levels. Easy is the default.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// EmbeddingDimensions is the length of Recipe.Embedding.
const EmbeddingDimensions = 64

// StringArray stores an ordered list of strings as a JSON column
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*a = StringArray{}
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported StringArray source %T", value)
	}
	return json.Unmarshal(bytes, a)
}

// NutritionalInfo is optional per-serving nutrition. Nil means not provided.
type NutritionalInfo struct {
	Calories *float64 `json:"calories,omitempty" validate:"omitempty,gte=0"`
	Protein  *float64 `json:"protein,omitempty" validate:"omitempty,gte=0"`
	Fat      *float64 `json:"fat,omitempty" validate:"omitempty,gte=0"`
	Carbs    *float64 `json:"carbs,omitempty" validate:"omitempty,gte=0"`
}

type Recipe struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Title         string          `gorm:"size:200;not null" json:"title"`
	Category      string          `gorm:"size:20;index" json:"category"`
	CookingTime   *int            `json:"cookingTime"`
	Difficulty    string          `gorm:"size:10;not null;default:easy" json:"difficulty"`
	Ingredients   StringArray     `gorm:"type:jsonb;not null" json:"ingredients"`
	Instructions  StringArray     `gorm:"type:jsonb;not null" json:"instructions"`
	ImageURL      string          `gorm:"size:500" json:"imageUrl"`
	ThumbURL      string          `gorm:"size:500" json:"thumbUrl"`
	ImageBlurHash string          `gorm:"size:64" json:"imageBlurHash"`
	Nutrition     NutritionalInfo `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutritionalInfo"`
	AvgRating     float64         `gorm:"not null;default:0;index" json:"avgRating"`

	// OwnerID is nil for seeded recipes.
	OwnerID   *uuid.UUID       `gorm:"type:uuid;index" json:"ownerId"`
	Embedding *pgvector.Vector `gorm:"type:vector(64)" json:"-"`

	Ratings   []RecipeRating   `gorm:"foreignKey:RecipeID" json:"-"`
	Favorites []RecipeFavorite `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Difficulty == "" {
		r.Difficulty = DifficultyEasy
	}
	if r.Ingredients == nil {
		r.Ingredients = StringArray{}
	}
	if r.Instructions == nil {
		r.Instructions = StringArray{}
	}
	return nil
}

// IsOwnedBy reports whether userID owns the recipe
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.OwnerID != nil && *r.OwnerID == userID
}

// RecipeRating is one entry of a recipe's rating map, keyed by user
type RecipeRating struct {
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipeId"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"userId"`
	Value     int       `gorm:"not null;check:value >= 1 AND value <= 5" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (RecipeRating) TableName() string {
	return "recipe_ratings"
}

// RecipeFavorite is one member of a recipe's favorite set
type RecipeFavorite struct {
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipeId"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RecipeFavorite) TableName() string {
	return "recipe_favorites"
}
