package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"recipeId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Text      string    `gorm:"type:text;not null" json:"text"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// All returns every model managed by the application, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Recipe{},
		&RecipeRating{},
		&RecipeFavorite{},
		&Comment{},
	}
}
