package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`

	IsEmailVerified        bool       `gorm:"not null;default:false" json:"isEmailVerified"`
	EmailVerificationToken *string    `gorm:"size:64;index" json:"-"`
	EmailVerificationUntil *time.Time `json:"-"`
	ResetPasswordToken     *string    `gorm:"size:64;index" json:"-"`
	ResetPasswordUntil     *time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
