package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email string `gorm:"type:varchar(320);not null;uniqueIndex"`

	// Внешний контакт для уведомлений, может отсутствовать.
	TelegramChatID *int64 `gorm:"index"`

	NotificationEnabled bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
