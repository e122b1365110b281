package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// flight_searches: маршрут, цену которого отслеживает пользователь.
type FlightSearch struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	OriginCity      string `gorm:"type:varchar(128);not null"`
	DestinationCity string `gorm:"type:varchar(128);not null"`

	DepartureDate time.Time `gorm:"not null;index"`
	// nil: перелёт в одну сторону.
	ReturnDate *time.Time

	// false: мониторинг на паузе (мягкое удаление).
	IsActive bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (s *FlightSearch) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsOneWay: поиск без обратного рейса.
func (s *FlightSearch) IsOneWay() bool {
	return s.ReturnDate == nil
}
