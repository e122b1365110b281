package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тип ценового события.
type AlertType string

const (
	AlertTypePriceDrop          AlertType = "price_drop"
	AlertTypePriceIncrease      AlertType = "price_increase"
	AlertTypePriceTargetReached AlertType = "price_target_reached"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertTypePriceDrop, AlertTypePriceIncrease, AlertTypePriceTargetReached:
		return true
	default:
		return false
	}
}

// alerts
type Alert struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	FlightSearchID uuid.UUID `gorm:"type:uuid;not null;index"`

	AlertType AlertType `gorm:"type:varchar(32);not null;index"`

	// nil: нет предыдущей сопоставимой цены.
	OldPrice *int64
	NewPrice int64  `gorm:"not null"`
	Currency string `gorm:"type:char(3);not null"`

	Message string `gorm:"type:text;not null"`

	// Единственный допустимый переход: false -> true.
	IsRead bool `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	FlightSearch *FlightSearch `gorm:"foreignKey:FlightSearchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
