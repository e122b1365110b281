package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// price_records: append-only журнал наблюдений цены.
type PriceRecord struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	FlightSearchID uuid.UUID `gorm:"type:uuid;not null;index:idx_price_records_search_recorded,priority:1;uniqueIndex:idx_price_records_search_seq,priority:1"`

	// Seq: порядковый номер записи внутри поиска, разрывает ничьи по recorded_at.
	Seq int64 `gorm:"not null;default:0;uniqueIndex:idx_price_records_search_seq,priority:2"`

	// Цена в минорных единицах валюты (центы).
	Price    int64  `gorm:"not null"`
	Currency string `gorm:"type:char(3);not null"`
	Provider string `gorm:"type:varchar(64);not null"`

	RecordedAt time.Time `gorm:"not null;index:idx_price_records_search_recorded,priority:2,sort:desc"`

	// Сырые данные провайдера (перевозчик, пересадки и т.п.), ядро их не разбирает.
	Details datatypes.JSON

	FlightSearch *FlightSearch `gorm:"foreignKey:FlightSearchID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (p *PriceRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
