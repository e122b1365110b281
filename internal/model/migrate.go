package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей трекера цен.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&FlightSearch{},
		&PriceRecord{},
		&Alert{},
	)
}
