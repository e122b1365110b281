package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store выдаёт репозитории поверх одного *gorm.DB. Внутри Tx все они
// работают в одной транзакции.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Tx выполняет fn в транзакции. Ошибка fn откатывает все записи.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Users() UserRepository {
	return NewGormUserRepository(s.db)
}

func (s *Store) Searches() FlightSearchRepository {
	return NewGormFlightSearchRepository(s.db)
}

func (s *Store) Prices() PriceRecordRepository {
	return NewGormPriceRecordRepository(s.db)
}

func (s *Store) Alerts() AlertRepository {
	return NewGormAlertRepository(s.db)
}
