package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flightwatch/price-tracker/internal/model"
)

// newestFirst: при равном recorded_at позже вставленная запись идёт первой.
const newestFirst = "recorded_at DESC, seq DESC"

type PriceRecordRepository interface {
	// Create присваивает record.Seq следующий номер внутри поиска.
	// Для несуществующего поиска возвращает gorm.ErrRecordNotFound.
	Create(ctx context.Context, record *model.PriceRecord) error
	// ListBySearch возвращает записи от новых к старым; limit < 0: без ограничения.
	ListBySearch(ctx context.Context, searchID uuid.UUID, limit int) ([]model.PriceRecord, error)
	// Latest возвращает самую свежую запись или gorm.ErrRecordNotFound.
	Latest(ctx context.Context, searchID uuid.UUID) (*model.PriceRecord, error)
}

type GormPriceRecordRepository struct {
	db *gorm.DB
}

func NewGormPriceRecordRepository(db *gorm.DB) *GormPriceRecordRepository {
	return &GormPriceRecordRepository{db: db}
}

func (r *GormPriceRecordRepository) Create(ctx context.Context, record *model.PriceRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Строка поиска под блокировкой сериализует вставки в один поиск.
		var search model.FlightSearch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&search, "id = ?", record.FlightSearchID).Error; err != nil {
			return err
		}

		var last int64
		if err := tx.Model(&model.PriceRecord{}).
			Select("COALESCE(MAX(seq), 0)").
			Where("flight_search_id = ?", record.FlightSearchID).
			Row().Scan(&last); err != nil {
			return err
		}
		record.Seq = last + 1

		return tx.Create(record).Error
	})
}

func (r *GormPriceRecordRepository) ListBySearch(ctx context.Context, searchID uuid.UUID, limit int) ([]model.PriceRecord, error) {
	q := r.db.WithContext(ctx).
		Where("flight_search_id = ?", searchID).
		Order(newestFirst)
	if limit >= 0 {
		q = q.Limit(limit)
	}

	records := []model.PriceRecord{}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *GormPriceRecordRepository) Latest(ctx context.Context, searchID uuid.UUID) (*model.PriceRecord, error) {
	var rec model.PriceRecord
	err := r.db.WithContext(ctx).
		Where("flight_search_id = ?", searchID).
		Order(newestFirst).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
