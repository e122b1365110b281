package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flightwatch/price-tracker/internal/model"
)

type FlightSearchRepository interface {
	Create(ctx context.Context, search *model.FlightSearch) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FlightSearch, error)
	// Update загружает поиск, применяет mutate и сохраняет результат в одной транзакции.
	// Если mutate вернул ошибку, строка не меняется.
	Update(ctx context.Context, id uuid.UUID, mutate func(*model.FlightSearch) error) (*model.FlightSearch, error)
	// ListByUser: все поиски пользователя, опционально с фильтром по is_active.
	ListByUser(ctx context.Context, userID uuid.UUID, isActive *bool) ([]model.FlightSearch, error)
	// ListActiveUpcoming: активные поиски с вылетом не раньше now.
	ListActiveUpcoming(ctx context.Context, now time.Time) ([]model.FlightSearch, error)
}

type GormFlightSearchRepository struct {
	db *gorm.DB
}

func NewGormFlightSearchRepository(db *gorm.DB) *GormFlightSearchRepository {
	return &GormFlightSearchRepository{db: db}
}

func (r *GormFlightSearchRepository) Create(ctx context.Context, search *model.FlightSearch) error {
	return r.db.WithContext(ctx).Create(search).Error
}

func (r *GormFlightSearchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.FlightSearch, error) {
	var s model.FlightSearch
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormFlightSearchRepository) Update(
	ctx context.Context,
	id uuid.UUID,
	mutate func(*model.FlightSearch) error,
) (*model.FlightSearch, error) {
	var s model.FlightSearch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&s, "id = ?", id).Error; err != nil {
			return err
		}
		prev := s.UpdatedAt
		if err := mutate(&s); err != nil {
			return err
		}

		// updated_at строго растёт даже при совпадении часов.
		s.UpdatedAt = tx.NowFunc()
		if !s.UpdatedAt.After(prev) {
			s.UpdatedAt = prev.Add(time.Microsecond)
		}

		update := map[string]any{
			"origin_city":      s.OriginCity,
			"destination_city": s.DestinationCity,
			"departure_date":   s.DepartureDate,
			"return_date":      s.ReturnDate,
			"is_active":        s.IsActive,
			"updated_at":       s.UpdatedAt,
		}
		return tx.Model(&model.FlightSearch{}).
			Where("id = ?", id).
			Updates(update).
			Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormFlightSearchRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	isActive *bool,
) ([]model.FlightSearch, error) {
	q := r.db.WithContext(ctx).
		Model(&model.FlightSearch{}).
		Where("user_id = ?", userID)
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}

	searches := []model.FlightSearch{}
	if err := q.Order("created_at ASC").Find(&searches).Error; err != nil {
		return nil, err
	}
	return searches, nil
}

func (r *GormFlightSearchRepository) ListActiveUpcoming(ctx context.Context, now time.Time) ([]model.FlightSearch, error) {
	searches := []model.FlightSearch{}
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("departure_date >= ?", now).
		Order("departure_date ASC").
		Find(&searches).Error
	if err != nil {
		return nil, err
	}
	return searches, nil
}
