package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flightwatch/price-tracker/internal/model"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	// MarkRead переводит алерт в прочитанные. changed=false, если он уже был прочитан.
	MarkRead(ctx context.Context, id uuid.UUID) (alert *model.Alert, changed bool, err error)
	Find(ctx context.Context, q *AlertQuery) ([]model.Alert, error)
}

type GormAlertRepository struct {
	db *gorm.DB
}

func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

func (r *GormAlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *GormAlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	var a model.Alert
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAlertRepository) MarkRead(ctx context.Context, id uuid.UUID) (*model.Alert, bool, error) {
	var (
		a       model.Alert
		changed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			return err
		}
		if a.IsRead {
			return nil
		}
		if err := tx.Model(&model.Alert{}).
			Where("id = ?", id).
			UpdateColumn("is_read", true).
			Error; err != nil {
			return err
		}
		a.IsRead = true
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &a, changed, nil
}

func (r *GormAlertRepository) Find(ctx context.Context, q *AlertQuery) ([]model.Alert, error) {
	if q == nil {
		q = NewAlertQuery()
	}
	alerts := []model.Alert{}
	if err := q.Build(r.db.WithContext(ctx)).Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}
