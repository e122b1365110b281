package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flightwatch/price-tracker/internal/model"
)

// alertPredicate: одно условие фильтра поверх соединения alerts ⋈ flight_searches.
type alertPredicate func(*gorm.DB) *gorm.DB

// AlertQuery собирает конъюнкцию типизированных условий.
// Соединение с flight_searches есть всегда, поэтому фильтр по владельцу
// не требует отдельной ветки запроса.
type AlertQuery struct {
	predicates []alertPredicate
	limit      int
	offset     int
}

func NewAlertQuery() *AlertQuery {
	return &AlertQuery{}
}

// OwnedBy оставляет алерты поисков пользователя userID.
func (q *AlertQuery) OwnedBy(userID uuid.UUID) *AlertQuery {
	q.predicates = append(q.predicates, func(db *gorm.DB) *gorm.DB {
		return db.Where("flight_searches.user_id = ?", userID)
	})
	return q
}

func (q *AlertQuery) ForSearch(searchID uuid.UUID) *AlertQuery {
	q.predicates = append(q.predicates, func(db *gorm.DB) *gorm.DB {
		return db.Where("alerts.flight_search_id = ?", searchID)
	})
	return q
}

func (q *AlertQuery) WithReadStatus(isRead bool) *AlertQuery {
	q.predicates = append(q.predicates, func(db *gorm.DB) *gorm.DB {
		return db.Where("alerts.is_read = ?", isRead)
	})
	return q
}

// Page ограничивает выборку; limit <= 0: без ограничения.
func (q *AlertQuery) Page(limit, offset int) *AlertQuery {
	q.limit = limit
	q.offset = offset
	return q
}

// Len: число условий в запросе.
func (q *AlertQuery) Len() int {
	return len(q.predicates)
}

// Build применяет запрос к db. Порядок: created_at по убыванию.
func (q *AlertQuery) Build(db *gorm.DB) *gorm.DB {
	tx := db.Model(&model.Alert{}).
		Select("alerts.*").
		Joins("JOIN flight_searches ON flight_searches.id = alerts.flight_search_id")

	for _, p := range q.predicates {
		tx = p(tx)
	}

	if q.limit > 0 {
		offset := q.offset
		if offset < 0 {
			offset = 0
		}
		tx = tx.Limit(q.limit).Offset(offset)
	}

	return tx.Order("alerts.created_at DESC")
}
