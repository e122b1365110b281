package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

// AlertService: создание алертов, отметка о прочтении и выборки.
type AlertService struct {
	alertRepo repository.AlertRepository
	log       logger.Logger
	metrics   *metrics.Metrics
}

func NewAlertService(alertRepo repository.AlertRepository, log logger.Logger, m *metrics.Metrics) *AlertService {
	return &AlertService{alertRepo: alertRepo, log: log, metrics: m}
}

type CreateAlertInput struct {
	FlightSearchID uuid.UUID
	AlertType      model.AlertType
	OldPrice       *int64
	NewPrice       int64
	Currency       string
	Message        string
}

// CreateAlert сохраняет непрочитанный алерт. Ссылку на поиск держит внешний
// ключ, поэтому отсутствующий поиск приходит как ErrReferentialViolation.
func (s *AlertService) CreateAlert(ctx context.Context, in CreateAlertInput) (_ *model.Alert, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("create_alert", start, err) }(time.Now())

	alert, err := s.insertAlert(ctx, s.alertRepo, in)
	if err != nil {
		return nil, err
	}
	s.created(alert)
	return alert, nil
}

// insertAlert проверяет вход и пишет алерт через переданный репозиторий.
func (s *AlertService) insertAlert(ctx context.Context, repo repository.AlertRepository, in CreateAlertInput) (*model.Alert, error) {
	const op = "create alert"

	if !in.AlertType.Valid() {
		return nil, invalidArgument(op, "unknown alert type %q", in.AlertType)
	}
	if in.NewPrice < 0 || (in.OldPrice != nil && *in.OldPrice < 0) {
		return nil, invalidArgument(op, "prices must not be negative")
	}
	currency, ok := normalizeCurrency(in.Currency)
	if !ok {
		return nil, invalidArgument(op, "malformed currency code %q", in.Currency)
	}

	alert := &model.Alert{
		FlightSearchID: in.FlightSearchID,
		AlertType:      in.AlertType,
		OldPrice:       in.OldPrice,
		NewPrice:       in.NewPrice,
		Currency:       currency,
		Message:        in.Message,
	}
	if err := repo.Create(ctx, alert); err != nil {
		s.log.Warn("create alert failed", "search_id", in.FlightSearchID, "error", err)
		return nil, storeError(op, err)
	}
	return alert, nil
}

// created вызывается после фиксации алерта.
func (s *AlertService) created(alert *model.Alert) {
	s.metrics.AlertsCreated.WithLabelValues(string(alert.AlertType)).Inc()
	s.log.Info("alert created",
		"alert_id", alert.ID,
		"search_id", alert.FlightSearchID,
		"type", alert.AlertType,
	)
}

// MarkRead идемпотентен: уже прочитанный алерт возвращается как есть.
func (s *AlertService) MarkRead(ctx context.Context, id uuid.UUID) (_ *model.Alert, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("mark_alert_read", start, err) }(time.Now())

	alert, changed, err := s.alertRepo.MarkRead(ctx, id)
	if err != nil {
		return nil, storeError("mark alert read", err)
	}
	if changed {
		s.metrics.AlertsRead.Inc()
		s.log.Debug("alert marked read", "alert_id", id)
	}
	return alert, nil
}

// AlertFilter: заданные условия объединяются через AND. Limit <= 0: без ограничения.
type AlertFilter struct {
	UserID         *uuid.UUID
	FlightSearchID *uuid.UUID
	IsRead         *bool
	Limit          int
	Offset         int
}

// GetAlerts возвращает подходящие алерты от новых к старым.
func (s *AlertService) GetAlerts(ctx context.Context, f AlertFilter) (_ []model.Alert, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("get_alerts", start, err) }(time.Now())

	if f.Limit < 0 || f.Offset < 0 {
		return nil, invalidArgument("get alerts", "limit and offset must not be negative")
	}

	q := repository.NewAlertQuery()
	if f.UserID != nil {
		q.OwnedBy(*f.UserID)
	}
	if f.FlightSearchID != nil {
		q.ForSearch(*f.FlightSearchID)
	}
	if f.IsRead != nil {
		q.WithReadStatus(*f.IsRead)
	}
	q.Page(f.Limit, f.Offset)

	alerts, err := s.alertRepo.Find(ctx, q)
	if err != nil {
		return nil, storeError("get alerts", err)
	}
	return alerts, nil
}
