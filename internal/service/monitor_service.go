package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/pricing"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

// MonitorService сравнивает новое наблюдение с предыдущим и порождает алерт.
type MonitorService struct {
	store   *repository.Store
	ledger  *LedgerService
	alerts  *AlertService
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewMonitorService(
	store *repository.Store,
	ledger *LedgerService,
	alerts *AlertService,
	log logger.Logger,
	m *metrics.Metrics,
) *MonitorService {
	return &MonitorService{
		store:   store,
		ledger:  ledger,
		alerts:  alerts,
		log:     log,
		metrics: m,
	}
}

type Observation struct {
	FlightSearchID uuid.UUID
	Price          int64
	Currency       string
	Provider       string
	// TargetPrice: порог пользователя в минорных единицах, nil если не задан.
	TargetPrice *int64
	Details     datatypes.JSON
}

type ObservationResult struct {
	Record *model.PriceRecord
	// Alert == nil, если наблюдение не дало события.
	Alert *model.Alert
}

// Observe записывает цену и создаёт не более одного алерта. Запись и алерт
// пишутся в одной транзакции: если алерт не сохранился, записи тоже нет.
func (s *MonitorService) Observe(ctx context.Context, obs Observation) (_ *ObservationResult, err error) {
	const op = "observe price"
	defer func(start time.Time) { s.metrics.ObserveOperation("observe_price", start, err) }(time.Now())

	if obs.TargetPrice != nil && *obs.TargetPrice < 0 {
		return nil, invalidArgument(op, "target price must not be negative")
	}

	result := &ObservationResult{}
	err = s.store.Tx(ctx, func(tx *repository.Store) error {
		search, err := tx.Searches().GetByID(ctx, obs.FlightSearchID)
		if err != nil {
			return storeError("load search", err)
		}

		prev, err := tx.Prices().Latest(ctx, search.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return storeError("latest price", err)
		}

		record, err := s.ledger.appendRecord(ctx, tx.Searches(), tx.Prices(), RecordPriceInput{
			FlightSearchID: search.ID,
			Price:          obs.Price,
			Currency:       obs.Currency,
			Provider:       obs.Provider,
			Details:        obs.Details,
		})
		if err != nil {
			return err
		}
		result.Record = record

		// Цены в разных валютах несравнимы.
		var old *int64
		if prev != nil && prev.Currency == record.Currency {
			p := prev.Price
			old = &p
		}

		kind, ok := pricing.Classify(old, record.Price, obs.TargetPrice)
		if !ok {
			return nil
		}

		alert, err := s.alerts.insertAlert(ctx, tx.Alerts(), CreateAlertInput{
			FlightSearchID: search.ID,
			AlertType:      kind,
			OldPrice:       old,
			NewPrice:       record.Price,
			Currency:       record.Currency,
			Message: pricing.FormatAlertMessage(pricing.Change{
				Type:        kind,
				Origin:      search.OriginCity,
				Destination: search.DestinationCity,
				OldPrice:    old,
				NewPrice:    record.Price,
				Target:      obs.TargetPrice,
				Currency:    record.Currency,
			}),
		})
		if err != nil {
			s.log.Error("alert was not created, rolling back price record",
				"search_id", search.ID,
				"error", err,
			)
			return err
		}
		result.Alert = alert
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.ledger.recorded(result.Record)
	if result.Alert != nil {
		s.alerts.created(result.Alert)
	}
	return result, nil
}
