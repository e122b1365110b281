package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/flightwatch/price-tracker/internal/db"
	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/pricing"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/internal/trip"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

const unknownProvider = "unknown"

// LedgerService: журнал наблюдений цен. Записи только добавляются.
type LedgerService struct {
	searchRepo repository.FlightSearchRepository
	priceRepo  repository.PriceRecordRepository
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewLedgerService(
	searchRepo repository.FlightSearchRepository,
	priceRepo repository.PriceRecordRepository,
	log logger.Logger,
	m *metrics.Metrics,
) *LedgerService {
	return &LedgerService{
		searchRepo: searchRepo,
		priceRepo:  priceRepo,
		log:        log,
		metrics:    m,
		now:        db.Now,
	}
}

type RecordPriceInput struct {
	FlightSearchID uuid.UUID
	// Price в минорных единицах валюты (центах).
	Price    int64
	Currency string
	Provider string
	// RecordedAt == nil: момент записи.
	RecordedAt *time.Time
	Details    datatypes.JSON
}

// RecordPrice добавляет наблюдение цены к активному поиску.
func (s *LedgerService) RecordPrice(ctx context.Context, in RecordPriceInput) (_ *model.PriceRecord, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("record_price", start, err) }(time.Now())

	record, err := s.appendRecord(ctx, s.searchRepo, s.priceRepo, in)
	if err != nil {
		return nil, err
	}
	s.recorded(record)
	return record, nil
}

// appendRecord проверяет вход и пишет запись через переданные репозитории,
// так что вызывающий может держать их в своей транзакции.
func (s *LedgerService) appendRecord(
	ctx context.Context,
	searches repository.FlightSearchRepository,
	prices repository.PriceRecordRepository,
	in RecordPriceInput,
) (*model.PriceRecord, error) {
	const op = "record price"

	if in.Price < 0 {
		return nil, invalidArgument(op, "price must not be negative, got %d", in.Price)
	}
	currency, ok := normalizeCurrency(in.Currency)
	if !ok {
		return nil, invalidArgument(op, "malformed currency code %q", in.Currency)
	}
	if !validJSON(in.Details) {
		return nil, invalidArgument(op, "details must be valid JSON")
	}
	provider := strings.TrimSpace(in.Provider)
	if provider == "" {
		provider = unknownProvider
	}

	recordedAt := s.now()
	if in.RecordedAt != nil {
		at := trip.Normalize(*in.RecordedAt)
		if at.After(recordedAt) {
			return nil, invalidArgument(op, "recorded_at %s is in the future", at.Format(time.RFC3339))
		}
		recordedAt = at
	}

	search, err := searches.GetByID(ctx, in.FlightSearchID)
	if err != nil {
		return nil, storeError(op+": load search", err)
	}
	// Проверка активности и вставка не атомарны: запись, пришедшая
	// одновременно с паузой поиска, может быть принята.
	if !search.IsActive {
		return nil, fmt.Errorf("%s: search %s: %w", op, search.ID, ErrInactive)
	}

	record := &model.PriceRecord{
		FlightSearchID: search.ID,
		Price:          in.Price,
		Currency:       currency,
		Provider:       provider,
		RecordedAt:     recordedAt,
		Details:        in.Details,
	}
	if err := prices.Create(ctx, record); err != nil {
		return nil, storeError(op, err)
	}
	return record, nil
}

// recorded вызывается после фиксации записи.
func (s *LedgerService) recorded(record *model.PriceRecord) {
	s.metrics.PriceRecords.WithLabelValues(record.Provider).Inc()
	s.log.Debug("price recorded",
		"search_id", record.FlightSearchID,
		"price", pricing.FormatAmount(record.Price),
		"currency", record.Currency,
		"provider", record.Provider,
	)
}

// PriceView: запись журнала вместе с суммой в основных единицах.
type PriceView struct {
	ID             uuid.UUID
	FlightSearchID uuid.UUID
	Price          int64
	Amount         decimal.Decimal
	Currency       string
	Provider       string
	RecordedAt     time.Time
	Details        datatypes.JSON
}

// Display: сумма с двумя знаками после точки, например "450.00".
func (v PriceView) Display() string {
	return v.Amount.StringFixed(2)
}

// NewPriceView строит представление сохранённой записи.
func NewPriceView(r model.PriceRecord) PriceView {
	return PriceView{
		ID:             r.ID,
		FlightSearchID: r.FlightSearchID,
		Price:          r.Price,
		Amount:         pricing.Amount(r.Price),
		Currency:       r.Currency,
		Provider:       r.Provider,
		RecordedAt:     r.RecordedAt,
		Details:        r.Details,
	}
}

// History возвращает наблюдения от новых к старым. limit == nil: все записи,
// 0: пустой результат. Для неизвестного поиска результат пустой.
func (s *LedgerService) History(ctx context.Context, searchID uuid.UUID, limit *int) ([]PriceView, error) {
	const op = "price history"

	n := -1
	if limit != nil {
		if *limit < 0 {
			return nil, invalidArgument(op, "limit must not be negative, got %d", *limit)
		}
		if *limit == 0 {
			return []PriceView{}, nil
		}
		n = *limit
	}

	records, err := s.priceRepo.ListBySearch(ctx, searchID, n)
	if err != nil {
		return nil, storeError(op, err)
	}

	views := make([]PriceView, 0, len(records))
	for _, r := range records {
		views = append(views, NewPriceView(r))
	}
	return views, nil
}
