package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flightwatch/price-tracker/internal/db"
	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/internal/trip"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

// SearchService: реестр поисков перелётов.
type SearchService struct {
	userRepo   repository.UserRepository
	searchRepo repository.FlightSearchRepository
	log        logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewSearchService(
	userRepo repository.UserRepository,
	searchRepo repository.FlightSearchRepository,
	log logger.Logger,
	m *metrics.Metrics,
) *SearchService {
	return &SearchService{
		userRepo:   userRepo,
		searchRepo: searchRepo,
		log:        log,
		metrics:    m,
		now:        db.Now,
	}
}

type CreateSearchInput struct {
	UserID          uuid.UUID
	OriginCity      string
	DestinationCity string
	DepartureDate   time.Time
	ReturnDate      *time.Time
}

// CreateSearch регистрирует новый активный поиск.
func (s *SearchService) CreateSearch(ctx context.Context, in CreateSearchInput) (_ *model.FlightSearch, err error) {
	const op = "create search"
	defer func(start time.Time) { s.metrics.ObserveOperation("create_search", start, err) }(time.Now())

	origin := strings.TrimSpace(in.OriginCity)
	destination := strings.TrimSpace(in.DestinationCity)
	if origin == "" || destination == "" {
		return nil, invalidArgument(op, "origin and destination cities are required")
	}

	dates, err := trip.NewDates(in.DepartureDate, in.ReturnDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, datesError(err))
	}
	if err := dates.RequireUpcoming(s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, datesError(err))
	}

	if _, err := s.userRepo.GetByID(ctx, in.UserID); err != nil {
		return nil, storeError(op+": load user", err)
	}

	search := &model.FlightSearch{
		UserID:          in.UserID,
		OriginCity:      origin,
		DestinationCity: destination,
		DepartureDate:   dates.Departure,
		ReturnDate:      dates.Return,
		IsActive:        true,
	}
	if err := s.searchRepo.Create(ctx, search); err != nil {
		return nil, storeError(op, err)
	}

	s.metrics.SearchesCreated.Inc()
	s.log.Info("flight search created",
		"search_id", search.ID,
		"user_id", search.UserID,
		"route", origin+"-"+destination,
		"round_trip", dates.IsRoundTrip(),
	)
	return search, nil
}

// SearchPatch: частичное обновление. Неустановленные поля не меняются;
// ReturnDate, установленный в nil, превращает поиск в перелёт в одну сторону.
type SearchPatch struct {
	OriginCity      model.Optional[string]
	DestinationCity model.Optional[string]
	DepartureDate   model.Optional[time.Time]
	ReturnDate      model.Optional[*time.Time]
	IsActive        model.Optional[bool]
}

// UpdateSearch применяет patch атомарно: либо все поля, либо ничего.
// Новая дата вылета должна быть в будущем, итоговый возврат строго позже вылета.
func (s *SearchService) UpdateSearch(ctx context.Context, id uuid.UUID, patch SearchPatch) (_ *model.FlightSearch, err error) {
	const op = "update search"
	defer func(start time.Time) { s.metrics.ObserveOperation("update_search", start, err) }(time.Now())

	if err := patch.rejectNulls(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	var invalid error
	updated, err := s.searchRepo.Update(ctx, id, func(fs *model.FlightSearch) error {
		invalid = patch.apply(fs, now)
		return invalid
	})
	if invalid != nil {
		return nil, fmt.Errorf("%s: %w", op, invalid)
	}
	if err != nil {
		return nil, storeError(op, err)
	}

	s.log.Info("flight search updated", "search_id", updated.ID, "is_active", updated.IsActive)
	return updated, nil
}

// rejectNulls: явный null допустим только для return_date.
func (p SearchPatch) rejectNulls() error {
	nulls := []struct {
		field string
		null  bool
	}{
		{"origin_city", p.OriginCity.Null},
		{"destination_city", p.DestinationCity.Null},
		{"departure_date", p.DepartureDate.Null},
		{"is_active", p.IsActive.Null},
	}
	for _, n := range nulls {
		if n.null {
			return fieldError(n.field + " must not be null")
		}
	}
	return nil
}

// apply переносит patch на загруженную строку и проверяет итоговые даты.
func (p SearchPatch) apply(fs *model.FlightSearch, now time.Time) error {
	if v, ok := p.OriginCity.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldError("origin city must not be empty")
		}
		fs.OriginCity = v
	}
	if v, ok := p.DestinationCity.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldError("destination city must not be empty")
		}
		fs.DestinationCity = v
	}

	if p.DepartureDate.Set || p.ReturnDate.Set {
		departure, ret := fs.DepartureDate, fs.ReturnDate
		if v, ok := p.DepartureDate.Get(); ok {
			departure = v
		}
		if v, ok := p.ReturnDate.Get(); ok {
			ret = v
		}
		dates, err := trip.NewDates(departure, ret)
		if err != nil {
			return datesError(err)
		}
		if p.DepartureDate.Set {
			if err := dates.RequireUpcoming(now); err != nil {
				return datesError(err)
			}
		}
		fs.DepartureDate = dates.Departure
		fs.ReturnDate = dates.Return
	}

	if v, ok := p.IsActive.Get(); ok {
		fs.IsActive = v
	}
	return nil
}

// GetSearch возвращает поиск по id.
func (s *SearchService) GetSearch(ctx context.Context, id uuid.UUID) (*model.FlightSearch, error) {
	search, err := s.searchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get search", err)
	}
	return search, nil
}

// ListByUser возвращает поиски пользователя по возрастанию created_at.
// Для неизвестного пользователя результат пустой.
func (s *SearchService) ListByUser(ctx context.Context, userID uuid.UUID, isActive *bool) ([]model.FlightSearch, error) {
	searches, err := s.searchRepo.ListByUser(ctx, userID, isActive)
	if err != nil {
		return nil, storeError("list searches by user", err)
	}
	return searches, nil
}

// ListActiveUpcoming: рабочий набор сборщика цен: активные поиски,
// вылет которых ещё не наступил, по возрастанию даты вылета.
func (s *SearchService) ListActiveUpcoming(ctx context.Context) ([]model.FlightSearch, error) {
	searches, err := s.searchRepo.ListActiveUpcoming(ctx, s.now())
	if err != nil {
		return nil, storeError("list active searches", err)
	}
	return searches, nil
}
