package server

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/datatypes"

	"github.com/flightwatch/price-tracker/internal/service"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

// PriceTrackerServer: gRPC-обёртка над сервисами трекера.
type PriceTrackerServer struct {
	identity *service.IdentityService
	searches *service.SearchService
	ledger   *service.LedgerService
	alerts   *service.AlertService
	monitor  *service.MonitorService
	log      logger.Logger
}

func NewPriceTrackerServer(
	identity *service.IdentityService,
	searches *service.SearchService,
	ledger *service.LedgerService,
	alerts *service.AlertService,
	monitor *service.MonitorService,
	log logger.Logger,
) *PriceTrackerServer {
	return &PriceTrackerServer{
		identity: identity,
		searches: searches,
		ledger:   ledger,
		alerts:   alerts,
		monitor:  monitor,
		log:      log,
	}
}

var _ PriceTrackerService = (*PriceTrackerServer)(nil)

func (s *PriceTrackerServer) CreateUser(ctx context.Context, req *CreateUserRequest) (*CreateUserResponse, error) {
	u, err := s.identity.CreateUser(ctx, service.CreateUserInput{
		Email:               req.Email,
		TelegramChatID:      req.TelegramChatID,
		NotificationEnabled: req.NotificationEnabled,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &CreateUserResponse{User: userMessage(u)}, nil
}

func (s *PriceTrackerServer) CreateFlightSearch(ctx context.Context, req *CreateFlightSearchRequest) (*FlightSearchResponse, error) {
	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}

	search, err := s.searches.CreateSearch(ctx, service.CreateSearchInput{
		UserID:          userID,
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		DepartureDate:   req.DepartureDate,
		ReturnDate:      req.ReturnDate,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &FlightSearchResponse{Search: searchMessage(search)}, nil
}

func (s *PriceTrackerServer) UpdateFlightSearch(ctx context.Context, req *UpdateFlightSearchRequest) (*FlightSearchResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	search, err := s.searches.UpdateSearch(ctx, id, service.SearchPatch{
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		DepartureDate:   req.DepartureDate,
		ReturnDate:      req.ReturnDate,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &FlightSearchResponse{Search: searchMessage(search)}, nil
}

func (s *PriceTrackerServer) GetFlightSearchesByUser(ctx context.Context, req *GetFlightSearchesByUserRequest) (*FlightSearchListResponse, error) {
	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		return nil, err
	}

	searches, err := s.searches.ListByUser(ctx, userID, req.IsActive)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &FlightSearchListResponse{Searches: searchMessages(searches)}, nil
}

func (s *PriceTrackerServer) GetActiveFlightSearches(ctx context.Context, _ *GetActiveFlightSearchesRequest) (*FlightSearchListResponse, error) {
	searches, err := s.searches.ListActiveUpcoming(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &FlightSearchListResponse{Searches: searchMessages(searches)}, nil
}

func (s *PriceTrackerServer) CreatePriceRecord(ctx context.Context, req *CreatePriceRecordRequest) (*PriceRecordResponse, error) {
	searchID, err := parseID("flight_search_id", req.FlightSearchID)
	if err != nil {
		return nil, err
	}

	rec, err := s.ledger.RecordPrice(ctx, service.RecordPriceInput{
		FlightSearchID: searchID,
		Price:          req.Price,
		Currency:       req.Currency,
		Provider:       req.Provider,
		RecordedAt:     req.RecordedAt,
		Details:        datatypes.JSON(req.Details),
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &PriceRecordResponse{Record: priceMessage(service.NewPriceView(*rec))}, nil
}

func (s *PriceTrackerServer) GetPriceHistory(ctx context.Context, req *GetPriceHistoryRequest) (*GetPriceHistoryResponse, error) {
	searchID, err := parseID("flight_search_id", req.FlightSearchID)
	if err != nil {
		return nil, err
	}

	views, err := s.ledger.History(ctx, searchID, req.Limit)
	if err != nil {
		return nil, s.toStatus(err)
	}

	records := make([]PriceRecordMessage, 0, len(views))
	for _, v := range views {
		records = append(records, priceMessage(v))
	}
	return &GetPriceHistoryResponse{Records: records}, nil
}

func (s *PriceTrackerServer) CreateAlert(ctx context.Context, req *CreateAlertRequest) (*AlertResponse, error) {
	searchID, err := parseID("flight_search_id", req.FlightSearchID)
	if err != nil {
		return nil, err
	}

	alert, err := s.alerts.CreateAlert(ctx, service.CreateAlertInput{
		FlightSearchID: searchID,
		AlertType:      req.AlertType,
		OldPrice:       req.OldPrice,
		NewPrice:       req.NewPrice,
		Currency:       req.Currency,
		Message:        req.Message,
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &AlertResponse{Alert: alertMessage(alert)}, nil
}

func (s *PriceTrackerServer) GetAlerts(ctx context.Context, req *GetAlertsRequest) (*GetAlertsResponse, error) {
	filter := service.AlertFilter{
		IsRead: req.IsRead,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.UserID != nil {
		id, err := parseID("user_id", *req.UserID)
		if err != nil {
			return nil, err
		}
		filter.UserID = &id
	}
	if req.FlightSearchID != nil {
		id, err := parseID("flight_search_id", *req.FlightSearchID)
		if err != nil {
			return nil, err
		}
		filter.FlightSearchID = &id
	}

	alerts, err := s.alerts.GetAlerts(ctx, filter)
	if err != nil {
		return nil, s.toStatus(err)
	}

	out := make([]AlertMessage, 0, len(alerts))
	for i := range alerts {
		out = append(out, alertMessage(&alerts[i]))
	}
	return &GetAlertsResponse{Alerts: out}, nil
}

func (s *PriceTrackerServer) MarkAlertRead(ctx context.Context, req *MarkAlertReadRequest) (*AlertResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}

	alert, err := s.alerts.MarkRead(ctx, id)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return &AlertResponse{Alert: alertMessage(alert)}, nil
}

func (s *PriceTrackerServer) ObservePrice(ctx context.Context, req *ObservePriceRequest) (*ObservePriceResponse, error) {
	searchID, err := parseID("flight_search_id", req.FlightSearchID)
	if err != nil {
		return nil, err
	}

	res, err := s.monitor.Observe(ctx, service.Observation{
		FlightSearchID: searchID,
		Price:          req.Price,
		Currency:       req.Currency,
		Provider:       req.Provider,
		TargetPrice:    req.TargetPrice,
		Details:        datatypes.JSON(req.Details),
	})
	if err != nil {
		return nil, s.toStatus(err)
	}

	resp := &ObservePriceResponse{Record: priceMessage(service.NewPriceView(*res.Record))}
	if res.Alert != nil {
		a := alertMessage(res.Alert)
		resp.Alert = &a
	}
	return resp, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "%s must be a valid uuid", field)
	}
	return id, nil
}

// toStatus переводит доменные ошибки в gRPC-коды. Текст внутренних ошибок
// наружу не уходит, только в лог.
func (s *PriceTrackerServer) toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, service.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, service.ErrInvalidTemporalRange), errors.Is(err, service.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, service.ErrInactive), errors.Is(err, service.ErrReferentialViolation):
		code = codes.FailedPrecondition
	case errors.Is(err, service.ErrUniquenessViolation):
		code = codes.AlreadyExists
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		s.log.Error("internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
