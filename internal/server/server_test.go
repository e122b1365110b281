package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/flightwatch/price-tracker/internal/config"
	"github.com/flightwatch/price-tracker/internal/db"
	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/internal/service"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	gdb, err := db.NewGormDB(&config.DBConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		LogLevel:     "silent",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	log := logger.NewNop()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	userRepo := repository.NewGormUserRepository(gdb)
	searchRepo := repository.NewGormFlightSearchRepository(gdb)
	priceRepo := repository.NewGormPriceRecordRepository(gdb)
	alertRepo := repository.NewGormAlertRepository(gdb)

	ledger := service.NewLedgerService(searchRepo, priceRepo, log, m)
	alerts := service.NewAlertService(alertRepo, log, m)
	impl := NewPriceTrackerServer(
		service.NewIdentityService(userRepo, log, m),
		service.NewSearchService(userRepo, searchRepo, log, m),
		ledger,
		alerts,
		service.NewMonitorService(repository.NewStore(gdb), ledger, alerts, log, m),
		log,
	)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		UnaryRecoveryInterceptor(log),
		UnaryLoggingInterceptor(log),
	))
	RegisterPriceTrackerServer(srv, impl)
	go srv.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewClient(conn)
}

func requireCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	if got := status.Code(err); got != want {
		t.Fatalf("expected code %s, got %s (%v)", want, got, err)
	}
}

func TestPriceTracker_EndToEnd(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	userResp, err := c.CreateUser(ctx, &CreateUserRequest{Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !userResp.User.NotificationEnabled {
		t.Fatalf("notifications must default to enabled")
	}

	departure := time.Now().Add(24 * time.Hour)
	ret := departure.Add(7 * 24 * time.Hour)
	searchResp, err := c.CreateFlightSearch(ctx, &CreateFlightSearchRequest{
		UserID:          userResp.User.ID,
		OriginCity:      "NYC",
		DestinationCity: "LON",
		DepartureDate:   departure,
		ReturnDate:      &ret,
	})
	if err != nil {
		t.Fatalf("CreateFlightSearch: %v", err)
	}
	s1 := searchResp.Search
	if !s1.IsActive {
		t.Fatalf("new search must be active")
	}

	first, err := c.ObservePrice(ctx, &ObservePriceRequest{
		FlightSearchID: s1.ID,
		Price:          50000,
		Currency:       "USD",
		Provider:       "skyscanner",
		Details:        json.RawMessage(`{"carrier":"BA"}`),
	})
	if err != nil {
		t.Fatalf("ObservePrice: %v", err)
	}
	if first.Alert != nil {
		t.Fatalf("first observation must not alert")
	}
	time.Sleep(2 * time.Millisecond)
	second, err := c.ObservePrice(ctx, &ObservePriceRequest{
		FlightSearchID: s1.ID,
		Price:          45000,
		Currency:       "USD",
		Provider:       "skyscanner",
	})
	if err != nil {
		t.Fatalf("ObservePrice: %v", err)
	}
	if second.Alert == nil || second.Alert.AlertType != model.AlertTypePriceDrop {
		t.Fatalf("expected price drop alert, got %+v", second.Alert)
	}
	if second.Alert.OldPrice == nil || *second.Alert.OldPrice != 50000 {
		t.Fatalf("unexpected old price %v", second.Alert.OldPrice)
	}

	history, err := c.GetPriceHistory(ctx, &GetPriceHistoryRequest{FlightSearchID: s1.ID})
	if err != nil {
		t.Fatalf("GetPriceHistory: %v", err)
	}
	if len(history.Records) != 2 ||
		history.Records[0].Amount != "450.00" ||
		history.Records[1].Amount != "500.00" {
		t.Fatalf("unexpected history: %+v", history.Records)
	}
	if string(history.Records[1].Details) != `{"carrier":"BA"}` {
		t.Fatalf("details not preserved: %s", history.Records[1].Details)
	}

	alerts, err := c.GetAlerts(ctx, &GetAlertsRequest{FlightSearchID: &s1.ID})
	if err != nil {
		t.Fatalf("GetAlerts: %v", err)
	}
	if len(alerts.Alerts) != 1 || alerts.Alerts[0].IsRead {
		t.Fatalf("expected one unread alert, got %+v", alerts.Alerts)
	}

	read, err := c.MarkAlertRead(ctx, &MarkAlertReadRequest{ID: alerts.Alerts[0].ID})
	if err != nil {
		t.Fatalf("MarkAlertRead: %v", err)
	}
	if !read.Alert.IsRead {
		t.Fatalf("alert must be read")
	}
	readAlerts, err := c.GetAlerts(ctx, &GetAlertsRequest{IsRead: ptr(true), UserID: &userResp.User.ID})
	if err != nil {
		t.Fatalf("GetAlerts: %v", err)
	}
	if len(readAlerts.Alerts) != 1 {
		t.Fatalf("expected read alert to be listed, got %+v", readAlerts.Alerts)
	}

	updated, err := c.UpdateFlightSearch(ctx, &UpdateFlightSearchRequest{
		ID:         s1.ID,
		IsActive:   model.Some(false),
		ReturnDate: model.Some[*time.Time](nil),
	})
	if err != nil {
		t.Fatalf("UpdateFlightSearch: %v", err)
	}
	if updated.Search.IsActive || updated.Search.ReturnDate != nil {
		t.Fatalf("unexpected search after update: %+v", updated.Search)
	}
	if updated.Search.OriginCity != "NYC" {
		t.Fatalf("omitted field changed: %q", updated.Search.OriginCity)
	}

	_, err = c.CreatePriceRecord(ctx, &CreatePriceRecordRequest{FlightSearchID: s1.ID, Price: 44000, Currency: "USD"})
	requireCode(t, err, codes.FailedPrecondition)

	active, err := c.GetActiveFlightSearches(ctx, &GetActiveFlightSearchesRequest{})
	if err != nil {
		t.Fatalf("GetActiveFlightSearches: %v", err)
	}
	if len(active.Searches) != 0 {
		t.Fatalf("paused search listed as active: %+v", active.Searches)
	}

	byUser, err := c.GetFlightSearchesByUser(ctx, &GetFlightSearchesByUserRequest{UserID: userResp.User.ID})
	if err != nil {
		t.Fatalf("GetFlightSearchesByUser: %v", err)
	}
	if len(byUser.Searches) != 1 || byUser.Searches[0].ID != s1.ID {
		t.Fatalf("unexpected searches: %+v", byUser.Searches)
	}
}

func TestPriceTracker_ErrorCodes(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateFlightSearch(ctx, &CreateFlightSearchRequest{UserID: "not-a-uuid"})
	requireCode(t, err, codes.InvalidArgument)

	_, err = c.CreateFlightSearch(ctx, &CreateFlightSearchRequest{
		UserID:          uuid.NewString(),
		OriginCity:      "NYC",
		DestinationCity: "LON",
		DepartureDate:   time.Now().Add(time.Hour),
	})
	requireCode(t, err, codes.NotFound)

	if _, err := c.CreateUser(ctx, &CreateUserRequest{Email: "dup@example.com"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err = c.CreateUser(ctx, &CreateUserRequest{Email: "dup@example.com"})
	requireCode(t, err, codes.AlreadyExists)

	user, err := c.CreateUser(ctx, &CreateUserRequest{Email: "past@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err = c.CreateFlightSearch(ctx, &CreateFlightSearchRequest{
		UserID:          user.User.ID,
		OriginCity:      "NYC",
		DestinationCity: "LON",
		DepartureDate:   time.Now().Add(-time.Hour),
	})
	requireCode(t, err, codes.InvalidArgument)

	s, err := c.CreateFlightSearch(ctx, &CreateFlightSearchRequest{
		UserID:          user.User.ID,
		OriginCity:      "NYC",
		DestinationCity: "LON",
		DepartureDate:   time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateFlightSearch: %v", err)
	}
	_, err = c.UpdateFlightSearch(ctx, &UpdateFlightSearchRequest{
		ID:       s.Search.ID,
		IsActive: model.Optional[bool]{Set: true, Null: true},
	})
	requireCode(t, err, codes.InvalidArgument)
	byUser, err := c.GetFlightSearchesByUser(ctx, &GetFlightSearchesByUserRequest{UserID: user.User.ID})
	if err != nil {
		t.Fatalf("GetFlightSearchesByUser: %v", err)
	}
	if len(byUser.Searches) != 1 || !byUser.Searches[0].IsActive {
		t.Fatalf("null is_active must not pause the search: %+v", byUser.Searches)
	}

	_, err = c.CreateAlert(ctx, &CreateAlertRequest{
		FlightSearchID: uuid.NewString(),
		AlertType:      model.AlertTypePriceDrop,
		NewPrice:       100,
		Currency:       "USD",
	})
	requireCode(t, err, codes.FailedPrecondition)

	_, err = c.MarkAlertRead(ctx, &MarkAlertReadRequest{ID: uuid.NewString()})
	requireCode(t, err, codes.NotFound)

	_, err = c.GetPriceHistory(ctx, &GetPriceHistoryRequest{FlightSearchID: uuid.NewString(), Limit: ptr(-1)})
	requireCode(t, err, codes.InvalidArgument)
}

func ptr[T any](v T) *T {
	return &v
}
