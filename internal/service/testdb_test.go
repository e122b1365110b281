package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/flightwatch/price-tracker/internal/config"
	"github.com/flightwatch/price-tracker/internal/db"
	"github.com/flightwatch/price-tracker/internal/metrics"
	"github.com/flightwatch/price-tracker/internal/model"
	"github.com/flightwatch/price-tracker/internal/repository"
	"github.com/flightwatch/price-tracker/pkg/logger"
)

type fixture struct {
	db       *gorm.DB
	metrics  *metrics.Metrics
	identity *IdentityService
	searches *SearchService
	ledger   *LedgerService
	alerts   *AlertService
	monitor  *MonitorService
}

func newFixture(t *testing.T) *fixture {
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
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.NewNop()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())

	userRepo := repository.NewGormUserRepository(gdb)
	searchRepo := repository.NewGormFlightSearchRepository(gdb)
	priceRepo := repository.NewGormPriceRecordRepository(gdb)
	alertRepo := repository.NewGormAlertRepository(gdb)

	ledger := NewLedgerService(searchRepo, priceRepo, log, m)
	alerts := NewAlertService(alertRepo, log, m)

	return &fixture{
		db:       gdb,
		metrics:  m,
		identity: NewIdentityService(userRepo, log, m),
		searches: NewSearchService(userRepo, searchRepo, log, m),
		ledger:   ledger,
		alerts:   alerts,
		monitor:  NewMonitorService(repository.NewStore(gdb), ledger, alerts, log, m),
	}
}

func (f *fixture) user(t *testing.T) *model.User {
	t.Helper()

	u, err := f.identity.CreateUser(context.Background(), CreateUserInput{
		Email: uuid.NewString() + "@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// search создаёт поиск NYC → LON с вылетом завтра и возвратом через неделю.
func (f *fixture) search(t *testing.T, userID uuid.UUID) *model.FlightSearch {
	t.Helper()

	departure := db.Now().Add(24 * time.Hour)
	ret := departure.Add(7 * 24 * time.Hour)
	s, err := f.searches.CreateSearch(context.Background(), CreateSearchInput{
		UserID:          userID,
		OriginCity:      "NYC",
		DestinationCity: "LON",
		DepartureDate:   departure,
		ReturnDate:      &ret,
	})
	if err != nil {
		t.Fatalf("CreateSearch: %v", err)
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}
