package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flightwatch/price-tracker/internal/config"
	"github.com/flightwatch/price-tracker/internal/db"
	"github.com/flightwatch/price-tracker/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return gdb
}

func seedSearch(t *testing.T, gdb *gorm.DB, active bool) (model.User, model.FlightSearch) {
	t.Helper()

	u := model.User{Email: uuid.NewString() + "@example.com", NotificationEnabled: true}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	s := model.FlightSearch{
		UserID:          u.ID,
		OriginCity:      "NYC",
		DestinationCity: "LON",
		DepartureDate:   db.Now().Add(72 * time.Hour),
		IsActive:        active,
	}
	if err := gdb.Create(&s).Error; err != nil {
		t.Fatalf("seed search: %v", err)
	}
	return u, s
}
