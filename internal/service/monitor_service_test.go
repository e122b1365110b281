package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/flightwatch/price-tracker/internal/model"
)

func TestObserve_Sequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.search(t, f.user(t).ID)

	target := ptr(int64(46000))
	steps := []struct {
		price    int64
		currency string
		want     model.AlertType
		wantOld  *int64
	}{
		{price: 50000, currency: "USD"},
		{price: 50000, currency: "USD"},
		{price: 45000, currency: "USD", want: model.AlertTypePriceTargetReached, wantOld: ptr(int64(50000))},
		{price: 44000, currency: "USD", want: model.AlertTypePriceDrop, wantOld: ptr(int64(45000))},
		{price: 47000, currency: "USD", want: model.AlertTypePriceIncrease, wantOld: ptr(int64(44000))},
		// Смена валюты: сравнивать не с чем.
		{price: 50000, currency: "EUR"},
	}

	for i, step := range steps {
		res, err := f.monitor.Observe(ctx, Observation{
			FlightSearchID: s.ID,
			Price:          step.price,
			Currency:       step.currency,
			Provider:       "kiwi",
			TargetPrice:    target,
		})
		if err != nil {
			t.Fatalf("step %d: Observe: %v", i, err)
		}
		if res.Record == nil || res.Record.Price != step.price {
			t.Fatalf("step %d: record not stored: %+v", i, res.Record)
		}

		if step.want == "" {
			if res.Alert != nil {
				t.Fatalf("step %d: unexpected alert %s", i, res.Alert.AlertType)
			}
			continue
		}
		if res.Alert == nil {
			t.Fatalf("step %d: expected %s alert", i, step.want)
		}
		if res.Alert.AlertType != step.want {
			t.Fatalf("step %d: expected %s, got %s", i, step.want, res.Alert.AlertType)
		}
		if res.Alert.OldPrice == nil || *res.Alert.OldPrice != *step.wantOld {
			t.Fatalf("step %d: unexpected old price %v", i, res.Alert.OldPrice)
		}
		if !strings.Contains(res.Alert.Message, "NYC → LON") {
			t.Fatalf("step %d: message lacks route: %q", i, res.Alert.Message)
		}
	}

	alerts, err := f.alerts.GetAlerts(ctx, AlertFilter{FlightSearchID: &s.ID})
	if err != nil {
		t.Fatalf("GetAlerts: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected exactly one alert per transition, got %d", len(alerts))
	}

	history, err := f.ledger.History(ctx, s.ID, nil)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(steps) {
		t.Fatalf("expected %d records, got %d", len(steps), len(history))
	}
}

func TestObserve_FirstObservationBelowTarget(t *testing.T) {
	f := newFixture(t)
	s := f.search(t, f.user(t).ID)

	res, err := f.monitor.Observe(context.Background(), Observation{
		FlightSearchID: s.ID,
		Price:          30000,
		Currency:       "USD",
		TargetPrice:    ptr(int64(35000)),
	})
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if res.Alert == nil || res.Alert.AlertType != model.AlertTypePriceTargetReached {
		t.Fatalf("expected target alert, got %+v", res.Alert)
	}
	if res.Alert.OldPrice != nil {
		t.Fatalf("first observation has no previous price, got %v", *res.Alert.OldPrice)
	}
}

func TestObserve_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.search(t, f.user(t).ID)

	_, err := f.monitor.Observe(ctx, Observation{FlightSearchID: uuid.New(), Price: 1, Currency: "USD"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = f.monitor.Observe(ctx, Observation{FlightSearchID: s.ID, Price: 1, Currency: "USD", TargetPrice: ptr(int64(-1))})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	if _, err := f.searches.UpdateSearch(ctx, s.ID, SearchPatch{IsActive: model.Some(false)}); err != nil {
		t.Fatalf("UpdateSearch: %v", err)
	}
	_, err = f.monitor.Observe(ctx, Observation{FlightSearchID: s.ID, Price: 1, Currency: "USD"})
	if !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestObserve_AlertFailureRollsBackRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.search(t, f.user(t).ID)

	obs := Observation{FlightSearchID: s.ID, Price: 50000, Currency: "USD", Provider: "kiwi"}
	if _, err := f.monitor.Observe(ctx, obs); err != nil {
		t.Fatalf("first Observe: %v", err)
	}

	// Следующее наблюдение дешевле и должно породить алерт, но таблицы уже нет.
	if err := f.db.Migrator().DropTable(&model.Alert{}); err != nil {
		t.Fatalf("drop alerts: %v", err)
	}
	obs.Price = 40000
	res, err := f.monitor.Observe(ctx, obs)
	if err == nil {
		t.Fatalf("expected error when the alert cannot be stored, got %+v", res)
	}
	if res != nil {
		t.Fatalf("expected nil result on failure, got %+v", res)
	}

	history, err := f.ledger.History(ctx, s.ID, nil)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Price != 50000 {
		t.Fatalf("expected only the first record to survive, got %+v", history)
	}
	if got := testutil.ToFloat64(f.metrics.PriceRecords.WithLabelValues("kiwi")); got != 1 {
		t.Fatalf("price_records counter = %v, want 1", got)
	}
}
