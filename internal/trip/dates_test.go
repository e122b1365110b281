package trip

import (
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestNewDates_OneWay(t *testing.T) {
	dep := mustTime(t, 2030, 1, 1, 10, 0)

	d, err := NewDates(dep, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.IsRoundTrip() {
		t.Fatalf("expected one-way dates")
	}
	if !d.Departure.Equal(dep) {
		t.Fatalf("departure = %v, want %v", d.Departure, dep)
	}
}

func TestNewDates_ReturnMustBeStrictlyAfter(t *testing.T) {
	dep := mustTime(t, 2030, 1, 1, 10, 0)

	cases := []struct {
		name    string
		ret     time.Time
		wantErr error
	}{
		{"same instant", dep, ErrReturnNotAfterDepart},
		{"before", dep.Add(-time.Hour), ErrReturnNotAfterDepart},
		{"one microsecond after", dep.Add(time.Microsecond), nil},
		{"a week after", dep.AddDate(0, 0, 7), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ret := tc.ret
			_, err := NewDates(dep, &ret)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewDates_ZeroDeparture(t *testing.T) {
	if _, err := NewDates(time.Time{}, nil); !errors.Is(err, ErrMissingDeparture) {
		t.Fatalf("err = %v, want ErrMissingDeparture", err)
	}
}

func TestNewDates_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	dep := time.Date(2030, 1, 1, 13, 0, 0, 123456789, loc)

	d, err := NewDates(dep, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Departure.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", d.Departure.Location())
	}
	if d.Departure.Nanosecond() != 123456000 {
		t.Fatalf("nanos = %d, want truncation to microseconds", d.Departure.Nanosecond())
	}
}

func TestDates_RequireUpcoming(t *testing.T) {
	now := mustTime(t, 2030, 1, 1, 10, 0)

	past, _ := NewDates(now.Add(-time.Minute), nil)
	if err := past.RequireUpcoming(now); !errors.Is(err, ErrDepartureNotInFuture) {
		t.Fatalf("past departure err = %v", err)
	}
	exact, _ := NewDates(now, nil)
	if err := exact.RequireUpcoming(now); !errors.Is(err, ErrDepartureNotInFuture) {
		t.Fatalf("departure == now err = %v", err)
	}
	future, _ := NewDates(now.Add(time.Microsecond), nil)
	if err := future.RequireUpcoming(now); err != nil {
		t.Fatalf("future departure err = %v", err)
	}
}
