package trip

import (
	"errors"
	"time"
)

var (
	ErrMissingDeparture     = errors.New("departure date is required")
	ErrDepartureNotInFuture = errors.New("departure date must be in the future")
	ErrReturnNotAfterDepart = errors.New("return date must be after departure date")
)

// Dates: даты поездки. Return == nil означает перелёт в одну сторону.
type Dates struct {
	Departure time.Time
	Return    *time.Time
}

// NewDates нормализует даты в UTC и проверяет их порядок.
func NewDates(departure time.Time, ret *time.Time) (Dates, error) {
	if departure.IsZero() {
		return Dates{}, ErrMissingDeparture
	}
	d := Dates{Departure: Normalize(departure)}
	if ret != nil {
		r := Normalize(*ret)
		if !r.After(d.Departure) {
			return Dates{}, ErrReturnNotAfterDepart
		}
		d.Return = &r
	}
	return d, nil
}

// RequireUpcoming проверяет, что вылет строго позже now.
func (d Dates) RequireUpcoming(now time.Time) error {
	if !d.Departure.After(now) {
		return ErrDepartureNotInFuture
	}
	return nil
}

// IsRoundTrip: задан обратный рейс.
func (d Dates) IsRoundTrip() bool {
	return d.Return != nil
}

// Normalize приводит время к UTC с точностью хранилища (микросекунды).
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
