package pricing

import (
	"fmt"

	"github.com/flightwatch/price-tracker/internal/model"
)

// Classify решает, какой алерт (если есть) даёт новое наблюдение.
//
// old: предыдущая сравнимая цена, nil если её нет. target: порог
// пользователя, nil если не задан. Порог пересечён, когда новая цена не выше
// него, а предыдущая была выше или отсутствовала. Пересечение порога
// важнее простого снижения: один переход даёт один алерт.
func Classify(old *int64, newPrice int64, target *int64) (model.AlertType, bool) {
	if target != nil && newPrice <= *target && (old == nil || *old > *target) {
		return model.AlertTypePriceTargetReached, true
	}
	if old == nil {
		return "", false
	}
	switch {
	case newPrice < *old:
		return model.AlertTypePriceDrop, true
	case newPrice > *old:
		return model.AlertTypePriceIncrease, true
	default:
		return "", false
	}
}

// Change: найденное событие цены для текста алерта.
type Change struct {
	Type        model.AlertType
	Origin      string
	Destination string
	OldPrice    *int64
	NewPrice    int64
	Target      *int64
	Currency    string
}

// FormatAlertMessage собирает читаемый текст алерта.
func FormatAlertMessage(c Change) string {
	route := fmt.Sprintf("%s → %s", c.Origin, c.Destination)

	switch c.Type {
	case model.AlertTypePriceDrop, model.AlertTypePriceIncrease:
		label := "Price drop"
		if c.Type == model.AlertTypePriceIncrease {
			label = "Price increase"
		}
		if c.OldPrice == nil {
			return fmt.Sprintf("%s on %s: now %s %s", label, route, FormatAmount(c.NewPrice), c.Currency)
		}
		return fmt.Sprintf("%s on %s: %s → %s %s (%s)",
			label, route,
			FormatAmount(*c.OldPrice), FormatAmount(c.NewPrice), c.Currency,
			FormatDelta(*c.OldPrice, c.NewPrice),
		)
	case model.AlertTypePriceTargetReached:
		if c.Target == nil {
			return fmt.Sprintf("Target price reached on %s: %s %s", route, FormatAmount(c.NewPrice), c.Currency)
		}
		return fmt.Sprintf("Target price reached on %s: %s %s (target %s)",
			route, FormatAmount(c.NewPrice), c.Currency, FormatAmount(*c.Target))
	default:
		return fmt.Sprintf("Price update on %s: %s %s", route, FormatAmount(c.NewPrice), c.Currency)
	}
}
