// Package pricing: форматирование сумм и правило, по которому два подряд
// идущих наблюдения цены превращаются в тип алерта.
package pricing

import (
	"github.com/shopspring/decimal"
)

// minorExponent: цены хранятся в сотых долях валюты.
const minorExponent = -2

// Amount переводит цену из минорных единиц в основные (50000 -> 500).
func Amount(minor int64) decimal.Decimal {
	return decimal.New(minor, minorExponent)
}

// FormatAmount: цена с двумя знаками после точки ("500.00").
func FormatAmount(minor int64) string {
	return Amount(minor).StringFixed(2)
}

// FormatDelta: разница new-old со знаком ("+12.50", "-50.00").
func FormatDelta(oldMinor, newMinor int64) string {
	d := Amount(newMinor - oldMinor)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
