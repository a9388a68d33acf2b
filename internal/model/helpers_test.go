package model

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(desc, qty, price string, inclusive bool) LineItem {
	return LineItem{Description: desc, Quantity: dec(qty), UnitPrice: dec(price), GSTInclusive: inclusive}
}
