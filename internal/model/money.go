package model

import "github.com/shopspring/decimal"

var (
	// GSTRate is the Australian goods and services tax rate.
	GSTRate = decimal.RequireFromString("0.10")

	eleven = decimal.NewFromInt(11)
)

// RoundCents rounds to two decimal places using banker's rounding.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// GSTComponent returns the GST contained in (inclusive) or added to
// (exclusive) amount: amount/11 or amount*10%, rounded to cents.
func GSTComponent(amount decimal.Decimal, inclusive bool) decimal.Decimal {
	if inclusive {
		return RoundCents(amount.Div(eleven))
	}
	return RoundCents(amount.Mul(GSTRate))
}
