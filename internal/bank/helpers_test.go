package bank

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var westpacFormat = model.BankFormat{
	Name:              "Westpac",
	DateColumn:        "Date",
	DescriptionColumn: "Narrative",
	DebitColumn:       "Debit Amount",
	CreditColumn:      "Credit Amount",
	BalanceColumn:     "Balance",
	DateFormat:        "%d/%m/%Y",
}

var commbankFormat = model.BankFormat{
	Name:              "commbank",
	DateColumn:        "Date",
	DescriptionColumn: "Description",
	AmountColumn:      "Amount",
	DateFormat:        "%Y-%m-%d",
}

func mustParser(t *testing.T, f model.BankFormat) *FormatParser {
	t.Helper()
	p, err := NewFormatParser(f)
	require.NoError(t, err)
	return p
}
