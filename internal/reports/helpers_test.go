package reports

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/accounts"
	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(t *testing.T, txnID string, d civil.Date, desc, debitAcct, creditAcct, amount string, gst bool) model.Transaction {
	t.Helper()
	out, err := model.NewTransaction(txnID, d, desc,
		model.Debit(debitAcct, dec(amount)),
		model.Credit(creditAcct, dec(amount)),
	)
	require.NoError(t, err)
	out.GSTInclusive = gst
	return out
}

// sampleBooks stores a small year of trading:
//
//	2024-06-15 sale 110 (previous year, GST inclusive)
//	2025-07-10 sale 330 (GST inclusive)
//	2025-07-12 materials 55 (GST inclusive)
//	2025-08-01 owner contribution 1000
//	2025-08-15 fuel on the credit card 80 (GST free)
func sampleBooks(t *testing.T) (*storage.Registry, model.ChartOfAccounts) {
	t.Helper()
	reg, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	for _, x := range []model.Transaction{
		txn(t, "TXN-20240615-001", date(2024, 6, 15), "Old sale", "BANK-CHQ", "INC-SALES", "110.00", true),
		txn(t, "TXN-20250710-001", date(2025, 7, 10), "Sale to Acme", "BANK-CHQ", "INC-SALES", "330.00", true),
		txn(t, "TXN-20250712-001", date(2025, 7, 12), "Bunnings", "EXP-MATERIALS", "BANK-CHQ", "55.00", true),
		txn(t, "TXN-20250801-001", date(2025, 8, 1), "Owner contribution", "BANK-CHQ", "EQUITY", "1000.00", false),
		txn(t, "TXN-20250815-001", date(2025, 8, 15), "Fuel", "EXP-VEHICLE", "CC", "80.00", false),
	} {
		require.NoError(t, reg.SaveTransaction(x))
	}
	return reg, accounts.DefaultChart()
}
