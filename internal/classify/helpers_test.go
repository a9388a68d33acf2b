package classify

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

func bankDebit(t *testing.T, txnID, desc, amount string) model.Transaction {
	t.Helper()
	txn, err := model.NewTransaction(txnID, date(2025, 11, 3), desc,
		model.Debit("EXP-UNCLASSIFIED", dec(amount)),
		model.Credit("BANK", dec(amount)),
	)
	require.NoError(t, err)
	return txn
}

func boolPtr(b bool) *bool { return &b }
