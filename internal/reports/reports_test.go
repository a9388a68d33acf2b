package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
)

func TestAccountBalance(t *testing.T) {
	reg, _ := sampleBooks(t)

	assert.Equal(t, "1385.00", AccountBalance(reg, "BANK-CHQ", date(2025, 8, 31)).StringFixed(2))
	assert.Equal(t, "440.00", AccountBalance(reg, "BANK-CHQ", date(2025, 7, 11)).StringFixed(2))
	assert.Equal(t, "-440.00", AccountBalance(reg, "INC-SALES", date(2025, 12, 31)).StringFixed(2), "credit-normal accounts come back negative")
	assert.True(t, AccountBalance(reg, "EXP-OFFICE", date(2025, 12, 31)).IsZero())
}

func TestNormalBalance(t *testing.T) {
	reg, chart := sampleBooks(t)

	got, err := NormalBalance(reg, chart, "INC-SALES", date(2025, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "440.00", got.StringFixed(2))

	got, err = NormalBalance(reg, chart, "EXP-MATERIALS", date(2025, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, "55.00", got.StringFixed(2))

	_, err = NormalBalance(reg, chart, "SUSPENSE", date(2025, 12, 31))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAccountTransactions(t *testing.T) {
	reg, _ := sampleBooks(t)

	txns := AccountTransactions(reg, "BANK-CHQ", date(2025, 7, 31))
	require.Len(t, txns, 3)
	assert.Equal(t, "TXN-20240615-001", txns[0].TransactionID)
	assert.Equal(t, "TXN-20250712-001", txns[2].TransactionID)

	assert.Empty(t, AccountTransactions(reg, "CC", date(2025, 8, 14)))
}

func TestProfitLoss(t *testing.T) {
	reg, chart := sampleBooks(t)

	r := ProfitLoss(reg, chart, date(2025, 7, 1), date(2026, 6, 30))
	require.Len(t, r.Income, 1)
	assert.Equal(t, "INC-SALES", r.Income[0].Code)
	assert.Equal(t, "Sales", r.Income[0].Name)
	assert.Equal(t, "330.00", r.TotalIncome.StringFixed(2))

	require.Len(t, r.Expenses, 2)
	assert.Equal(t, "EXP-MATERIALS", r.Expenses[0].Code, "chart order")
	assert.Equal(t, "EXP-VEHICLE", r.Expenses[1].Code)
	assert.Equal(t, "135.00", r.TotalExpenses.StringFixed(2))
	assert.Equal(t, "195.00", r.NetProfit.StringFixed(2))
}

func TestBalanceSheet(t *testing.T) {
	reg, chart := sampleBooks(t)

	r := BalanceSheet(reg, chart, date(2025, 8, 31))
	require.Len(t, r.Assets, 1)
	assert.Equal(t, "BANK-CHQ", r.Assets[0].Code)
	assert.Equal(t, "1385.00", r.TotalAssets.StringFixed(2))
	require.Len(t, r.Liabilities, 1)
	assert.Equal(t, "80.00", r.TotalLiabilities.StringFixed(2))
	require.Len(t, r.Equity, 1)
	assert.Equal(t, "1000.00", r.TotalEquity.StringFixed(2))
	assert.Equal(t, "305.00", r.CurrentEarnings.StringFixed(2))
	assert.True(t, r.Balanced())

	early := BalanceSheet(reg, chart, date(2025, 7, 31))
	assert.Empty(t, early.Liabilities)
	assert.True(t, early.Balanced())
}

func TestBAS(t *testing.T) {
	reg, chart := sampleBooks(t)

	r := BAS(reg, chart, date(2025, 7, 1), date(2025, 9, 30))
	assert.Equal(t, "330.00", r.TotalSales.StringFixed(2))
	assert.Equal(t, "30.00", r.GSTOnSales.StringFixed(2))
	assert.Equal(t, "135.00", r.TotalPurchases.StringFixed(2))
	assert.Equal(t, "5.00", r.GSTOnPurchases.StringFixed(2))
	assert.Equal(t, "25.00", r.NetGST.StringFixed(2))
}

func TestBAS_EmptyPeriod(t *testing.T) {
	reg, chart := sampleBooks(t)

	r := BAS(reg, chart, date(2025, 10, 1), date(2025, 12, 31))
	assert.True(t, r.TotalSales.IsZero())
	assert.True(t, r.NetGST.IsZero())
}
