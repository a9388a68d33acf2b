package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/accounts"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func TestCheckLedger_Clean(t *testing.T) {
	reg, chart := sampleBooks(t)
	problems := CheckLedger(reg.Transactions(storageAll), accounts.NewService(chart))
	assert.Empty(t, problems)
}

func TestCheckLedger_Problems(t *testing.T) {
	svc := accounts.NewService(accounts.DefaultChart())
	d := date(2025, 9, 1)

	unbalanced := model.Transaction{TransactionID: "T1", Date: d, Description: "x", Entries: []model.JournalEntry{
		model.Debit("BANK-CHQ", dec("10.00")),
		model.Credit("INC-SALES", dec("9.00")),
	}}
	twoSided := model.Transaction{TransactionID: "T2", Date: d, Description: "x", Entries: []model.JournalEntry{
		{AccountCode: "BANK-CHQ", Debit: dec("1"), Credit: dec("1")},
	}}
	unknown := txn(t, "T3", d, "x", "NOPE", "BANK-CHQ", "5.00", false)
	fractional := model.Transaction{TransactionID: "T4", Date: d, Description: "x", Entries: []model.JournalEntry{
		model.Debit("BANK-CHQ", dec("1.005")),
		model.Credit("INC-SALES", dec("1.005")),
	}}
	pending := txn(t, "T5", d, "x", "EXP-UNCLASSIFIED", "BANK-CHQ", "5.00", false)

	problems := CheckLedger([]model.Transaction{unbalanced, twoSided, unknown, fractional, pending}, svc)

	byInvariant := make(map[int][]Problem)
	for _, p := range problems {
		byInvariant[p.Invariant] = append(byInvariant[p.Invariant], p)
	}
	require.Len(t, byInvariant[1], 1)
	assert.Contains(t, byInvariant[1][0].Error(), "T1@2025-09-01")
	assert.Contains(t, byInvariant[1][0].Description, "10.00")
	assert.Len(t, byInvariant[2], 1)
	require.Len(t, byInvariant[3], 1)
	assert.Contains(t, byInvariant[3][0].Description, "NOPE")
	assert.Len(t, byInvariant[4], 2)
	require.Len(t, byInvariant[5], 1)
	assert.Equal(t, "T5@2025-09-01", byInvariant[5][0].TransactionID)
}
