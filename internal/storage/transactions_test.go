package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func TestTransaction_RoundTrip(t *testing.T) {
	reg, dir := openTemp(t)
	txn := testTxn(t, "TXN-1", date(2025, 11, 10), "Bunnings", "EXP-MATERIALS", "BANK", "45.5")
	txn.GSTInclusive = true
	txn.SourceBank = "cba"
	txn.ImportReference = "statement.csv:3"

	require.NoError(t, reg.SaveTransaction(txn))
	assert.FileExists(t, filepath.Join(dir, "2025-26", "transactions.jsonl"))
	require.NoError(t, reg.Reload())

	got, err := reg.Transaction("TXN-1", date(2025, 11, 10))
	require.NoError(t, err)
	assertSameJSON(t, txn, got)
	assert.True(t, reg.TransactionExists("TXN-1", date(2025, 11, 10)))
	assert.False(t, reg.TransactionExists("TXN-1", date(2025, 11, 11)))
}

func TestTransaction_DuplicateIsConflict(t *testing.T) {
	reg, _ := openTemp(t)
	txn := testTxn(t, "TXN-1", date(2025, 11, 10), "Fuel", "EXP-VEHICLE", "BANK", "80")

	require.NoError(t, reg.SaveTransaction(txn))
	err := reg.SaveTransaction(txn)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConflict)
	assert.Contains(t, err.Error(), "TXN-1")

	// Same id on another date is a different transaction.
	other := testTxn(t, "TXN-1", date(2025, 11, 11), "Fuel", "EXP-VEHICLE", "BANK", "80")
	require.NoError(t, reg.SaveTransaction(other))
}

func TestTransaction_UpdateAppendsThenCompacts(t *testing.T) {
	reg, dir := openTemp(t)
	d := date(2025, 11, 10)
	txn := testTxn(t, "TXN-1", d, "Unknown", "EXP-UNCLASSIFIED", "BANK", "20")

	err := reg.UpdateTransaction(txn)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, reg.SaveTransaction(txn))
	txn.Entries[0].AccountCode = "EXP-OFFICE"
	require.NoError(t, reg.UpdateTransaction(txn))

	path := filepath.Join(dir, "2025-26", "transactions.jsonl")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")), "update appends")

	require.NoError(t, reg.Reload())
	got, err := reg.Transaction("TXN-1", d)
	require.NoError(t, err)
	assert.Equal(t, "EXP-OFFICE", got.Entries[0].AccountCode)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(data, []byte("\n")), "load compacts")
}

func TestTransaction_LoadKeepsLastOccurrence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2025-26", "transactions.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	line := func(desc string) string {
		return `{"transaction_id":"TXN-1","date":"2025-08-01","description":"` + desc +
			`","entries":[{"account_code":"EXP-OFFICE","debit":"10","credit":"0"},{"account_code":"BANK","debit":"0","credit":"10"}],"gst_inclusive":false}`
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{line("first"), line("second"), line("third")}, "\n")+"\n"), 0o644))

	reg, err := Open(dir)
	require.NoError(t, err)
	got, err := reg.Transaction("TXN-1", date(2025, 8, 1))
	require.NoError(t, err)
	assert.Equal(t, "third", got.Description)

	// Loading again is a no-op on the already compacted file.
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, reg.Reload())
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTransaction_Delete(t *testing.T) {
	reg, dir := openTemp(t)
	d := date(2025, 8, 1)
	require.NoError(t, reg.SaveTransaction(testTxn(t, "TXN-1", d, "A", "EXP-OFFICE", "BANK", "10")))
	require.NoError(t, reg.SaveTransaction(testTxn(t, "TXN-2", d, "B", "EXP-OFFICE", "BANK", "20")))

	require.NoError(t, reg.DeleteTransaction("TXN-1", d))
	assert.False(t, reg.TransactionExists("TXN-1", d))
	require.NoError(t, reg.Reload())
	assert.False(t, reg.TransactionExists("TXN-1", d))
	assert.True(t, reg.TransactionExists("TXN-2", d))

	require.NoError(t, reg.DeleteTransaction("TXN-2", d))
	_, err := os.Stat(filepath.Join(dir, "2025-26", "transactions.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist, "empty year file removed")

	assert.ErrorIs(t, reg.DeleteTransaction("TXN-2", d), errs.ErrNotFound)
}

func TestTransaction_Void(t *testing.T) {
	reg, _ := openTemp(t)
	d := date(2025, 8, 1)
	orig := testTxn(t, "TXN-1", d, "Consulting", "BANK", "INC-SALES", "100")
	require.NoError(t, reg.SaveTransaction(orig))

	void, err := reg.VoidTransaction("TXN-1", d, "TXN-2", date(2025, 8, 5))
	require.NoError(t, err)
	assert.Equal(t, "VOID: Consulting (reverses TXN-1)", void.Description)
	require.Len(t, void.Entries, 2)
	for i := range orig.Entries {
		assert.Equal(t, orig.Entries[i].AccountCode, void.Entries[i].AccountCode)
		assert.True(t, orig.Entries[i].Debit.Equal(void.Entries[i].Credit))
		assert.True(t, orig.Entries[i].Credit.Equal(void.Entries[i].Debit))
	}

	still, err := reg.Transaction("TXN-1", d)
	require.NoError(t, err)
	assertSameJSON(t, orig, still)
	assert.True(t, reg.TransactionExists("TXN-2", date(2025, 8, 5)))

	_, err = reg.VoidTransaction("TXN-404", d, "TXN-3", d)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTransactions_FiltersAndOrder(t *testing.T) {
	reg, _ := openTemp(t)
	require.NoError(t, reg.SaveTransaction(testTxn(t, "TXN-B", date(2025, 8, 1), "Officeworks paper", "EXP-OFFICE", "BANK", "15")))
	require.NoError(t, reg.SaveTransaction(testTxn(t, "TXN-A", date(2025, 8, 1), "Caltex fuel", "EXP-UNCLASSIFIED", "BANK", "90")))
	require.NoError(t, reg.SaveTransaction(testTxn(t, "TXN-C", date(2025, 6, 30), "Invoice 7", "BANK", "INC-SALES", "550")))
	require.NoError(t, reg.SaveTransaction(testTxn(t, "TXN-D", date(2025, 9, 15), "Telstra", "EXP-PHONE", "BANK", "60")))

	ids := func(txns []model.Transaction) []string {
		var out []string
		for _, t := range txns {
			out = append(out, t.TransactionID)
		}
		return out
	}

	assert.Equal(t, []string{"TXN-C", "TXN-A", "TXN-B", "TXN-D"}, ids(reg.Transactions(TransactionFilter{})))
	assert.Equal(t, []string{"TXN-A", "TXN-B", "TXN-D"}, ids(reg.Transactions(TransactionFilter{FinancialYear: "2025-26"})))

	start, end := date(2025, 8, 1), date(2025, 8, 31)
	assert.Equal(t, []string{"TXN-A", "TXN-B"}, ids(reg.Transactions(TransactionFilter{Start: &start, End: &end})))

	assert.Equal(t, []string{"TXN-A"}, ids(reg.UnclassifiedTransactions("")))
	assert.Empty(t, reg.UnclassifiedTransactions("2024-25"))
	assert.Equal(t, []string{"TXN-C"}, ids(reg.TransactionsByAccount("INC-SALES", TransactionFilter{})))

	assert.Equal(t, []string{"TXN-A"}, ids(reg.SearchTransactions(TransactionQuery{Text: "CALTEX"})))
	assert.Equal(t, []string{"TXN-B"}, ids(reg.SearchTransactions(TransactionQuery{AccountCode: "EXP-OFFICE"})))

	lo, hi := dec("60"), dec("100")
	assert.Equal(t, []string{"TXN-C", "TXN-A", "TXN-D"}, ids(reg.SearchTransactions(TransactionQuery{MinAmount: &lo})))
	assert.Equal(t, []string{"TXN-A", "TXN-D"}, ids(reg.SearchTransactions(TransactionQuery{MinAmount: &lo, MaxAmount: &hi})))
}

func TestTransaction_ReturnedCopiesAreIsolated(t *testing.T) {
	reg, _ := openTemp(t)
	d := date(2025, 8, 1)
	txn := testTxn(t, "TXN-1", d, "A", "EXP-OFFICE", "BANK", "10")
	require.NoError(t, reg.SaveTransaction(txn))
	txn.Entries[0].AccountCode = "CHANGED"

	got, err := reg.Transaction("TXN-1", d)
	require.NoError(t, err)
	assert.Equal(t, "EXP-OFFICE", got.Entries[0].AccountCode)
}
