package bank

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/auditlog"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

func westpacOptions() ImportOptions {
	return ImportOptions{
		BankName:            "Westpac",
		AccountName:         "Business Cheque",
		BankAccount:         "BANK-CHQ",
		ExpenseAccount:      "EXP-UNCLASSIFIED",
		IncomeAccount:       "INC-UNCLASSIFIED",
		DuplicatesByAccount: true,
	}
}

func fixedNow(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func TestImport(t *testing.T) {
	fixedNow(t)
	reg, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	p := mustParser(t, westpacFormat)

	res, err := Import(ctx, reg, "testdata/westpac.csv", p, westpacOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Imported)
	assert.Equal(t, 0, res.Duplicates)
	require.Len(t, res.Transactions, 4)

	first := res.Transactions[0]
	assert.Regexp(t, `^TXN-20251103-[0-9A-F]{3}$`, first.TransactionID)
	assert.Equal(t, "Westpac", first.SourceBank)
	assert.Equal(t, "Business Cheque", first.SourceAccount)
	assert.Equal(t, "westpac.csv#1", first.ImportReference)
	assert.True(t, first.IsUnclassified())

	assert.Len(t, reg.UnclassifiedTransactions("2025-26"), 3, "memo row has no unclassified entry")
	assert.Len(t, reg.Transactions(storage.TransactionFilter{}), 4)

	// The same file again is all duplicates.
	res, err = Import(ctx, reg, "testdata/westpac.csv", p, westpacOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 4, res.Duplicates)
	assert.Len(t, reg.Transactions(storage.TransactionFilter{}), 4)

	entries, err := auditlog.Read(reg.Dir(), auditlog.ImportLog)
	require.NoError(t, err)
	require.Len(t, entries, 8)
	assert.Equal(t, "imported", entries[0].Action)
	assert.Equal(t, "BANK-CHQ", entries[0].AccountCode)
	assert.Equal(t, "duplicate", entries[7].Action)
}

func TestImport_OtherAccountNotDuplicate(t *testing.T) {
	reg, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	p := mustParser(t, westpacFormat)

	_, err = Import(ctx, reg, "testdata/westpac.csv", p, westpacOptions())
	require.NoError(t, err)

	opts := westpacOptions()
	opts.AccountName = "Savings"
	opts.BankAccount = "BANK-SAV"
	res, err := Import(ctx, reg, "testdata/westpac.csv", p, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Imported)
}

func TestImport_SpansFinancialYears(t *testing.T) {
	reg, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	p := mustParser(t, commbankFormat)
	opts := westpacOptions()
	opts.BankName = "CommBank"

	res, err := Import(ctx, reg, "testdata/commbank.csv", p, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, reg.Transactions(storage.TransactionFilter{FinancialYear: "2024-25"}), 1)
	assert.Len(t, reg.Transactions(storage.TransactionFilter{FinancialYear: "2025-26"}), 1)

	res, err = Import(ctx, reg, "testdata/commbank.csv", p, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Duplicates)
}

func TestImport_Errors(t *testing.T) {
	reg, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	p := mustParser(t, westpacFormat)

	_, err = Import(context.Background(), reg, "testdata/westpac.csv", p, ImportOptions{BankName: "Westpac"})
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = Import(context.Background(), reg, "testdata/missing.csv", p, westpacOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanAndMarkProcessed(t *testing.T) {
	dir := t.TempDir()

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, files)

	imports := filepath.Join(dir, "imports")
	require.NoError(t, os.MkdirAll(filepath.Join(imports, "processed"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imports, "b.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imports, "A.CSV"), []byte("xy"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imports, "notes.txt"), []byte("x"), 0o644))

	files, err = Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "A.CSV", files[0].Name)
	assert.Equal(t, int64(2), files[0].Size)
	assert.Equal(t, filepath.Join(imports, "b.csv"), files[1].Path)

	require.NoError(t, MarkProcessed(dir, "b.csv"))
	_, err = os.Stat(filepath.Join(imports, "processed", "b.csv"))
	assert.NoError(t, err)

	files, err = Scan(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	assert.Error(t, MarkProcessed(dir, "b.csv"))
}
