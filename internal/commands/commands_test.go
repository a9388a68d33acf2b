package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func fixedToday(t *testing.T, d civil.Date) {
	t.Helper()
	prev := today
	today = func() civil.Date { return d }
	t.Cleanup(func() { today = prev })
}

// run executes the CLI in-process against dir and returns what it wrote to
// stdout. Logs and usage go to the test log.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	defer func() {
		if stderr.Len() > 0 {
			t.Log(stderr.String())
		}
	}()
	if dir != "" {
		args = append([]string{"--data-dir", dir}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

// newBusiness runs init in a temp dir and returns the business directory.
func newBusiness(t *testing.T) string {
	t.Helper()
	parent := t.TempDir()
	out := mustRun(t, "", "init", parent, "--name", "Earthworks Studio", "--abn", "12 345 678 901")
	dir := filepath.Join(parent, "earthworks_studio")
	assert.Contains(t, out, "Initialized Earthworks Studio at "+dir)
	return dir
}

func openReg(t *testing.T, dir string) *storage.Registry {
	t.Helper()
	reg, err := storage.Open(dir)
	require.NoError(t, err)
	return reg
}

func TestInit(t *testing.T) {
	dir := newBusiness(t)
	for _, f := range []string{
		"config/settings.json",
		"config/chart_of_accounts.yaml",
		"config/smallbiz.yaml",
		"config/classification_rules.yaml",
		"imports/processed",
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	// A second init into the same parent is refused.
	_, err := run(t, "", "init", filepath.Dir(dir), "--name", "Earthworks Studio")
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestCommands_RequireBusinessDir(t *testing.T) {
	_, err := run(t, t.TempDir(), "client", "list")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestClientCommands(t *testing.T) {
	dir := newBusiness(t)

	mustRun(t, dir, "client", "add", "Acme Pty Ltd", "--email", "ap@acme.example", "--contact", "Jo Smith")
	mustRun(t, dir, "client", "add", "Bright Homes")

	out := mustRun(t, dir, "client", "list")
	assert.Contains(t, out, "Acme Pty Ltd")
	assert.Contains(t, out, "Bright Homes")

	out = mustRun(t, dir, "client", "show", "acme pty ltd")
	assert.Contains(t, out, "Jo Smith")
	assert.Contains(t, out, "ap@acme.example")

	_, err := run(t, dir, "client", "add", "Bad", "--email", "not-an-email")
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = run(t, dir, "client", "show", "Nobody")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestQuoteToPaidInvoice(t *testing.T) {
	fixedToday(t, date(2025, 11, 3))
	dir := newBusiness(t)
	mustRun(t, dir, "client", "add", "Acme Pty Ltd")

	out := mustRun(t, dir, "quote", "new", "--client", "Acme Pty Ltd",
		"--item", "Site survey=1@450", "--item", "Drafting=6@95.50")
	// 450 + 573 = 1023 ex GST, plus 102.30 GST.
	assert.Contains(t, out, "total 1125.30 (GST 102.30)")
	assert.Contains(t, out, "valid until 2025-12-03")

	quotes := openReg(t, dir).Quotes(storage.DocumentFilter{})
	require.Len(t, quotes, 1)
	quoteID := quotes[0].QuoteID

	out = mustRun(t, dir, "quote", "send", quoteID)
	assert.Contains(t, out, "is now sent (version 2)")

	_, err := run(t, dir, "quote", "send", quoteID)
	assert.ErrorIs(t, err, errs.ErrInvalid, "only drafts can be sent")

	mustRun(t, dir, "quote", "accept", quoteID, "--scheduled", "2025-11-10")
	jobs := openReg(t, dir).Jobs(storage.DocumentFilter{})
	require.Len(t, jobs, 1)
	jobID := jobs[0].JobID
	assert.Equal(t, quoteID, jobs[0].QuoteID)

	_, err = run(t, dir, "job", "invoice", jobID)
	assert.ErrorIs(t, err, errs.ErrInvalid, "job must be completed first")

	mustRun(t, dir, "job", "start", jobID, "--date", "2025-11-10")
	out = mustRun(t, dir, "job", "complete", jobID, "--date", "2025-11-12")
	assert.Contains(t, out, "is now completed")

	out = mustRun(t, dir, "job", "invoice", jobID, "--date", "2025-11-12")
	assert.Contains(t, out, "total 1125.30, due 2025-12-12")

	invoices := openReg(t, dir).Invoices(storage.DocumentFilter{})
	require.Len(t, invoices, 1)
	invoiceID := invoices[0].InvoiceID

	out = mustRun(t, dir, "job", "list")
	assert.Contains(t, out, "invoiced")

	out = mustRun(t, dir, "invoice", "pay", invoiceID, "--ref", "EFT-991", "--date", "2025-11-20")
	assert.Contains(t, out, "Recorded payment of 1125.30")

	out = mustRun(t, dir, "invoice", "show", invoiceID)
	assert.Contains(t, out, "(paid)")
	assert.Contains(t, out, "ref EFT-991")

	_, err = run(t, dir, "invoice", "cancel", invoiceID)
	assert.ErrorIs(t, err, errs.ErrInvalid, "paid invoices cannot be cancelled")

	out = mustRun(t, dir, "quote", "list", "--all-versions")
	assert.Equal(t, 3, strings.Count(out, quoteID), "draft, sent and accepted versions")
}

func TestQuoteNew_BadItem(t *testing.T) {
	dir := newBusiness(t)
	mustRun(t, dir, "client", "add", "Acme Pty Ltd")

	_, err := run(t, dir, "quote", "new", "--client", "Acme Pty Ltd", "--item", "Survey 450")
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = run(t, dir, "quote", "new", "--client", "Nobody", "--item", "Survey=1@450")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestTxnCommands(t *testing.T) {
	fixedToday(t, date(2025, 11, 30))
	dir := newBusiness(t)

	out := mustRun(t, dir, "txn", "add", "--date", "2025-11-03", "--desc", "Office chair",
		"--debit", "exp-office=220", "--credit", "BANK-CHQ=220", "--gst-inclusive")
	assert.Contains(t, out, "Office chair 220.00")

	_, err := run(t, dir, "txn", "add", "--desc", "Unbalanced", "--debit", "EXP-OFFICE=10", "--credit", "BANK-CHQ=9")
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = run(t, dir, "txn", "add", "--desc", "Unknown", "--debit", "EXP-NOPE=10", "--credit", "BANK-CHQ=10")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	txns := openReg(t, dir).Transactions(storage.TransactionFilter{})
	require.Len(t, txns, 1)
	txnID := txns[0].TransactionID

	out = mustRun(t, dir, "txn", "search", "chair", "--min", "200")
	assert.Contains(t, out, txnID)
	out = mustRun(t, dir, "txn", "search", "chair", "--min", "500")
	assert.NotContains(t, out, txnID)

	out = mustRun(t, dir, "txn", "list", "--account", "EXP-OFFICE")
	assert.Contains(t, out, "Office chair")

	out = mustRun(t, dir, "report", "balance", "EXP-OFFICE")
	assert.Contains(t, out, "220.00")

	out = mustRun(t, dir, "txn", "void", txnID)
	assert.Contains(t, out, "Voided "+txnID+"@2025-11-03")
	out = mustRun(t, dir, "report", "balance", "EXP-OFFICE")
	assert.Contains(t, out, ": 0.00")

	mustRun(t, dir, "txn", "delete", txnID+"@2025-11-03")
	assert.Len(t, openReg(t, dir).Transactions(storage.TransactionFilter{}), 1, "only the reversal is left")

	_, err = run(t, dir, "txn", "delete", txnID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func copyStatement(t *testing.T, dir string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "bank", "testdata", "westpac.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imports", "westpac.csv"), data, 0o644))
}

func TestImportAndClassify(t *testing.T) {
	fixedToday(t, date(2025, 11, 30))
	dir := newBusiness(t)

	_, err := run(t, dir, "import")
	assert.ErrorIs(t, err, errs.ErrNotFound, "no bank formats yet")

	mustRun(t, dir, "bank-format", "add", "westpac",
		"--description-column", "Narrative",
		"--debit-column", "Debit Amount", "--credit-column", "Credit Amount",
		"--balance-column", "Balance", "--date-format", "%d/%m/%Y")
	out := mustRun(t, dir, "bank-format", "list")
	assert.Contains(t, out, "westpac")

	copyStatement(t, dir)
	out = mustRun(t, dir, "import", "--account-name", "Business Cheque")
	assert.Contains(t, out, "westpac.csv: 4 imported, 0 duplicates")
	_, err = os.Stat(filepath.Join(dir, "imports", "processed", "westpac.csv"))
	require.NoError(t, err)

	// Importing the same statement again finds only duplicates.
	copyStatement(t, dir)
	out = mustRun(t, dir, "import")
	assert.Contains(t, out, "westpac.csv: 0 imported, 4 duplicates")

	out = mustRun(t, dir, "txn", "list", "--unclassified")
	assert.Contains(t, out, "CALTEX STAR MART 1234")

	mustRun(t, dir, "classify", "rule", "add", "caltex", "--account", "EXP-VEHICLE", "--desc", "Fuel", "--gst-inclusive")
	out = mustRun(t, dir, "classify", "run")
	assert.Contains(t, out, "3 transactions: 1 accepted, 2 pending")
	assert.Contains(t, out, "BUNNINGS 6221 PERTH")

	var bunnings string
	for _, txn := range openReg(t, dir).UnclassifiedTransactions("") {
		if strings.HasPrefix(txn.Description, "BUNNINGS") {
			bunnings = txn.TransactionID
		}
	}
	require.NotEmpty(t, bunnings)

	out = mustRun(t, dir, "classify", "txn", bunnings, "--account", "EXP-MATERIALS", "--label", "Materials", "--gst-inclusive")
	assert.Contains(t, out, "manual")
	assert.Contains(t, out, "Learned rule")

	out = mustRun(t, dir, "classify", "rule", "list")
	assert.Contains(t, out, "EXP-VEHICLE")
	assert.Contains(t, out, "EXP-MATERIALS")

	out = mustRun(t, dir, "report", "balance", "EXP-VEHICLE")
	assert.Contains(t, out, "80.00")

	_, err = run(t, dir, "classify", "txn", bunnings)
	assert.ErrorIs(t, err, errs.ErrInvalid, "needs --accept or --account")
}

func TestReports(t *testing.T) {
	fixedToday(t, date(2025, 11, 30))
	dir := newBusiness(t)

	mustRun(t, dir, "txn", "add", "--date", "2025-07-10", "--desc", "Sale to Acme",
		"--debit", "BANK-CHQ=330", "--credit", "INC-SALES=330", "--gst-inclusive")
	mustRun(t, dir, "txn", "add", "--date", "2025-07-12", "--desc", "Bunnings",
		"--debit", "EXP-MATERIALS=55", "--credit", "BANK-CHQ=55", "--gst-inclusive")

	out := mustRun(t, dir, "report", "pl", "--fy", "2025-26")
	assert.Contains(t, out, "Profit and loss 2025-07-01 to 2026-06-30")
	assert.Contains(t, out, "275.00")

	out = mustRun(t, dir, "report", "bas", "--from", "2025-07-01", "--to", "2025-09-30", "--csv")
	assert.Contains(t, out, "330.00")
	assert.Contains(t, out, "25.00", "30 collected less 5 paid")

	out = mustRun(t, dir, "report", "bs", "--save")
	assert.Contains(t, out, "Balance sheet as of 2025-11-30")
	assert.NotContains(t, out, "WARNING")
	_, err := os.Stat(filepath.Join(dir, "reports", "balance_sheet_2025-11-30.csv"))
	assert.NoError(t, err)

	out = mustRun(t, dir, "report", "check")
	assert.Contains(t, out, "2 transactions OK")

	out = mustRun(t, dir, "report", "ledger")
	assert.Equal(t, 5, strings.Count(strings.TrimSpace(out), "\n")+1, "header plus two entries per transaction")

	_, err = run(t, dir, "report", "pl", "--fy", "2025-27")
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestPeriod(t *testing.T) {
	fixedToday(t, date(2025, 11, 30))

	start, end, err := period("", "", "")
	require.NoError(t, err)
	assert.Equal(t, date(2025, 7, 1), start)
	assert.Equal(t, date(2026, 6, 30), end)

	start, end, err = period("2024-25", "", "2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 7, 1), start)
	assert.Equal(t, date(2024, 12, 31), end)

	_, _, err = period("", "2025-10-01", "2025-09-30")
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestParseItem(t *testing.T) {
	li, err := parseItem("Excavation = 2.5@120", false)
	require.NoError(t, err)
	assert.Equal(t, "Excavation", li.Description)
	assert.Equal(t, "300.00", li.Subtotal().StringFixed(2))

	_, err = parseItem("Pipe 90mm=2@45@x", true)
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = parseItem("=1@2", false)
	assert.Error(t, err)
}
