package bank

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/smallbiz-dev/smallbiz/internal/auditlog"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/id"
	"github.com/smallbiz-dev/smallbiz/internal/logger"
	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

// Store is the part of the storage registry an import needs.
type Store interface {
	Dir() string
	Transactions(storage.TransactionFilter) []model.Transaction
	TransactionExists(id string, date civil.Date) bool
	SaveTransaction(model.Transaction) error
}

// ImportOptions names the statement and the accounts rows are posted to.
type ImportOptions struct {
	BankName            string
	AccountName         string
	BankAccount         string
	ExpenseAccount      string
	IncomeAccount       string
	DuplicatesByAccount bool
}

func (o ImportOptions) validate() error {
	var missing []string
	if o.BankName == "" {
		missing = append(missing, "bank name")
	}
	if o.AccountName == "" {
		missing = append(missing, "account name")
	}
	if o.BankAccount == "" {
		missing = append(missing, "bank account code")
	}
	if o.ExpenseAccount == "" {
		missing = append(missing, "expense account code")
	}
	if o.IncomeAccount == "" {
		missing = append(missing, "income account code")
	}
	if len(missing) > 0 {
		return fmt.Errorf("import options: missing %s: %w", strings.Join(missing, ", "), errs.ErrInvalid)
	}
	return nil
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported     int
	Duplicates   int
	Transactions []model.Transaction // the saved transactions, in file order
}

// now is replaced in tests.
var now = time.Now

const maxIDAttempts = 20

// ParseFile reads path with parser into a Statement.
func ParseFile(path string, parser Parser, bankName, accountName string, today civil.Date) (Statement, error) {
	f, err := os.Open(path)
	if err != nil {
		return Statement{}, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	txns, err := parser.Parse(f)
	if err != nil {
		return Statement{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return Statement{
		BankName:     bankName,
		AccountName:  accountName,
		ImportDate:   today,
		Transactions: txns,
	}, nil
}

// Import parses path and saves every row that is not already stored as an
// unclassified transaction. Rows within one file are never compared with
// each other, only with what was stored before the import began.
func Import(ctx context.Context, store Store, path string, parser Parser, opts ImportOptions) (ImportResult, error) {
	if err := opts.validate(); err != nil {
		return ImportResult{}, err
	}
	log := logger.FromContext(ctx)

	stmt, err := ParseFile(path, parser, opts.BankName, opts.AccountName, civil.DateOf(now()))
	if err != nil {
		return ImportResult{}, err
	}

	dups := newDuplicateIndex(existingFor(store, stmt), opts.BankAccount, opts.DuplicatesByAccount)
	source := filepath.Base(path)

	var res ImportResult
	var audit []auditlog.Entry
	for i, bt := range stmt.Transactions {
		ref := fmt.Sprintf("%s#%d", source, i+1)
		if dups.IsDuplicate(bt) {
			res.Duplicates++
			audit = append(audit, importEntry("duplicate", "", "", fmt.Sprintf("%s %s %s (%s)", bt.Date, bt.Description, bt.Amount().StringFixed(2), ref)))
			continue
		}

		txnID, err := freeTransactionID(store, bt.Date)
		if err != nil {
			return res, err
		}
		txn, err := Convert(bt, txnID, opts.BankAccount, opts.ExpenseAccount, opts.IncomeAccount)
		if err != nil {
			return res, fmt.Errorf("converting %s: %w", ref, err)
		}
		txn.SourceBank = opts.BankName
		txn.SourceAccount = opts.AccountName
		txn.ImportReference = ref

		if err := store.SaveTransaction(txn); err != nil {
			return res, fmt.Errorf("saving %s: %w", ref, err)
		}
		res.Imported++
		res.Transactions = append(res.Transactions, txn)
		audit = append(audit, importEntry("imported", txn.TransactionID, opts.BankAccount, fmt.Sprintf("%s (%s)", txn.Description, ref)))
	}

	if err := auditlog.Append(store.Dir(), auditlog.ImportLog, audit); err != nil {
		return res, fmt.Errorf("recording import: %w", err)
	}
	log.Info().
		Str("file", source).
		Str("bank", opts.BankName).
		Int("imported", res.Imported).
		Int("duplicates", res.Duplicates).
		Msg("bank statement imported")
	return res, nil
}

// existingFor returns stored transactions in every financial year the
// statement touches.
func existingFor(store Store, stmt Statement) []model.Transaction {
	years := make(map[string]bool)
	for _, bt := range stmt.Transactions {
		years[model.FinancialYear(bt.Date)] = true
	}
	var out []model.Transaction
	for fy := range years {
		out = append(out, store.Transactions(storage.TransactionFilter{FinancialYear: fy})...)
	}
	return out
}

func freeTransactionID(store Store, day civil.Date) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		txnID := id.NewTransactionID(day)
		if !store.TransactionExists(txnID, day) {
			return txnID, nil
		}
	}
	return "", fmt.Errorf("no free transaction id for %s after %d attempts: %w", day, maxIDAttempts, errs.ErrConflict)
}

func importEntry(action, txnID, account, details string) auditlog.Entry {
	return auditlog.Entry{
		Timestamp:     now().UTC(),
		Source:        "import",
		Action:        action,
		TransactionID: txnID,
		AccountCode:   account,
		Details:       details,
	}
}

const (
	importDir    = "imports"
	processedDir = "processed"
)

// FileInfo describes a CSV file waiting in the imports directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns CSV files in <dataDir>/imports/, sorted by name.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading imports dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// MarkProcessed moves a file from imports/ to imports/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, importDir, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
