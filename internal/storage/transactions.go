package storage

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// TransactionFilter narrows transaction listings. Zero fields match everything.
type TransactionFilter struct {
	FinancialYear string
	Start         *civil.Date // inclusive
	End           *civil.Date // inclusive
}

func (f TransactionFilter) match(t model.Transaction) bool {
	if f.FinancialYear != "" && t.FinancialYear() != f.FinancialYear {
		return false
	}
	if f.Start != nil && t.Date.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Date.After(*f.End) {
		return false
	}
	return true
}

// TransactionQuery combines a TransactionFilter with search criteria.
type TransactionQuery struct {
	TransactionFilter
	Text        string // case-insensitive substring of the description
	AccountCode string
	MinAmount   *decimal.Decimal // some entry has a debit or credit >= MinAmount
	MaxAmount   *decimal.Decimal // some entry has a non-zero debit or credit <= MaxAmount
}

func (r *Registry) transactionLog(fy string) jsonlLog[model.Transaction] {
	return jsonlLog[model.Transaction]{path: r.path(fy, transactionsFile)}
}

func (r *Registry) loadTransactions(fyDirs []string) error {
	for _, fyDir := range fyDirs {
		log := r.transactionLog(filepath.Base(fyDir))
		recs, err := log.Load()
		if err != nil {
			return fmt.Errorf("loading transactions: %w", err)
		}
		if recs == nil {
			continue
		}
		kept := lastWins(recs, model.Transaction.Key)
		for _, t := range kept {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("loading transaction %s: %w", t.Key(), err)
			}
			r.transactions[t.Key()] = t
		}
		if err := log.Compact(kept); err != nil {
			return fmt.Errorf("compacting transactions: %w", err)
		}
		r.log.Debug().
			Str("file", log.path).
			Int("lines", len(recs)).
			Int("transactions", len(kept)).
			Msg("compacted transactions")
	}
	return nil
}

// SaveTransaction stores a new transaction. A transaction with the same id
// and date is a conflict.
func (r *Registry) SaveTransaction(t model.Transaction) error {
	key := t.Key()
	if _, ok := r.transactions[key]; ok {
		return fmt.Errorf("transaction %s: %w", key, errs.ErrConflict)
	}
	return r.appendTransaction(t, "saved transaction")
}

// UpdateTransaction replaces an existing transaction by appending the new
// record; the earlier line is dropped at the next load.
func (r *Registry) UpdateTransaction(t model.Transaction) error {
	key := t.Key()
	if _, ok := r.transactions[key]; !ok {
		return fmt.Errorf("transaction %s: %w", key, errs.ErrNotFound)
	}
	return r.appendTransaction(t, "updated transaction")
}

func (r *Registry) appendTransaction(t model.Transaction, msg string) error {
	stored := t.Clone()
	if err := r.transactionLog(stored.FinancialYear()).Append(stored); err != nil {
		return fmt.Errorf("writing transaction %s: %w", stored.Key(), err)
	}
	r.transactions[stored.Key()] = stored
	r.log.Debug().Str("transaction", stored.Key().String()).Msg(msg)
	return nil
}

// Transaction returns the transaction with the given id and date.
func (r *Registry) Transaction(transactionID string, date civil.Date) (model.Transaction, error) {
	key := model.TransactionKey{ID: transactionID, Date: date}
	t, ok := r.transactions[key]
	if !ok {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", key, errs.ErrNotFound)
	}
	return t.Clone(), nil
}

// TransactionExists reports whether the id and date are stored.
func (r *Registry) TransactionExists(transactionID string, date civil.Date) bool {
	_, ok := r.transactions[model.TransactionKey{ID: transactionID, Date: date}]
	return ok
}

// DeleteTransaction removes a transaction and rewrites its year's file.
func (r *Registry) DeleteTransaction(transactionID string, date civil.Date) error {
	key := model.TransactionKey{ID: transactionID, Date: date}
	prev, ok := r.transactions[key]
	if !ok {
		return fmt.Errorf("transaction %s: %w", key, errs.ErrNotFound)
	}
	delete(r.transactions, key)

	fy := model.FinancialYear(date)
	remaining := r.Transactions(TransactionFilter{FinancialYear: fy})
	if err := r.transactionLog(fy).Compact(remaining); err != nil {
		r.transactions[key] = prev
		return fmt.Errorf("deleting transaction %s: %w", key, err)
	}
	r.log.Debug().Str("transaction", key.String()).Msg("deleted transaction")
	return nil
}

// VoidTransaction saves a reversing transaction with id newID dated on, and
// returns it. The original is left unchanged.
func (r *Registry) VoidTransaction(transactionID string, date civil.Date, newID string, on civil.Date) (model.Transaction, error) {
	orig, err := r.Transaction(transactionID, date)
	if err != nil {
		return model.Transaction{}, err
	}
	rev := orig.Reversal(newID, on)
	if err := rev.Validate(); err != nil {
		return model.Transaction{}, fmt.Errorf("voiding transaction %s: %w", orig.Key(), err)
	}
	if err := r.SaveTransaction(rev); err != nil {
		return model.Transaction{}, err
	}
	return rev.Clone(), nil
}

// Transactions returns matching transactions ordered by date then id.
func (r *Registry) Transactions(f TransactionFilter) []model.Transaction {
	var out []model.Transaction
	for _, t := range r.transactions {
		if f.match(t) {
			out = append(out, t.Clone())
		}
	}
	sortTransactions(out)
	return out
}

// TransactionsByAccount returns matching transactions with an entry posted
// to accountCode.
func (r *Registry) TransactionsByAccount(accountCode string, f TransactionFilter) []model.Transaction {
	return r.SearchTransactions(TransactionQuery{TransactionFilter: f, AccountCode: accountCode})
}

// UnclassifiedTransactions returns transactions in fy (all years when
// empty) that still have an unclassified entry.
func (r *Registry) UnclassifiedTransactions(fy string) []model.Transaction {
	var out []model.Transaction
	for _, t := range r.Transactions(TransactionFilter{FinancialYear: fy}) {
		if t.IsUnclassified() {
			out = append(out, t)
		}
	}
	return out
}

// SearchTransactions applies every criterion in q.
func (r *Registry) SearchTransactions(q TransactionQuery) []model.Transaction {
	text := strings.ToLower(q.Text)
	var out []model.Transaction
	for _, t := range r.Transactions(q.TransactionFilter) {
		if text != "" && !strings.Contains(strings.ToLower(t.Description), text) {
			continue
		}
		if q.AccountCode != "" && !t.HasAccount(q.AccountCode) {
			continue
		}
		if q.MinAmount != nil && !anyEntry(t, func(e model.JournalEntry) bool {
			return e.Debit.GreaterThanOrEqual(*q.MinAmount) || e.Credit.GreaterThanOrEqual(*q.MinAmount)
		}) {
			continue
		}
		if q.MaxAmount != nil && !anyEntry(t, func(e model.JournalEntry) bool {
			return (e.Debit.IsPositive() && e.Debit.LessThanOrEqual(*q.MaxAmount)) ||
				(e.Credit.IsPositive() && e.Credit.LessThanOrEqual(*q.MaxAmount))
		}) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func anyEntry(t model.Transaction, pred func(model.JournalEntry) bool) bool {
	for _, e := range t.Entries {
		if pred(e) {
			return true
		}
	}
	return false
}

func sortTransactions(txns []model.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		a, b := txns[i], txns[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.TransactionID < b.TransactionID
	})
}
