package bank

import (
	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// MemoAccount balances zero-amount rows such as opening balances.
const MemoAccount = "MEMO"

var memoAmount = decimal.RequireFromString("0.01")

// Convert turns a bank row into a balanced transaction. Money out debits
// expenseCode, money in credits incomeCode, and the other side always
// posts to bankAccount. A zero row becomes a 0.01 bank/memo pair.
func Convert(bt BankTransaction, txnID, bankAccount, expenseCode, incomeCode string) (model.Transaction, error) {
	amount := bt.Amount().Abs()

	var entries []model.JournalEntry
	switch {
	case amount.IsZero():
		entries = []model.JournalEntry{
			model.Debit(bankAccount, memoAmount),
			model.Credit(MemoAccount, memoAmount),
		}
	case bt.IsDebit():
		entries = []model.JournalEntry{
			model.Debit(expenseCode, amount),
			model.Credit(bankAccount, amount),
		}
	default:
		entries = []model.JournalEntry{
			model.Debit(bankAccount, amount),
			model.Credit(incomeCode, amount),
		}
	}
	return model.NewTransaction(txnID, bt.Date, bt.Description, entries...)
}

type dupKey struct {
	date        string
	description string
	amount      string
}

func keyOf(bt BankTransaction) dupKey {
	return dupKey{bt.Date.String(), bt.Description, bt.Amount().StringFixed(2)}
}

// netMovement reconstructs a stored transaction's bank row amount from its
// entry on bankAccount. ok is false when the transaction never touched it.
func netMovement(txn model.Transaction, bankAccount string) (decimal.Decimal, bool) {
	if txn.HasAccount(MemoAccount) {
		return decimal.Zero, txn.HasAccount(bankAccount)
	}
	for _, e := range txn.Entries {
		if e.AccountCode != bankAccount {
			continue
		}
		if e.Debit.IsPositive() {
			return model.RoundCents(e.Debit), true
		}
		return model.RoundCents(e.Credit.Neg()), true
	}
	return decimal.Zero, false
}

// duplicateIndex remembers (date, description, net amount) of stored
// transactions.
type duplicateIndex map[dupKey]bool

// newDuplicateIndex indexes existing. With byAccount set only transactions
// posting to bankAccount count. Otherwise a transaction without a bank
// entry is indexed under both signs of its amount.
func newDuplicateIndex(existing []model.Transaction, bankAccount string, byAccount bool) duplicateIndex {
	idx := make(duplicateIndex)
	for _, txn := range existing {
		net, ok := netMovement(txn, bankAccount)
		if ok {
			idx[dupKey{txn.Date.String(), txn.Description, net.StringFixed(2)}] = true
			continue
		}
		if byAccount {
			continue
		}
		amt := txn.Amount()
		idx[dupKey{txn.Date.String(), txn.Description, amt.StringFixed(2)}] = true
		idx[dupKey{txn.Date.String(), txn.Description, amt.Neg().StringFixed(2)}] = true
	}
	return idx
}

// IsDuplicate reports whether bt matches a stored transaction.
func (d duplicateIndex) IsDuplicate(bt BankTransaction) bool {
	return d[keyOf(bt)]
}
