// Package reports folds stored transactions into account balances and the
// profit and loss, balance sheet and BAS statements.
package reports

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

// Source supplies transactions. *storage.Registry satisfies it.
type Source interface {
	Transactions(storage.TransactionFilter) []model.Transaction
}

func upTo(src Source, asOf civil.Date) []model.Transaction {
	return src.Transactions(storage.TransactionFilter{End: &asOf})
}

func between(src Source, start, end civil.Date) []model.Transaction {
	return src.Transactions(storage.TransactionFilter{Start: &start, End: &end})
}

// AccountBalance returns debits minus credits posted to code on or before
// asOf, across every financial year. Callers flip the sign for credit-normal
// accounts.
func AccountBalance(src Source, code string, asOf civil.Date) decimal.Decimal {
	return debitBalances(upTo(src, asOf))[code]
}

// NormalBalance is AccountBalance in the natural sign of the account's type,
// so income, liabilities and equity come back positive.
func NormalBalance(src Source, chart model.ChartOfAccounts, code string, asOf civil.Date) (decimal.Decimal, error) {
	a, err := chart.Account(code)
	if err != nil {
		return decimal.Zero, err
	}
	return normalBalance(a.Type, AccountBalance(src, code, asOf)), nil
}

// AccountTransactions returns the transactions on or before asOf with at
// least one entry on code, oldest first.
func AccountTransactions(src Source, code string, asOf civil.Date) []model.Transaction {
	var out []model.Transaction
	for _, t := range upTo(src, asOf) {
		if t.HasAccount(code) {
			out = append(out, t)
		}
	}
	return out
}

// debitBalances sums debit minus credit per account code.
func debitBalances(txns []model.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txns {
		for _, e := range t.Entries {
			out[e.AccountCode] = out[e.AccountCode].Add(e.Debit).Sub(e.Credit)
		}
	}
	return out
}

// normalBalance converts a debit balance to the account type's natural sign.
func normalBalance(t model.AccountType, debit decimal.Decimal) decimal.Decimal {
	switch t {
	case model.AccountTypeAsset, model.AccountTypeExpense:
		return debit
	default:
		return debit.Neg()
	}
}
