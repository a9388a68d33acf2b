package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// Problem describes a single ledger invariant violation.
type Problem struct {
	Invariant     int
	TransactionID string
	Description   string
}

func (p Problem) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", p.Invariant, p.TransactionID, p.Description)
}

// AccountChecker tests whether an account code exists in the chart of accounts.
type AccountChecker interface {
	Exists(code string) bool
}

// CheckLedger enforces five invariants over stored transactions:
//
//  1. debits equal credits
//  2. each entry has exactly one of debit or credit
//  3. each entry posts to a known account
//  4. amounts have at most two decimal places
//  5. no entry is still unclassified
func CheckLedger(txns []model.Transaction, accounts AccountChecker) []Problem {
	var problems []Problem
	add := func(inv int, t model.Transaction, format string, args ...any) {
		problems = append(problems, Problem{
			Invariant:     inv,
			TransactionID: t.Key().String(),
			Description:   fmt.Sprintf(format, args...),
		})
	}

	hundred := decimal.NewFromInt(100)
	twoPlaces := func(d decimal.Decimal) bool {
		return d.Mul(hundred).Equal(d.Mul(hundred).Floor())
	}

	for _, t := range txns {
		totalDebit, totalCredit := decimal.Zero, decimal.Zero
		for _, e := range t.Entries {
			totalDebit = totalDebit.Add(e.Debit)
			totalCredit = totalCredit.Add(e.Credit)

			if e.Debit.IsZero() == e.Credit.IsZero() {
				add(2, t, "entry %s must have exactly one of debit or credit", e.AccountCode)
			}
			if e.IsUnclassified() {
				add(5, t, "entry %s is unclassified", e.AccountCode)
			} else if !accounts.Exists(e.AccountCode) {
				add(3, t, "unknown account %s", e.AccountCode)
			}
			if !twoPlaces(e.Debit) || !twoPlaces(e.Credit) {
				add(4, t, "entry %s has more than 2 decimal places", e.AccountCode)
			}
		}
		if !totalDebit.Equal(totalCredit) {
			add(1, t, "debits (%s) != credits (%s)", totalDebit.StringFixed(2), totalCredit.StringFixed(2))
		}
	}
	return problems
}
