// Package bank parses bank statement CSV exports and imports them as
// unclassified double-entry transactions.
package bank

import (
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// BankTransaction is one row of a bank statement. Debit is money leaving
// the account, Credit money arriving; both are non-negative.
type BankTransaction struct {
	Date        civil.Date
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     *decimal.Decimal
}

// Amount is the net movement, credit minus debit, rounded to cents.
func (t BankTransaction) Amount() decimal.Decimal {
	return model.RoundCents(t.Credit.Sub(t.Debit))
}

// IsDebit reports whether money left the account.
func (t BankTransaction) IsDebit() bool {
	return t.Debit.IsPositive()
}

// Validate rejects a missing date, a blank description and negative amounts.
func (t BankTransaction) Validate() error {
	var problems []string
	if !t.Date.IsValid() {
		problems = append(problems, "date is not valid")
	}
	if strings.TrimSpace(t.Description) == "" {
		problems = append(problems, "description must not be empty")
	}
	if t.Debit.IsNegative() {
		problems = append(problems, fmt.Sprintf("debit must not be negative, got %s", t.Debit))
	}
	if t.Credit.IsNegative() {
		problems = append(problems, fmt.Sprintf("credit must not be negative, got %s", t.Credit))
	}
	if len(problems) > 0 {
		return fmt.Errorf("bank transaction: %s: %w", strings.Join(problems, "; "), errs.ErrInvalid)
	}
	return nil
}

// Statement is the parsed content of one CSV file.
type Statement struct {
	BankName     string
	AccountName  string
	ImportDate   civil.Date
	Transactions []BankTransaction
}

// Parser converts a bank CSV export into BankTransactions.
type Parser interface {
	Parse(r io.Reader) ([]BankTransaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names in no particular order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		out = append(out, p.Format())
	}
	return out
}

// RegistryFor returns a registry with one FormatParser per configured
// bank format.
func RegistryFor(formats model.BankFormats) (*Registry, error) {
	if err := formats.Validate(); err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, f := range formats.Formats {
		p, err := NewFormatParser(f)
		if err != nil {
			return nil, err
		}
		r.Register(p)
	}
	return r, nil
}
