package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
)

// Settings holds business details and accounting constants.
type Settings struct {
	GSTRate                 decimal.Decimal `json:"gst_rate"`
	FinancialYearStartMonth int             `json:"financial_year_start_month"`
	Currency                string          `json:"currency"`
	DateFormat              string          `json:"date_format"`

	BusinessName    string `json:"business_name"`
	BusinessABN     string `json:"business_abn"`
	BusinessEmail   string `json:"business_email"`
	BusinessPhone   string `json:"business_phone"`
	BusinessAddress string `json:"business_address"`

	DataDirectory string `json:"data_directory"`
}

// DefaultSettings returns the Australian defaults: 10% GST, July financial year.
func DefaultSettings() Settings {
	return Settings{
		GSTRate:                 GSTRate,
		FinancialYearStartMonth: int(fyStartMonth),
		Currency:                "AUD",
		DateFormat:              "%Y-%m-%d",
		DataDirectory:           "data",
	}
}

// Validate bounds the GST rate to [0, 1] and the financial year start month to 1-12.
func (s Settings) Validate() error {
	v := newValidator("settings")
	if s.GSTRate.IsNegative() || s.GSTRate.GreaterThan(decimal.NewFromInt(1)) {
		v.addf("gst_rate", "must be between 0 and 1, got %s", s.GSTRate)
	}
	if s.FinancialYearStartMonth < 1 || s.FinancialYearStartMonth > 12 {
		v.addf("financial_year_start_month", "must be 1-12, got %d", s.FinancialYearStartMonth)
	}
	return v.err()
}

// BankFormat maps a bank's CSV export columns onto transaction fields.
// Either AmountColumn (signed) or DebitColumn/CreditColumn must be set.
type BankFormat struct {
	Name              string `json:"name"`
	DateColumn        string `json:"date_column"`
	DescriptionColumn string `json:"description_column"`
	DebitColumn       string `json:"debit_column,omitempty"`
	CreditColumn      string `json:"credit_column,omitempty"`
	AmountColumn      string `json:"amount_column,omitempty"`
	BalanceColumn     string `json:"balance_column,omitempty"`
	DateFormat        string `json:"date_format"`
}

// Validate requires a name, date and description columns, an amount source and
// a date format.
func (f BankFormat) Validate() error {
	v := newValidator("bank_format")
	if f.Name == "" {
		v.addf("name", "must not be empty")
	}
	if f.DateColumn == "" {
		v.addf("date_column", "must not be empty")
	}
	if f.DescriptionColumn == "" {
		v.addf("description_column", "must not be empty")
	}
	if f.AmountColumn == "" && f.DebitColumn == "" && f.CreditColumn == "" {
		v.addf("amount_column", "either amount_column or debit_column/credit_column is required")
	}
	if f.DateFormat == "" {
		v.addf("date_format", "must not be empty")
	}
	return v.err()
}

// BankFormats is the configured set of bank CSV layouts.
type BankFormats struct {
	Formats []BankFormat `json:"formats"`
}

// Validate validates each format and rejects duplicate names, ignoring case.
func (b BankFormats) Validate() error {
	v := newValidator("bank_formats")
	seen := make(map[string]bool)
	for _, f := range b.Formats {
		v.merge(f.Validate())
		key := strings.ToLower(f.Name)
		if seen[key] {
			v.addf("formats", "duplicate bank format %q", f.Name)
		}
		seen[key] = true
	}
	return v.err()
}

// Get returns the format with the given name (case-insensitive).
func (b BankFormats) Get(name string) (BankFormat, error) {
	for _, f := range b.Formats {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return BankFormat{}, fmt.Errorf("bank format %s: %w", name, errs.ErrNotFound)
}
