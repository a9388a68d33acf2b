package model

import (
	"fmt"
	"regexp"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
)

var accountCodeRE = regexp.MustCompile(`^[A-Z0-9\-]+$`)

// Account is a row in the chart of accounts.
type Account struct {
	Code        string      `json:"code" yaml:"code"`
	Name        string      `json:"name" yaml:"name"`
	Type        AccountType `json:"account_type" yaml:"account_type"`
	ParentCode  string      `json:"parent_code,omitempty" yaml:"parent_code,omitempty"`
	Description string      `json:"description" yaml:"description"`
}

// Validate checks the code format, the name and the account type.
func (a Account) Validate() error {
	v := newValidator("account")
	if !accountCodeRE.MatchString(a.Code) {
		v.addf("code", "%q must match %s", a.Code, accountCodeRE)
	}
	if a.Name == "" {
		v.addf("name", "must not be empty")
	}
	if !a.Type.Valid() {
		v.addf("account_type", "unknown account type %q", a.Type)
	}
	return v.err()
}

// ChartOfAccounts is the full set of accounts with at most two levels of nesting.
type ChartOfAccounts struct {
	Accounts []Account `json:"accounts"`
}

// NewChartOfAccounts builds a validated chart.
func NewChartOfAccounts(accounts []Account) (ChartOfAccounts, error) {
	chart := ChartOfAccounts{Accounts: accounts}
	if err := chart.Validate(); err != nil {
		return ChartOfAccounts{}, err
	}
	return chart, nil
}

// Validate checks unique codes and names, existing parents and hierarchy depth.
func (c ChartOfAccounts) Validate() error {
	v := newValidator("chart_of_accounts")
	byCode := make(map[string]Account, len(c.Accounts))
	names := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		v.merge(a.Validate())
		if _, dup := byCode[a.Code]; dup {
			v.addf("code", "duplicate account code %q", a.Code)
		}
		if names[a.Name] {
			v.addf("name", "duplicate account name %q", a.Name)
		}
		byCode[a.Code] = a
		names[a.Name] = true
	}
	for _, a := range c.Accounts {
		if a.ParentCode == "" {
			continue
		}
		parent, ok := byCode[a.ParentCode]
		if !ok {
			v.addf("parent_code", "parent %q not found for %q", a.ParentCode, a.Code)
			continue
		}
		if parent.ParentCode != "" {
			v.addf("parent_code", "max 2-level hierarchy exceeded: %q", a.Code)
		}
	}
	return v.err()
}

// Account returns the account with the given code.
func (c ChartOfAccounts) Account(code string) (Account, error) {
	for _, a := range c.Accounts {
		if a.Code == code {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("account %s: %w", code, errs.ErrNotFound)
}

// ByName returns the account with the given name.
func (c ChartOfAccounts) ByName(name string) (Account, error) {
	for _, a := range c.Accounts {
		if a.Name == name {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("account named %q: %w", name, errs.ErrNotFound)
}

// Exists reports whether code is in the chart.
func (c ChartOfAccounts) Exists(code string) bool {
	_, err := c.Account(code)
	return err == nil
}

// Children returns the direct children of parentCode.
func (c ChartOfAccounts) Children(parentCode string) []Account {
	var out []Account
	for _, a := range c.Accounts {
		if a.ParentCode == parentCode {
			out = append(out, a)
		}
	}
	return out
}

// Roots returns the top-level accounts.
func (c ChartOfAccounts) Roots() []Account {
	return c.Children("")
}

// ByType returns all accounts of the given type.
func (c ChartOfAccounts) ByType(t AccountType) []Account {
	var out []Account
	for _, a := range c.Accounts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Codes returns the set of codes of the given type.
func (c ChartOfAccounts) Codes(t AccountType) map[string]bool {
	out := make(map[string]bool)
	for _, a := range c.ByType(t) {
		out[a.Code] = true
	}
	return out
}
