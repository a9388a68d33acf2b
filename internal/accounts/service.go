package accounts

import (
	"fmt"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	chart  model.ChartOfAccounts
	byCode map[string]model.Account
}

// NewService creates a Service from a chart.
func NewService(chart model.ChartOfAccounts) *Service {
	byCode := make(map[string]model.Account, len(chart.Accounts))
	for _, a := range chart.Accounts {
		byCode[a.Code] = a
	}
	return &Service{chart: chart, byCode: byCode}
}

// Chart returns the underlying chart.
func (s *Service) Chart() model.ChartOfAccounts {
	return s.chart
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.chart.Accounts
}

// Get returns an account by code.
func (s *Service) Get(code string) (model.Account, bool) {
	a, ok := s.byCode[code]
	return a, ok
}

// Exists reports whether an account code exists.
func (s *Service) Exists(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	return s.chart.ByType(accountType)
}

// TypeOf returns the type of the account with the given code.
func (s *Service) TypeOf(code string) (model.AccountType, error) {
	a, ok := s.byCode[code]
	if !ok {
		return "", fmt.Errorf("account %s: %w", code, errs.ErrNotFound)
	}
	return a.Type, nil
}

// Require checks that every code exists, naming the first that does not.
func (s *Service) Require(codes ...string) error {
	for _, c := range codes {
		if !s.Exists(c) {
			return fmt.Errorf("account %s: %w", c, errs.ErrNotFound)
		}
	}
	return nil
}
