package storage

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/smallbiz-dev/smallbiz/internal/accounts"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func (r *Registry) loadSingletons() error {
	var s model.Settings
	found, err := readJSON(r.path(configDir, settingsFile), &s)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if found {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		r.settings = &s
	}

	var bf model.BankFormats
	found, err = readJSON(r.path(configDir, bankFormatsFile), &bf)
	if err != nil {
		return fmt.Errorf("loading bank formats: %w", err)
	}
	if found {
		if err := bf.Validate(); err != nil {
			return fmt.Errorf("loading bank formats: %w", err)
		}
		r.bankFormats = &bf
	}

	return r.loadChart()
}

// loadChart prefers the JSON chart the registry writes and falls back to
// the YAML chart created by business initialisation.
func (r *Registry) loadChart() error {
	var chart model.ChartOfAccounts
	found, err := readJSON(r.path(configDir, chartJSONFile), &chart)
	if err != nil {
		return fmt.Errorf("loading chart of accounts: %w", err)
	}
	if found {
		if err := chart.Validate(); err != nil {
			return fmt.Errorf("loading chart of accounts: %w", err)
		}
		r.chart = &chart
		return nil
	}

	chart, err = accounts.Load(r.path(configDir, chartYAMLFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	r.chart = &chart
	return nil
}

// Settings returns the saved business settings.
func (r *Registry) Settings() (model.Settings, error) {
	if r.settings == nil {
		return model.Settings{}, fmt.Errorf("settings %s: %w", r.path(configDir, settingsFile), errs.ErrNotFound)
	}
	return *r.settings, nil
}

// SaveSettings replaces the settings file.
func (r *Registry) SaveSettings(s model.Settings) error {
	if err := writeJSON(r.path(configDir, settingsFile), s); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	r.settings = &s
	return nil
}

// SettingsExist reports whether settings have been saved.
func (r *Registry) SettingsExist() bool {
	return r.settings != nil
}

// BankFormats returns the saved bank CSV formats.
func (r *Registry) BankFormats() (model.BankFormats, error) {
	if r.bankFormats == nil {
		return model.BankFormats{}, fmt.Errorf("bank formats %s: %w", r.path(configDir, bankFormatsFile), errs.ErrNotFound)
	}
	return cloneBankFormats(*r.bankFormats), nil
}

// SaveBankFormats replaces the bank formats file.
func (r *Registry) SaveBankFormats(bf model.BankFormats) error {
	bf = cloneBankFormats(bf)
	if err := writeJSON(r.path(configDir, bankFormatsFile), bf); err != nil {
		return fmt.Errorf("saving bank formats: %w", err)
	}
	r.bankFormats = &bf
	return nil
}

// ChartOfAccounts returns the saved chart of accounts.
func (r *Registry) ChartOfAccounts() (model.ChartOfAccounts, error) {
	if r.chart == nil {
		return model.ChartOfAccounts{}, fmt.Errorf("chart of accounts %s: %w", r.path(configDir, chartJSONFile), errs.ErrNotFound)
	}
	return cloneChart(*r.chart), nil
}

// SaveChartOfAccounts writes the chart as config/chart_of_accounts.json.
func (r *Registry) SaveChartOfAccounts(chart model.ChartOfAccounts) error {
	chart = cloneChart(chart)
	if err := writeJSON(r.path(configDir, chartJSONFile), chart); err != nil {
		return fmt.Errorf("saving chart of accounts: %w", err)
	}
	r.chart = &chart
	return nil
}

// AccountCodes returns every account code, sorted.
func (r *Registry) AccountCodes() ([]string, error) {
	chart, err := r.ChartOfAccounts()
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(chart.Accounts))
	for i, a := range chart.Accounts {
		codes[i] = a.Code
	}
	sort.Strings(codes)
	return codes, nil
}

func cloneBankFormats(bf model.BankFormats) model.BankFormats {
	bf.Formats = append([]model.BankFormat(nil), bf.Formats...)
	return bf
}

func cloneChart(c model.ChartOfAccounts) model.ChartOfAccounts {
	c.Accounts = append([]model.Account(nil), c.Accounts...)
	return c
}
