// Package storage keeps a business's records in memory and mirrors every
// change to flat files under the business directory:
//
//	config/settings.json
//	config/chart_of_accounts.json   (config/chart_of_accounts.yaml is read as a fallback)
//	config/bank_formats.json
//	clients/clients.jsonl
//	YYYY-YY/transactions.jsonl
//	YYYY-YY/{quotes,jobs,invoices}/{id}_v{n}.json
//
// A Registry owns its directory exclusively and is not safe for concurrent use.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/smallbiz-dev/smallbiz/internal/id"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

const (
	configDir        = "config"
	clientsDir       = "clients"
	clientsFile      = "clients.jsonl"
	transactionsFile = "transactions.jsonl"
	settingsFile     = "settings.json"
	chartJSONFile    = "chart_of_accounts.json"
	chartYAMLFile    = "chart_of_accounts.yaml"
	bankFormatsFile  = "bank_formats.json"
)

// Registry is the in-memory cache of every record in one business directory.
type Registry struct {
	dir string
	log zerolog.Logger

	clients      map[string]model.Client // case-folded id
	quotes       *versionedDir[model.Quote]
	jobs         *versionedDir[model.Job]
	invoices     *versionedDir[model.Invoice]
	transactions map[model.TransactionKey]model.Transaction

	settings    *model.Settings
	bankFormats *model.BankFormats
	chart       *model.ChartOfAccounts
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for load and write events.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// Open loads everything under dir into memory, compacting append-style
// files as it goes. A missing dir is treated as empty.
func Open(dir string, opts ...Option) (*Registry, error) {
	r := &Registry{
		dir:          dir,
		log:          zerolog.Nop(),
		clients:      make(map[string]model.Client),
		transactions: make(map[model.TransactionKey]model.Transaction),
		quotes: newVersionedDir(chainOps[model.Quote]{
			kind:       "quotes",
			noun:       "quote",
			id:         func(q model.Quote) string { return q.QuoteID },
			fy:         model.Quote.FinancialYear,
			setVersion: func(q *model.Quote, v int) { q.Version = v },
			clone:      model.Quote.Clone,
			validate:   model.Quote.Validate,
		}),
		jobs: newVersionedDir(chainOps[model.Job]{
			kind:       "jobs",
			noun:       "job",
			id:         func(j model.Job) string { return j.JobID },
			fy:         model.Job.FinancialYear,
			setVersion: func(j *model.Job, v int) { j.Version = v },
			clone:      model.Job.Clone,
			validate:   model.Job.Validate,
		}),
		invoices: newVersionedDir(chainOps[model.Invoice]{
			kind:       "invoices",
			noun:       "invoice",
			id:         func(inv model.Invoice) string { return inv.InvoiceID },
			fy:         model.Invoice.FinancialYear,
			setVersion: func(inv *model.Invoice, v int) { inv.Version = v },
			clone:      model.Invoice.Clone,
			validate:   model.Invoice.Validate,
		}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the business directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Reload discards all in-memory state and loads the directory again.
func (r *Registry) Reload() error {
	clear(r.clients)
	clear(r.transactions)
	r.quotes.reset()
	r.jobs.reset()
	r.invoices.reset()
	r.settings = nil
	r.bankFormats = nil
	r.chart = nil
	return r.load()
}

func (r *Registry) load() error {
	fyDirs, err := r.financialYearDirs()
	if err != nil {
		return err
	}
	if err := r.loadClients(); err != nil {
		return err
	}
	if err := r.quotes.load(fyDirs, r.log); err != nil {
		return err
	}
	if err := r.invoices.load(fyDirs, r.log); err != nil {
		return err
	}
	if err := r.jobs.load(fyDirs, r.log); err != nil {
		return err
	}
	if err := r.loadTransactions(fyDirs); err != nil {
		return err
	}
	if err := r.loadSingletons(); err != nil {
		return err
	}
	r.log.Debug().
		Str("dir", r.dir).
		Int("clients", len(r.clients)).
		Int("transactions", len(r.transactions)).
		Msg("registry loaded")
	return nil
}

// financialYearDirs lists the YYYY-YY directories in ascending order.
func (r *Registry) financialYearDirs() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && id.IsFinancialYearDir(e.Name()) {
			out = append(out, filepath.Join(r.dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *Registry) path(parts ...string) string {
	return filepath.Join(append([]string{r.dir}, parts...)...)
}
