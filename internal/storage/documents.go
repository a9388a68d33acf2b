package storage

import (
	"fmt"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// SaveQuote stores q as the next version of its id and returns the stored
// copy with Version set. The file goes under the financial year of
// DateCreated.
func (r *Registry) SaveQuote(q model.Quote) (model.Quote, error) {
	saved, err := r.quotes.save(r.dir, q)
	if err != nil {
		return model.Quote{}, err
	}
	r.log.Debug().Str("quote", saved.QuoteID).Int("version", saved.Version).Msg("saved quote")
	return saved, nil
}

// Quote returns the given version of a quote; version 0 means the latest.
func (r *Registry) Quote(quoteID string, version int) (model.Quote, error) {
	return r.quotes.get(quoteID, version)
}

// QuoteVersions returns the saved version numbers in ascending order.
func (r *Registry) QuoteVersions(quoteID string) []int {
	return r.quotes.versions(quoteID)
}

// Quotes lists quotes ordered by id.
func (r *Registry) Quotes(f DocumentFilter) []model.Quote {
	return r.quotes.list(f)
}

// SaveInvoice stores inv as the next version of its id. The file goes under
// the financial year of DateIssued, or DateCreated before issue.
func (r *Registry) SaveInvoice(inv model.Invoice) (model.Invoice, error) {
	saved, err := r.invoices.save(r.dir, inv)
	if err != nil {
		return model.Invoice{}, err
	}
	r.log.Debug().Str("invoice", saved.InvoiceID).Int("version", saved.Version).Msg("saved invoice")
	return saved, nil
}

// Invoice returns the given version of an invoice; version 0 means the latest.
func (r *Registry) Invoice(invoiceID string, version int) (model.Invoice, error) {
	return r.invoices.get(invoiceID, version)
}

// InvoiceVersions returns the saved version numbers in ascending order.
func (r *Registry) InvoiceVersions(invoiceID string) []int {
	return r.invoices.versions(invoiceID)
}

// Invoices lists invoices ordered by id.
func (r *Registry) Invoices(f DocumentFilter) []model.Invoice {
	return r.invoices.list(f)
}

// SaveJob stores j as the next version of its id. The file goes under the
// financial year of DateAccepted.
func (r *Registry) SaveJob(j model.Job) (model.Job, error) {
	saved, err := r.jobs.save(r.dir, j)
	if err != nil {
		return model.Job{}, err
	}
	r.log.Debug().Str("job", saved.JobID).Int("version", saved.Version).Msg("saved job")
	return saved, nil
}

// UpdateJob saves a new version of an existing job.
func (r *Registry) UpdateJob(j model.Job) (model.Job, error) {
	if !r.jobs.exists(j.JobID) {
		return model.Job{}, fmt.Errorf("job %s: %w", j.JobID, errs.ErrNotFound)
	}
	return r.SaveJob(j)
}

// Job returns the given version of a job; version 0 means the latest.
func (r *Registry) Job(jobID string, version int) (model.Job, error) {
	return r.jobs.get(jobID, version)
}

// JobVersions returns the saved version numbers in ascending order.
func (r *Registry) JobVersions(jobID string) []int {
	return r.jobs.versions(jobID)
}

// Jobs lists jobs ordered by id.
func (r *Registry) Jobs(f DocumentFilter) []model.Job {
	return r.jobs.list(f)
}
