package workflow

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// StartJob marks a scheduled job as started today.
func StartJob(store Store, jobID string, today civil.Date) (model.Job, error) {
	j, err := store.Job(jobID, latest)
	if err != nil {
		return model.Job{}, err
	}
	if s := j.Status(); s != model.JobScheduled {
		return model.Job{}, statusError("job", jobID, "started", s, model.JobScheduled)
	}
	j.DateStarted = dateOn(today)
	return store.UpdateJob(j)
}

// CompleteJob marks a scheduled or in-progress job as completed today.
func CompleteJob(store Store, jobID string, today civil.Date) (model.Job, error) {
	j, err := store.Job(jobID, latest)
	if err != nil {
		return model.Job{}, err
	}
	if s := j.Status(); s != model.JobScheduled && s != model.JobInProgress {
		return model.Job{}, statusError("job", jobID, "completed", s, model.JobScheduled, model.JobInProgress)
	}
	j.DateCompleted = dateOn(today)
	return store.UpdateJob(j)
}

// CompleteJobToInvoice issues an invoice for a completed job and marks the
// job invoiced. With no items the linked quote's line items are billed.
func CompleteJobToInvoice(store Store, jobID string, items []model.LineItem, dueDays int, today civil.Date) (model.Invoice, error) {
	j, err := store.Job(jobID, latest)
	if err != nil {
		return model.Invoice{}, err
	}
	if s := j.Status(); s != model.JobCompleted {
		return model.Invoice{}, statusError("job", jobID, "invoiced", s, model.JobCompleted)
	}
	if dueDays < 0 {
		return model.Invoice{}, fmt.Errorf("due days must not be negative, got %d: %w", dueDays, errs.ErrInvalid)
	}

	if items == nil {
		if j.QuoteID == "" {
			return model.Invoice{}, fmt.Errorf("job %s has no linked quote and no line items were given: %w", jobID, errs.ErrInvalid)
		}
		q, err := store.Quote(j.QuoteID, latest)
		if err != nil {
			return model.Invoice{}, err
		}
		items = q.LineItems
	}

	invoiceID, err := freeInvoiceID(store, today)
	if err != nil {
		return model.Invoice{}, err
	}
	inv := model.Invoice{
		InvoiceID:   invoiceID,
		JobID:       j.JobID,
		ClientID:    j.ClientID,
		DateCreated: today,
		DateIssued:  dateOn(today),
		DateDue:     today.AddDays(dueDays),
		LineItems:   items,
	}
	if err := inv.Validate(); err != nil {
		return model.Invoice{}, err
	}

	saved, err := store.SaveInvoice(inv)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("saving invoice for job %s: %w", jobID, err)
	}
	j.DateInvoiced = dateOn(today)
	if _, err := store.UpdateJob(j); err != nil {
		return saved, fmt.Errorf("marking job %s invoiced: %w", jobID, err)
	}
	return saved, nil
}
