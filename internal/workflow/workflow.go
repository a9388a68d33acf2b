// Package workflow moves quotes, jobs and invoices through their lifecycles.
// Every transition checks the record's current status, sets a date and
// saves a new version through the injected Store.
//
// Operations that write more than one record (AcceptQuoteToJob,
// CompleteJobToInvoice) validate everything before the first write but are
// not atomic across files.
package workflow

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/id"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// Store is the part of the storage registry the workflows need.
// *storage.Registry satisfies it.
type Store interface {
	ClientExists(clientID string) bool
	Quote(quoteID string, version int) (model.Quote, error)
	SaveQuote(model.Quote) (model.Quote, error)
	Job(jobID string, version int) (model.Job, error)
	SaveJob(model.Job) (model.Job, error)
	UpdateJob(model.Job) (model.Job, error)
	Invoice(invoiceID string, version int) (model.Invoice, error)
	SaveInvoice(model.Invoice) (model.Invoice, error)
}

// latest is the version argument that selects the newest saved version.
const latest = 0

const maxIDAttempts = 20

// newID is replaced in tests to force collisions.
var newID = id.New

// freeID generates ids until taken reports one unused. A reused id would
// file the new record as the next version of an unrelated one.
func freeID(kind, prefix string, today civil.Date, taken func(string) bool) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		recID := newID(prefix, today)
		if !taken(recID) {
			return recID, nil
		}
	}
	return "", fmt.Errorf("no free %s id for %s after %d attempts: %w", kind, today, maxIDAttempts, errs.ErrConflict)
}

func freeQuoteID(store Store, today civil.Date) (string, error) {
	return freeID("quote", id.QuotePrefix, today, func(s string) bool {
		_, err := store.Quote(s, latest)
		return err == nil
	})
}

func freeJobID(store Store, today civil.Date) (string, error) {
	return freeID("job", id.JobPrefix, today, func(s string) bool {
		_, err := store.Job(s, latest)
		return err == nil
	})
}

func freeInvoiceID(store Store, today civil.Date) (string, error) {
	return freeID("invoice", id.InvoicePrefix, today, func(s string) bool {
		_, err := store.Invoice(s, latest)
		return err == nil
	})
}

func statusError[S ~string](kind, recID, action string, actual S, want ...S) error {
	names := make([]string, len(want))
	for i, w := range want {
		names[i] = string(w)
	}
	return fmt.Errorf("%s %s cannot be %s: status is %s (must be %s): %w",
		kind, recID, action, actual, strings.Join(names, " or "), errs.ErrInvalid)
}

func requireClient(store Store, clientID string) error {
	if !store.ClientExists(clientID) {
		return fmt.Errorf("client %s: %w", clientID, errs.ErrNotFound)
	}
	return nil
}

func dateOn(d civil.Date) *civil.Date { return model.DatePtr(d) }
