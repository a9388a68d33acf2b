package workflow

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// NewQuote saves a draft quote for an existing client, valid for validDays
// from today.
func NewQuote(store Store, clientID string, items []model.LineItem, validDays int, today civil.Date) (model.Quote, error) {
	if err := requireClient(store, clientID); err != nil {
		return model.Quote{}, err
	}
	if validDays < 0 {
		return model.Quote{}, fmt.Errorf("quote validity must not be negative, got %d days: %w", validDays, errs.ErrInvalid)
	}
	quoteID, err := freeQuoteID(store, today)
	if err != nil {
		return model.Quote{}, err
	}
	q := model.Quote{
		QuoteID:        quoteID,
		ClientID:       clientID,
		DateCreated:    today,
		DateValidUntil: today.AddDays(validDays),
		LineItems:      items,
	}
	if err := q.Validate(); err != nil {
		return model.Quote{}, err
	}
	return store.SaveQuote(q)
}

// SendQuote marks a draft quote as sent today.
func SendQuote(store Store, quoteID string, today civil.Date) (model.Quote, error) {
	q, err := store.Quote(quoteID, latest)
	if err != nil {
		return model.Quote{}, err
	}
	if s := q.Status(today); s != model.QuoteDraft {
		return model.Quote{}, statusError("quote", quoteID, "sent", s, model.QuoteDraft)
	}
	q.DateSent = dateOn(today)
	return store.SaveQuote(q)
}

// RejectQuote records the client's rejection of a draft or sent quote.
func RejectQuote(store Store, quoteID string, today civil.Date) (model.Quote, error) {
	q, err := store.Quote(quoteID, latest)
	if err != nil {
		return model.Quote{}, err
	}
	if !q.IsActive(today) {
		return model.Quote{}, statusError("quote", quoteID, "rejected", q.Status(today), model.QuoteDraft, model.QuoteSent)
	}
	q.DateRejected = dateOn(today)
	return store.SaveQuote(q)
}

// AcceptQuoteToJob accepts a sent quote and creates the job that follows
// from it. The accepted quote is saved as a new version before the job.
func AcceptQuoteToJob(store Store, quoteID string, scheduled *civil.Date, today civil.Date) (model.Job, error) {
	q, err := store.Quote(quoteID, latest)
	if err != nil {
		return model.Job{}, err
	}
	if s := q.Status(today); s != model.QuoteSent {
		return model.Job{}, statusError("quote", quoteID, "accepted", s, model.QuoteSent)
	}

	jobID, err := freeJobID(store, today)
	if err != nil {
		return model.Job{}, err
	}
	job := model.Job{
		JobID:         jobID,
		QuoteID:       q.QuoteID,
		ClientID:      q.ClientID,
		DateAccepted:  today,
		ScheduledDate: scheduled,
	}
	if err := job.Validate(); err != nil {
		return model.Job{}, err
	}

	q.DateAccepted = dateOn(today)
	if _, err := store.SaveQuote(q); err != nil {
		return model.Job{}, fmt.Errorf("saving accepted quote: %w", err)
	}
	saved, err := store.SaveJob(job)
	if err != nil {
		return model.Job{}, fmt.Errorf("saving job for quote %s: %w", quoteID, err)
	}
	return saved, nil
}
