package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Quote is a priced proposal to a client. Every save creates a new version.
type Quote struct {
	QuoteID            string      `json:"quote_id"`
	ClientID           string      `json:"client_id"`
	DateCreated        civil.Date  `json:"date_created"`
	DateSent           *civil.Date `json:"date_sent,omitempty"`
	DateAccepted       *civil.Date `json:"date_accepted,omitempty"`
	DateRejected       *civil.Date `json:"date_rejected,omitempty"`
	DateValidUntil     civil.Date  `json:"date_valid_until"`
	LineItems          []LineItem  `json:"line_items"`
	TermsAndConditions string      `json:"terms_and_conditions,omitempty"`
	Version            int         `json:"version"`
	Notes              string      `json:"notes,omitempty"`
}

// Validate checks the record's own invariants.
func (q Quote) Validate() error {
	v := newValidator("quote")
	if q.QuoteID == "" {
		v.addf("quote_id", "must not be empty")
	}
	if q.ClientID == "" {
		v.addf("client_id", "must not be empty")
	}
	if !q.DateValidUntil.IsValid() {
		v.addf("date_valid_until", "must be a valid date")
	}
	validateItems(v, q.LineItems)
	return v.err()
}

// Status derives the quote's state as of the given day.
// Order: accepted > rejected > expired > sent > draft.
func (q Quote) Status(asOf civil.Date) QuoteStatus {
	switch {
	case isSet(q.DateAccepted):
		return QuoteAccepted
	case isSet(q.DateRejected):
		return QuoteRejected
	case asOf.After(q.DateValidUntil):
		return QuoteExpired
	case isSet(q.DateSent):
		return QuoteSent
	default:
		return QuoteDraft
	}
}

// IsActive reports whether the quote can still be accepted.
func (q Quote) IsActive(asOf civil.Date) bool {
	s := q.Status(asOf)
	return s == QuoteDraft || s == QuoteSent
}

// FinancialYear is based on the creation date.
func (q Quote) FinancialYear() string {
	return FinancialYear(q.DateCreated)
}

func (q Quote) Subtotal() decimal.Decimal { return sumItems(q.LineItems, LineItem.Subtotal) }
func (q Quote) GST() decimal.Decimal      { return sumItems(q.LineItems, LineItem.GST) }
func (q Quote) Total() decimal.Decimal    { return sumItems(q.LineItems, LineItem.Total) }

// Clone returns a deep copy.
func (q Quote) Clone() Quote {
	c := q
	c.DateSent = cloneDate(q.DateSent)
	c.DateAccepted = cloneDate(q.DateAccepted)
	c.DateRejected = cloneDate(q.DateRejected)
	c.LineItems = cloneItems(q.LineItems)
	return c
}
