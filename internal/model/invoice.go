package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Invoice bills a client for completed work.
type Invoice struct {
	InvoiceID        string           `json:"invoice_id"`
	JobID            string           `json:"job_id,omitempty"`
	ClientID         string           `json:"client_id"`
	DateCreated      civil.Date       `json:"date_created"`
	DateIssued       *civil.Date      `json:"date_issued,omitempty"`
	DateDue          civil.Date       `json:"date_due"`
	DatePaid         *civil.Date      `json:"date_paid,omitempty"`
	DateCancelled    *civil.Date      `json:"date_cancelled,omitempty"`
	PaymentAmount    *decimal.Decimal `json:"payment_amount,omitempty"`
	PaymentReference string           `json:"payment_reference,omitempty"`
	LineItems        []LineItem       `json:"line_items"`
	Version          int              `json:"version"`
	Notes            string           `json:"notes,omitempty"`
}

// Validate checks the ids, the due date, any payment amount and the line items.
func (inv Invoice) Validate() error {
	v := newValidator("invoice")
	if inv.InvoiceID == "" {
		v.addf("invoice_id", "must not be empty")
	}
	if inv.ClientID == "" {
		v.addf("client_id", "must not be empty")
	}
	if !inv.DateDue.IsValid() {
		v.addf("date_due", "must be a valid date")
	}
	if inv.PaymentAmount != nil {
		if inv.PaymentAmount.IsNegative() {
			v.addf("payment_amount", "must not be negative, got %s", inv.PaymentAmount)
		} else if !hasCents(*inv.PaymentAmount) {
			v.addf("payment_amount", "%s has more than 2 decimal places", inv.PaymentAmount)
		}
	}
	validateItems(v, inv.LineItems)
	return v.err()
}

// Status derives the invoice's state as of the given day.
// Order: cancelled > paid > overdue/sent > draft.
func (inv Invoice) Status(asOf civil.Date) InvoiceStatus {
	switch {
	case isSet(inv.DateCancelled):
		return InvoiceCancelled
	case isSet(inv.DatePaid):
		return InvoicePaid
	case isSet(inv.DateIssued):
		if asOf.After(inv.DateDue) {
			return InvoiceOverdue
		}
		return InvoiceSent
	default:
		return InvoiceDraft
	}
}

// DaysOutstanding returns days since issue while the invoice is unpaid and live.
func (inv Invoice) DaysOutstanding(asOf civil.Date) (int, bool) {
	if !isSet(inv.DateIssued) || isSet(inv.DatePaid) || isSet(inv.DateCancelled) {
		return 0, false
	}
	return asOf.DaysSince(*inv.DateIssued), true
}

// FileDate is the date that places the invoice in a financial year.
func (inv Invoice) FileDate() civil.Date {
	if isSet(inv.DateIssued) {
		return *inv.DateIssued
	}
	return inv.DateCreated
}

// FinancialYear is based on the issue date, falling back to creation.
func (inv Invoice) FinancialYear() string {
	return FinancialYear(inv.FileDate())
}

func (inv Invoice) Subtotal() decimal.Decimal { return sumItems(inv.LineItems, LineItem.Subtotal) }
func (inv Invoice) GST() decimal.Decimal      { return sumItems(inv.LineItems, LineItem.GST) }
func (inv Invoice) Total() decimal.Decimal    { return sumItems(inv.LineItems, LineItem.Total) }

// Clone returns a deep copy.
func (inv Invoice) Clone() Invoice {
	c := inv
	c.DateIssued = cloneDate(inv.DateIssued)
	c.DatePaid = cloneDate(inv.DatePaid)
	c.DateCancelled = cloneDate(inv.DateCancelled)
	if inv.PaymentAmount != nil {
		amt := *inv.PaymentAmount
		c.PaymentAmount = &amt
	}
	c.LineItems = cloneItems(inv.LineItems)
	return c
}
