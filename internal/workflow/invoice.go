package workflow

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// IssueInvoice sends a draft invoice today.
func IssueInvoice(store Store, invoiceID string, today civil.Date) (model.Invoice, error) {
	inv, err := store.Invoice(invoiceID, latest)
	if err != nil {
		return model.Invoice{}, err
	}
	if s := inv.Status(today); s != model.InvoiceDraft {
		return model.Invoice{}, statusError("invoice", invoiceID, "issued", s, model.InvoiceDraft)
	}
	inv.DateIssued = dateOn(today)
	return store.SaveInvoice(inv)
}

// RecordPayment marks a sent or overdue invoice as paid today.
func RecordPayment(store Store, invoiceID string, amount decimal.Decimal, reference string, today civil.Date) (model.Invoice, error) {
	inv, err := store.Invoice(invoiceID, latest)
	if err != nil {
		return model.Invoice{}, err
	}
	if s := inv.Status(today); s != model.InvoiceSent && s != model.InvoiceOverdue {
		return model.Invoice{}, statusError("invoice", invoiceID, "paid", s, model.InvoiceSent, model.InvoiceOverdue)
	}
	if !amount.IsPositive() {
		return model.Invoice{}, fmt.Errorf("payment amount must be positive, got %s: %w", amount, errs.ErrInvalid)
	}
	inv.DatePaid = dateOn(today)
	inv.PaymentAmount = &amount
	inv.PaymentReference = reference
	if err := inv.Validate(); err != nil {
		return model.Invoice{}, err
	}
	return store.SaveInvoice(inv)
}

// CancelInvoice cancels any invoice that is not paid or already cancelled.
func CancelInvoice(store Store, invoiceID string, today civil.Date) (model.Invoice, error) {
	inv, err := store.Invoice(invoiceID, latest)
	if err != nil {
		return model.Invoice{}, err
	}
	switch s := inv.Status(today); s {
	case model.InvoicePaid, model.InvoiceCancelled:
		return model.Invoice{}, statusError("invoice", invoiceID, "cancelled", s, model.InvoiceDraft, model.InvoiceSent, model.InvoiceOverdue)
	}
	inv.DateCancelled = dateOn(today)
	return store.SaveInvoice(inv)
}
