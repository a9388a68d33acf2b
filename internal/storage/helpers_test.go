package storage

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openTemp(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()
	reg, err := Open(dir)
	require.NoError(t, err)
	return reg, dir
}

// assertSameJSON compares records through their persisted form, which
// ignores decimal representation details.
func assertSameJSON(t *testing.T, want, got any) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(w), string(g))
}

func testQuote(quoteID string, created civil.Date) model.Quote {
	return model.Quote{
		QuoteID:        quoteID,
		ClientID:       "Acme",
		DateCreated:    created,
		DateValidUntil: created.AddDays(30),
		LineItems: []model.LineItem{
			{Description: "Site visit", Quantity: dec("1"), UnitPrice: dec("110"), GSTInclusive: true},
		},
	}
}

func testJob(jobID string, accepted civil.Date) model.Job {
	return model.Job{JobID: jobID, QuoteID: "Q-1", ClientID: "Acme", DateAccepted: accepted}
}

func testInvoice(invoiceID string, created civil.Date) model.Invoice {
	return model.Invoice{
		InvoiceID:   invoiceID,
		ClientID:    "Acme",
		DateCreated: created,
		DateDue:     created.AddDays(30),
		LineItems: []model.LineItem{
			{Description: "Labour", Quantity: dec("2"), UnitPrice: dec("55"), GSTInclusive: true},
		},
	}
}

func testTxn(t *testing.T, txnID string, d civil.Date, desc, debitAcct, creditAcct, amount string) model.Transaction {
	t.Helper()
	txn, err := model.NewTransaction(txnID, d, desc,
		model.Debit(debitAcct, dec(amount)),
		model.Credit(creditAcct, dec(amount)),
	)
	require.NoError(t, err)
	return txn
}
