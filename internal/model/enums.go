package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// QuoteStatus is derived from a quote's dates; it is never stored.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// JobStatus is derived from a job's dates; it is never stored.
type JobStatus string

const (
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobInvoiced   JobStatus = "invoiced"
)

// InvoiceStatus is derived from an invoice's dates; it is never stored.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)
