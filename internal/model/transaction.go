package model

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// UnclassifiedMarker appears in the account code of entries awaiting classification.
const UnclassifiedMarker = "UNCLASSIFIED"

// JournalEntry is one side of a double-entry transaction.
type JournalEntry struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Debit returns a debit entry against account.
func Debit(account string, amount decimal.Decimal) JournalEntry {
	return JournalEntry{AccountCode: account, Debit: amount}
}

// Credit returns a credit entry against account.
func Credit(account string, amount decimal.Decimal) JournalEntry {
	return JournalEntry{AccountCode: account, Credit: amount}
}

// Validate enforces non-negative amounts and exactly one non-zero side.
func (e JournalEntry) Validate() error {
	v := newValidator("journal_entry")
	if e.AccountCode == "" {
		v.addf("account_code", "must not be empty")
	}
	if e.Debit.IsNegative() {
		v.addf("debit", "must not be negative, got %s", e.Debit)
	}
	if e.Credit.IsNegative() {
		v.addf("credit", "must not be negative, got %s", e.Credit)
	}
	hasDebit := !e.Debit.IsZero()
	hasCredit := !e.Credit.IsZero()
	switch {
	case hasDebit && hasCredit:
		v.addf("", "entry %s cannot have both debit and credit", e.AccountCode)
	case !hasDebit && !hasCredit:
		v.addf("", "entry %s must have either debit or credit", e.AccountCode)
	}
	if !hasCents(e.Debit) || !hasCents(e.Credit) {
		v.addf("", "entry %s has more than 2 decimal places", e.AccountCode)
	}
	return v.err()
}

// IsUnclassified reports whether the entry still carries the unclassified marker.
func (e JournalEntry) IsUnclassified() bool {
	return strings.Contains(e.AccountCode, UnclassifiedMarker)
}

// TransactionKey identifies a transaction in storage.
type TransactionKey struct {
	ID   string
	Date civil.Date
}

func (k TransactionKey) String() string {
	return fmt.Sprintf("%s@%s", k.ID, k.Date)
}

// Transaction is a balanced set of journal entries on one date.
type Transaction struct {
	TransactionID   string         `json:"transaction_id"`
	Date            civil.Date     `json:"date"`
	Description     string         `json:"description"`
	Entries         []JournalEntry `json:"entries"`
	ReceiptPath     string         `json:"receipt_path,omitempty"`
	GSTInclusive    bool           `json:"gst_inclusive"`
	Notes           string         `json:"notes,omitempty"`
	SourceBank      string         `json:"source_bank,omitempty"`
	SourceAccount   string         `json:"source_account,omitempty"`
	ImportReference string         `json:"import_reference,omitempty"`
}

// NewTransaction builds a validated Transaction.
func NewTransaction(id string, date civil.Date, description string, entries ...JournalEntry) (Transaction, error) {
	txn := Transaction{
		TransactionID: id,
		Date:          date,
		Description:   description,
		Entries:       entries,
	}
	if err := txn.Validate(); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

// Validate checks entry shape and that debits equal credits.
func (t Transaction) Validate() error {
	v := newValidator("transaction")
	if t.TransactionID == "" {
		v.addf("transaction_id", "must not be empty")
	}
	if !t.Date.IsValid() {
		v.addf("date", "must be a valid date")
	}
	if strings.TrimSpace(t.Description) == "" {
		v.addf("description", "must not be empty")
	}
	if len(t.Entries) < 2 {
		v.addf("entries", "at least 2 entries are required, got %d", len(t.Entries))
	}
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, e := range t.Entries {
		v.merge(e.Validate())
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		v.addf("entries", "not balanced: debits=%s, credits=%s", totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return v.err()
}

// Key returns the storage identity (id, date).
func (t Transaction) Key() TransactionKey {
	return TransactionKey{ID: t.TransactionID, Date: t.Date}
}

// Amount is the total of the debit side.
func (t Transaction) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Debit)
	}
	return RoundCents(total)
}

// FinancialYear is based on the transaction date.
func (t Transaction) FinancialYear() string {
	return FinancialYear(t.Date)
}

// IsUnclassified reports whether any entry still carries the unclassified marker.
func (t Transaction) IsUnclassified() bool {
	for _, e := range t.Entries {
		if e.IsUnclassified() {
			return true
		}
	}
	return false
}

// HasAccount reports whether any entry posts to code.
func (t Transaction) HasAccount(code string) bool {
	for _, e := range t.Entries {
		if e.AccountCode == code {
			return true
		}
	}
	return false
}

// Reversal returns a new transaction with every entry's debit and credit swapped.
func (t Transaction) Reversal(id string, date civil.Date) Transaction {
	entries := make([]JournalEntry, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = JournalEntry{AccountCode: e.AccountCode, Debit: e.Credit, Credit: e.Debit}
	}
	return Transaction{
		TransactionID: id,
		Date:          date,
		Description:   fmt.Sprintf("VOID: %s (reverses %s)", t.Description, t.TransactionID),
		Entries:       entries,
		GSTInclusive:  t.GSTInclusive,
	}
}

// Clone returns a deep copy.
func (t Transaction) Clone() Transaction {
	c := t
	if t.Entries != nil {
		c.Entries = make([]JournalEntry, len(t.Entries))
		copy(c.Entries, t.Entries)
	}
	return c
}

// NewJournalEntry builds a validated JournalEntry.
func NewJournalEntry(account string, debit, credit decimal.Decimal) (JournalEntry, error) {
	e := JournalEntry{AccountCode: account, Debit: debit, Credit: credit}
	if err := e.Validate(); err != nil {
		return JournalEntry{}, err
	}
	return e, nil
}
