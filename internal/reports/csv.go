package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// LedgerHeader is the CSV header written by WriteLedgerCSV.
const LedgerHeader = "transaction_id,date,description,account_code,debit,credit,gst_inclusive,source_bank,import_reference,notes"

// MarshalEntry converts one journal entry of t to a ledger CSV row.
func MarshalEntry(t model.Transaction, e model.JournalEntry) []string {
	row := []string{
		t.TransactionID,
		t.Date.String(),
		t.Description,
		e.AccountCode,
		"",
		"",
		strconv.FormatBool(t.GSTInclusive),
		t.SourceBank,
		t.ImportReference,
		t.Notes,
	}
	if !e.Debit.IsZero() {
		row[4] = e.Debit.StringFixed(2)
	}
	if !e.Credit.IsZero() {
		row[5] = e.Credit.StringFixed(2)
	}
	return row
}

// WriteLedgerCSV writes one row per journal entry, header first.
func WriteLedgerCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(LedgerHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := 2
	for _, t := range txns {
		for _, e := range t.Entries {
			if err := cw.Write(MarshalEntry(t, e)); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	cw.Flush()
	return cw.Error()
}

type csvRows struct {
	rows [][]string
}

func (c *csvRows) add(cells ...string) { c.rows = append(c.rows, cells) }

func (c *csvRows) write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(c.rows); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func amount(d decimal.Decimal) string { return d.StringFixed(2) }

func (c *csvRows) lines(title, category string, lines []Line, totalLabel string, total decimal.Decimal) {
	c.add(title, "", "")
	for _, l := range lines {
		c.add(category, l.Name, amount(l.Balance))
	}
	c.add("", totalLabel, amount(total))
}

// WriteProfitLossCSV writes a Category,Account,Amount table.
func WriteProfitLossCSV(w io.Writer, r ProfitLossReport) error {
	var c csvRows
	c.add("Category", "Account", "Amount")
	c.lines("INCOME", "Income", r.Income, "Total Income", r.TotalIncome)
	c.add("", "", "")
	c.lines("EXPENSES", "Expense", r.Expenses, "Total Expenses", r.TotalExpenses)
	c.add("", "", "")
	c.add("", "NET PROFIT", amount(r.NetProfit))
	return c.write(w)
}

// WriteBalanceSheetCSV writes a Category,Account,Amount table.
func WriteBalanceSheetCSV(w io.Writer, r BalanceSheetReport) error {
	var c csvRows
	c.add("Category", "Account", "Amount")
	c.lines("ASSETS", "Asset", r.Assets, "Total Assets", r.TotalAssets)
	c.add("", "", "")
	c.lines("LIABILITIES", "Liability", r.Liabilities, "Total Liabilities", r.TotalLiabilities)
	c.add("", "", "")
	c.lines("EQUITY", "Equity", r.Equity, "Total Equity", r.TotalEquity)
	c.add("", "Current Earnings", amount(r.CurrentEarnings))
	return c.write(w)
}

// WriteBASCSV writes an Item,Amount table.
func WriteBASCSV(w io.Writer, r BASReport) error {
	var c csvRows
	c.add("Item", "Amount")
	c.add("Total Sales (GST Inclusive)", amount(r.TotalSales))
	c.add("GST on Sales", amount(r.GSTOnSales))
	c.add("", "")
	c.add("Total Purchases (GST Inclusive)", amount(r.TotalPurchases))
	c.add("GST on Purchases", amount(r.GSTOnPurchases))
	c.add("", "")
	c.add("NET GST (Owed to/from ATO)", amount(r.NetGST))
	return c.write(w)
}
