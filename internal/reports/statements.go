package reports

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// Line is one account's balance in a report.
type Line struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// ProfitLossReport covers income and expenses over a date range.
type ProfitLossReport struct {
	Start         civil.Date      `json:"start_date"`
	End           civil.Date      `json:"end_date"`
	Income        []Line          `json:"income"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	Expenses      []Line          `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
}

// ProfitLoss reports income and expense accounts with a positive balance
// from start to end inclusive, in chart order.
func ProfitLoss(src Source, chart model.ChartOfAccounts, start, end civil.Date) ProfitLossReport {
	balances := debitBalances(between(src, start, end))

	r := ProfitLossReport{Start: start, End: end}
	r.Income, r.TotalIncome = section(chart, model.AccountTypeIncome, balances, decimal.Decimal.IsPositive)
	r.Expenses, r.TotalExpenses = section(chart, model.AccountTypeExpense, balances, decimal.Decimal.IsPositive)
	r.NetProfit = r.TotalIncome.Sub(r.TotalExpenses)
	return r
}

// BalanceSheetReport is the position of the business on one date.
type BalanceSheetReport struct {
	AsOf             civil.Date      `json:"as_of_date"`
	Assets           []Line          `json:"assets"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	Liabilities      []Line          `json:"liabilities"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	Equity           []Line          `json:"equity"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
	// CurrentEarnings is income less expenses not yet closed to equity.
	CurrentEarnings decimal.Decimal `json:"current_earnings"`
}

// Balanced reports whether assets equal liabilities plus equity plus
// current earnings.
func (r BalanceSheetReport) Balanced() bool {
	return r.TotalAssets.Equal(r.TotalLiabilities.Add(r.TotalEquity).Add(r.CurrentEarnings))
}

// BalanceSheet reports every asset, liability and equity account with a
// non-zero balance on asOf. Balances accumulate across financial years.
func BalanceSheet(src Source, chart model.ChartOfAccounts, asOf civil.Date) BalanceSheetReport {
	balances := debitBalances(upTo(src, asOf))
	nonZero := func(d decimal.Decimal) bool { return !d.IsZero() }

	r := BalanceSheetReport{AsOf: asOf}
	r.Assets, r.TotalAssets = section(chart, model.AccountTypeAsset, balances, nonZero)
	r.Liabilities, r.TotalLiabilities = section(chart, model.AccountTypeLiability, balances, nonZero)
	r.Equity, r.TotalEquity = section(chart, model.AccountTypeEquity, balances, nonZero)

	_, income := section(chart, model.AccountTypeIncome, balances, nonZero)
	_, expenses := section(chart, model.AccountTypeExpense, balances, nonZero)
	r.CurrentEarnings = income.Sub(expenses)
	return r
}

func section(chart model.ChartOfAccounts, t model.AccountType, debit map[string]decimal.Decimal, include func(decimal.Decimal) bool) ([]Line, decimal.Decimal) {
	var lines []Line
	total := decimal.Zero
	for _, a := range chart.ByType(t) {
		bal := normalBalance(t, debit[a.Code])
		if !include(bal) {
			continue
		}
		lines = append(lines, Line{Code: a.Code, Name: a.Name, Balance: bal})
		total = total.Add(bal)
	}
	return lines, total
}

// BASReport summarises GST for a Business Activity Statement.
type BASReport struct {
	Start          civil.Date      `json:"start_date"`
	End            civil.Date      `json:"end_date"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	GSTOnSales     decimal.Decimal `json:"gst_on_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	GSTOnPurchases decimal.Decimal `json:"gst_on_purchases"`
	NetGST         decimal.Decimal `json:"net_gst"`
}

// BAS totals sales and purchases between start and end inclusive. A
// transaction crediting an income account is a sale; otherwise one debiting
// an expense account is a purchase. GST is taken out of each entry amount
// only when the transaction is GST inclusive.
func BAS(src Source, chart model.ChartOfAccounts, start, end civil.Date) BASReport {
	income := chart.Codes(model.AccountTypeIncome)
	expense := chart.Codes(model.AccountTypeExpense)

	r := BASReport{Start: start, End: end}
	for _, t := range between(src, start, end) {
		switch {
		case anyEntry(t, func(e model.JournalEntry) bool { return income[e.AccountCode] && e.Credit.IsPositive() }):
			for _, e := range t.Entries {
				if !income[e.AccountCode] {
					continue
				}
				r.TotalSales = r.TotalSales.Add(e.Credit)
				if t.GSTInclusive {
					r.GSTOnSales = r.GSTOnSales.Add(model.GSTComponent(e.Credit, true))
				}
			}
		case anyEntry(t, func(e model.JournalEntry) bool { return expense[e.AccountCode] && e.Debit.IsPositive() }):
			for _, e := range t.Entries {
				if !expense[e.AccountCode] {
					continue
				}
				r.TotalPurchases = r.TotalPurchases.Add(e.Debit)
				if t.GSTInclusive {
					r.GSTOnPurchases = r.GSTOnPurchases.Add(model.GSTComponent(e.Debit, true))
				}
			}
		}
	}
	r.NetGST = r.GSTOnSales.Sub(r.GSTOnPurchases)
	return r
}

func anyEntry(t model.Transaction, pred func(model.JournalEntry) bool) bool {
	for _, e := range t.Entries {
		if pred(e) {
			return true
		}
	}
	return false
}
