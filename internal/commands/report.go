package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/accounts"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/id"
	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/reports"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial reports: profit and loss, balance sheet, BAS",
	}
	cmd.AddCommand(
		newReportPLCommand(opts),
		newReportBSCommand(opts),
		newReportBASCommand(opts),
		newReportBalanceCommand(opts),
		newReportCheckCommand(opts),
		newReportLedgerCommand(opts),
	)
	return cmd
}

// reportOutput is the --csv/--save choice shared by the report commands.
type reportOutput struct {
	csv  bool
	save bool
}

func (o *reportOutput) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.csv, "csv", false, "write CSV to stdout instead of a table")
	cmd.Flags().BoolVar(&o.save, "save", false, "also save the CSV under reports/")
}

// emit prints the table, or the CSV with --csv, and with --save writes the
// CSV to reports/<name>.csv.
func (o *reportOutput) emit(cmd *cobra.Command, s *session, name string, table func(io.Writer) error, csv func(io.Writer) error) error {
	if o.save {
		path := filepath.Join(s.dir, "reports", name+".csv")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating reports dir: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		if err := csv(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", path)
	}
	if o.csv {
		return csv(cmd.OutOrStdout())
	}
	return table(cmd.OutOrStdout())
}

// period resolves --fy/--from/--to, defaulting to the current financial year.
func period(fy, from, to string) (civil.Date, civil.Date, error) {
	start, end := model.FinancialYearBounds(today())
	if fy != "" {
		var first int
		_, err := fmt.Sscanf(fy, "%d-", &first)
		day := civil.Date{Year: first, Month: start.Month, Day: 1}
		if err != nil || !id.IsFinancialYearDir(fy) || model.FinancialYear(day) != fy {
			return civil.Date{}, civil.Date{}, fmt.Errorf("invalid financial year %q (want e.g. 2025-26): %w", fy, errs.ErrInvalid)
		}
		start, end = model.FinancialYearBounds(day)
	}
	var err error
	if from != "" {
		if start, err = parseDate(from); err != nil {
			return start, end, err
		}
	}
	if to != "" {
		if end, err = parseDate(to); err != nil {
			return start, end, err
		}
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("period ends %s before it starts %s: %w", end, start, errs.ErrInvalid)
	}
	return start, end, nil
}

func writeLines(tw io.Writer, heading string, lines []reports.Line) {
	fmt.Fprintln(tw, heading)
	for _, l := range lines {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", l.Code, l.Name, money(l.Balance))
	}
}

func newReportPLCommand(opts *rootOptions) *cobra.Command {
	var fy, from, to string
	var out reportOutput

	cmd := &cobra.Command{
		Use:   "pl",
		Short: "Profit and loss for a period (default the current financial year)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			start, end, err := period(fy, from, to)
			if err != nil {
				return err
			}
			chart, err := s.reg.ChartOfAccounts()
			if err != nil {
				return err
			}
			r := reports.ProfitLoss(s.reg, chart, start, end)
			name := fmt.Sprintf("profit_loss_%s_%s", start, end)
			return out.emit(cmd, s, name, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintf(tw, "Profit and loss %s to %s\n", start, end)
				writeLines(tw, "Income", r.Income)
				fmt.Fprintf(tw, "Total income\t\t%s\n", money(r.TotalIncome))
				writeLines(tw, "Expenses", r.Expenses)
				fmt.Fprintf(tw, "Total expenses\t\t%s\n", money(r.TotalExpenses))
				fmt.Fprintf(tw, "Net profit\t\t%s\n", money(r.NetProfit))
				return tw.Flush()
			}, func(w io.Writer) error { return reports.WriteProfitLossCSV(w, r) })
		},
	}
	addFilterFlags(cmd, &fy, &from, &to)
	out.register(cmd)
	return cmd
}

func newReportBSCommand(opts *rootOptions) *cobra.Command {
	var asOf string
	var out reportOutput

	cmd := &cobra.Command{
		Use:   "bs",
		Short: "Balance sheet as of a date (default today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			day, err := parseDate(asOf)
			if err != nil {
				return err
			}
			chart, err := s.reg.ChartOfAccounts()
			if err != nil {
				return err
			}
			r := reports.BalanceSheet(s.reg, chart, day)
			name := fmt.Sprintf("balance_sheet_%s", day)
			return out.emit(cmd, s, name, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintf(tw, "Balance sheet as of %s\n", day)
				writeLines(tw, "Assets", r.Assets)
				fmt.Fprintf(tw, "Total assets\t\t%s\n", money(r.TotalAssets))
				writeLines(tw, "Liabilities", r.Liabilities)
				fmt.Fprintf(tw, "Total liabilities\t\t%s\n", money(r.TotalLiabilities))
				writeLines(tw, "Equity", r.Equity)
				fmt.Fprintf(tw, "Current earnings\t\t%s\n", money(r.CurrentEarnings))
				fmt.Fprintf(tw, "Total equity\t\t%s\n", money(r.TotalEquity.Add(r.CurrentEarnings)))
				if !r.Balanced() {
					fmt.Fprintln(tw, "WARNING: assets do not equal liabilities plus equity")
				}
				return tw.Flush()
			}, func(w io.Writer) error { return reports.WriteBalanceSheetCSV(w, r) })
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "report date, YYYY-MM-DD (default today)")
	out.register(cmd)
	return cmd
}

func newReportBASCommand(opts *rootOptions) *cobra.Command {
	var fy, from, to string
	var out reportOutput

	cmd := &cobra.Command{
		Use:   "bas",
		Short: "Business Activity Statement GST summary for a period",
		Example: `  smallbiz report bas --from 2025-07-01 --to 2025-09-30`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			start, end, err := period(fy, from, to)
			if err != nil {
				return err
			}
			chart, err := s.reg.ChartOfAccounts()
			if err != nil {
				return err
			}
			r := reports.BAS(s.reg, chart, start, end)
			name := fmt.Sprintf("bas_%s_%s", start, end)
			return out.emit(cmd, s, name, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintf(tw, "BAS %s to %s\n", start, end)
				fmt.Fprintf(tw, "Total sales\t%s\n", money(r.TotalSales))
				fmt.Fprintf(tw, "GST on sales\t%s\n", money(r.GSTOnSales))
				fmt.Fprintf(tw, "Total purchases\t%s\n", money(r.TotalPurchases))
				fmt.Fprintf(tw, "GST on purchases\t%s\n", money(r.GSTOnPurchases))
				fmt.Fprintf(tw, "Net GST payable\t%s\n", money(r.NetGST))
				return tw.Flush()
			}, func(w io.Writer) error { return reports.WriteBASCSV(w, r) })
		},
	}
	addFilterFlags(cmd, &fy, &from, &to)
	out.register(cmd)
	return cmd
}

func newReportBalanceCommand(opts *rootOptions) *cobra.Command {
	var asOf string
	var showTxns bool

	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Balance of one account as of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			day, err := parseDate(asOf)
			if err != nil {
				return err
			}
			chart, err := s.reg.ChartOfAccounts()
			if err != nil {
				return err
			}
			code := strings.ToUpper(args[0])
			bal, err := reports.NormalBalance(s.reg, chart, code, day)
			if err != nil {
				return err
			}
			a, _ := chart.Account(code)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s) as of %s: %s\n", a.Code, a.Name, a.Type, day, money(bal))
			if showTxns {
				return writeTransactions(out, reports.AccountTransactions(s.reg, code, day))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&showTxns, "transactions", false, "list the transactions posted to the account")
	return cmd
}

func newReportCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check every stored transaction against the ledger invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			chart, err := s.reg.ChartOfAccounts()
			if err != nil {
				return err
			}
			txns := s.reg.Transactions(storage.TransactionFilter{})
			problems := reports.CheckLedger(txns, accounts.NewService(chart))
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, p.Error())
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problems in %d transactions: %w", len(problems), len(txns), errs.ErrInvalid)
			}
			fmt.Fprintf(out, "%d transactions OK\n", len(txns))
			return nil
		},
	}
}

func newReportLedgerCommand(opts *rootOptions) *cobra.Command {
	var fy, from, to string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Write the general ledger as CSV, one row per journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			f, err := transactionFilter(fy, from, to)
			if err != nil {
				return err
			}
			return reports.WriteLedgerCSV(cmd.OutOrStdout(), s.reg.Transactions(f))
		},
	}
	addFilterFlags(cmd, &fy, &from, &to)
	return cmd
}
