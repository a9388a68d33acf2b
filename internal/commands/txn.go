package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/accounts"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/id"
	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

func newTxnCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transaction"},
		Short:   "Record and query ledger transactions",
		Long: `Record and query ledger transactions. A transaction is referenced as
ID@YYYY-MM-DD, or by ID alone when only one transaction has that ID.`,
	}
	cmd.AddCommand(
		newTxnAddCommand(opts),
		newTxnListCommand(opts),
		newTxnSearchCommand(opts),
		newTxnVoidCommand(opts),
		newTxnDeleteCommand(opts),
	)
	return cmd
}

// resolveTxn finds the transaction named by ref.
func (s *session) resolveTxn(ref string) (model.Transaction, error) {
	if txnID, day, ok := strings.Cut(ref, "@"); ok {
		d, err := parseDate(day)
		if err != nil {
			return model.Transaction{}, err
		}
		return s.reg.Transaction(txnID, d)
	}
	var found []model.Transaction
	for _, t := range s.reg.Transactions(storage.TransactionFilter{}) {
		if t.TransactionID == ref {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", ref, errs.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return model.Transaction{}, fmt.Errorf("transaction %s exists on %d dates, use ID@YYYY-MM-DD: %w", ref, len(found), errs.ErrConflict)
	}
}

func newTxnAddCommand(opts *rootOptions) *cobra.Command {
	var (
		on           string
		description  string
		debits       []string
		credits      []string
		gstInclusive bool
		notes        string
		receipt      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a manual journal transaction",
		Example: `  smallbiz txn add --date 2025-11-03 --desc "Office chair" \
    --debit EXP-OFFICE=220 --credit BANK-CHQ=220 --gst-inclusive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			day, err := parseDate(on)
			if err != nil {
				return err
			}
			var entries []model.JournalEntry
			for _, arg := range debits {
				e, err := parseEntry(arg, true)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}
			for _, arg := range credits {
				e, err := parseEntry(arg, false)
				if err != nil {
					return err
				}
				entries = append(entries, e)
			}

			chart, err := s.reg.ChartOfAccounts()
			if err != nil {
				return err
			}
			codes := make([]string, len(entries))
			for i, e := range entries {
				codes[i] = e.AccountCode
			}
			if err := accounts.NewService(chart).Require(codes...); err != nil {
				return err
			}

			txn, err := model.NewTransaction(id.NewTransactionID(day), day, description, entries...)
			if err != nil {
				return err
			}
			txn.GSTInclusive = gstInclusive
			txn.Notes = notes
			txn.ReceiptPath = receipt
			if err := s.reg.SaveTransaction(txn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s: %s %s\n", txn.Key(), txn.Description, money(txn.Amount()))
			return s.commit(cmd, "txn: add "+txn.TransactionID)
		},
	}

	f := cmd.Flags()
	f.StringVar(&on, "date", "", "transaction date, YYYY-MM-DD (default today)")
	f.StringVar(&description, "desc", "", "description (required)")
	_ = cmd.MarkFlagRequired("desc")
	f.StringArrayVar(&debits, "debit", nil, `debit entry as "ACCOUNT=amount" (repeatable)`)
	f.StringArrayVar(&credits, "credit", nil, `credit entry as "ACCOUNT=amount" (repeatable)`)
	f.BoolVar(&gstInclusive, "gst-inclusive", false, "amounts include GST")
	f.StringVar(&notes, "notes", "", "notes")
	f.StringVar(&receipt, "receipt", "", "path of the receipt under receipts/")
	return cmd
}

// addFilterFlags registers the date filters shared by txn and report commands.
func addFilterFlags(cmd *cobra.Command, fy, start, end *string) {
	cmd.Flags().StringVar(fy, "fy", "", "financial year, e.g. 2025-26")
	cmd.Flags().StringVar(start, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(end, "to", "", "last date, YYYY-MM-DD")
}

func transactionFilter(fy, start, end string) (storage.TransactionFilter, error) {
	f := storage.TransactionFilter{FinancialYear: fy}
	var err error
	if f.Start, err = parseOptionalDate(start); err != nil {
		return f, err
	}
	if f.End, err = parseOptionalDate(end); err != nil {
		return f, err
	}
	return f, nil
}

func writeTransactions(w io.Writer, txns []model.Transaction) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TRANSACTION\tDESCRIPTION\tACCOUNT\tDEBIT\tCREDIT")
	for _, t := range txns {
		for i, e := range t.Entries {
			ref, desc := "", ""
			if i == 0 {
				ref, desc = t.Key().String(), t.Description
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ref, desc, e.AccountCode, blankZero(e.Debit.StringFixed(2)), blankZero(e.Credit.StringFixed(2)))
		}
	}
	return tw.Flush()
}

func blankZero(s string) string {
	if s == "0.00" {
		return ""
	}
	return s
}

func newTxnListCommand(opts *rootOptions) *cobra.Command {
	var fy, start, end, account string
	var unclassified bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions with their journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			f, err := transactionFilter(fy, start, end)
			if err != nil {
				return err
			}
			var txns []model.Transaction
			switch {
			case unclassified:
				for _, t := range s.reg.Transactions(f) {
					if t.IsUnclassified() {
						txns = append(txns, t)
					}
				}
			case account != "":
				txns = s.reg.TransactionsByAccount(strings.ToUpper(account), f)
			default:
				txns = s.reg.Transactions(f)
			}
			return writeTransactions(cmd.OutOrStdout(), txns)
		},
	}
	addFilterFlags(cmd, &fy, &start, &end)
	cmd.Flags().StringVar(&account, "account", "", "only transactions posting to this account")
	cmd.Flags().BoolVar(&unclassified, "unclassified", false, "only transactions still awaiting classification")
	return cmd
}

func newTxnSearchCommand(opts *rootOptions) *cobra.Command {
	var fy, start, end, account, minAmount, maxAmount string

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search transactions by description, account and amount",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			f, err := transactionFilter(fy, start, end)
			if err != nil {
				return err
			}
			q := storage.TransactionQuery{TransactionFilter: f, AccountCode: strings.ToUpper(account)}
			if len(args) > 0 {
				q.Text = args[0]
			}
			if minAmount != "" {
				d, err := parseAmount(minAmount)
				if err != nil {
					return err
				}
				q.MinAmount = &d
			}
			if maxAmount != "" {
				d, err := parseAmount(maxAmount)
				if err != nil {
					return err
				}
				q.MaxAmount = &d
			}
			return writeTransactions(cmd.OutOrStdout(), s.reg.SearchTransactions(q))
		},
	}
	addFilterFlags(cmd, &fy, &start, &end)
	cmd.Flags().StringVar(&account, "account", "", "account code")
	cmd.Flags().StringVar(&minAmount, "min", "", "smallest entry amount")
	cmd.Flags().StringVar(&maxAmount, "max", "", "largest entry amount")
	return cmd
}

func newTxnVoidCommand(opts *rootOptions) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "void <transaction>",
		Short: "Reverse a transaction with a new, opposite transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			day, err := parseDate(on)
			if err != nil {
				return err
			}
			orig, err := s.resolveTxn(args[0])
			if err != nil {
				return err
			}
			rev, err := s.reg.VoidTransaction(orig.TransactionID, orig.Date, id.NewTransactionID(day), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Voided %s with %s\n", orig.Key(), rev.Key())
			return s.commit(cmd, fmt.Sprintf("txn: void %s", orig.TransactionID))
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "date of the reversal, YYYY-MM-DD (default today)")
	return cmd
}

func newTxnDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction>",
		Short: "Remove a transaction from the ledger",
		Long:  "Remove a transaction from the ledger. Prefer void, which keeps an audit trail.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			txn, err := s.resolveTxn(args[0])
			if err != nil {
				return err
			}
			if err := s.reg.DeleteTransaction(txn.TransactionID, txn.Date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", txn.Key())
			return s.commit(cmd, "txn: delete "+txn.TransactionID)
		},
	}
}
