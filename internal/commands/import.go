package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/bank"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var (
		format      string
		accountName string
		bankAccount string
	)

	cmd := &cobra.Command{
		Use:   "import [file.csv ...]",
		Short: "Import bank statement CSV files as unclassified transactions",
		Long: `Import bank statement CSV files. With no files, every CSV waiting in
imports/ is imported and then moved to imports/processed/.

Rows already in the ledger (same date, description and amount) are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			formats, err := s.reg.BankFormats()
			if errors.Is(err, errs.ErrNotFound) {
				return fmt.Errorf("no bank formats configured (add one with smallbiz bank-format add): %w", err)
			}
			if err != nil {
				return err
			}
			parsers, err := bank.RegistryFor(formats)
			if err != nil {
				return err
			}
			parser, err := pickParser(parsers, format)
			if err != nil {
				return err
			}

			importOpts := bank.ImportOptions{
				BankName:            parser.Format(),
				AccountName:         accountName,
				BankAccount:         s.cfg.Import.BankAccount,
				ExpenseAccount:      s.cfg.Import.ExpenseAccount,
				IncomeAccount:       s.cfg.Import.IncomeAccount,
				DuplicatesByAccount: s.cfg.Import.DuplicatesByAccount,
			}
			if bankAccount != "" {
				importOpts.BankAccount = strings.ToUpper(bankAccount)
			}
			if importOpts.AccountName == "" {
				importOpts.AccountName = importOpts.BankAccount
			}

			type job struct{ name, path string }
			var jobs []job
			scanned := len(args) == 0
			if scanned {
				files, err := bank.Scan(s.dir)
				if err != nil {
					return err
				}
				for _, f := range files {
					jobs = append(jobs, job{f.Name, f.Path})
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No CSV files waiting in imports/")
					return nil
				}
			} else {
				for _, a := range args {
					jobs = append(jobs, job{a, a})
				}
			}

			out := cmd.OutOrStdout()
			var imported, duplicates int
			for _, j := range jobs {
				res, err := bank.Import(cmd.Context(), s.reg, j.path, parser, importOpts)
				if err != nil {
					return err
				}
				if scanned {
					if err := bank.MarkProcessed(s.dir, j.name); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "%s: %d imported, %d duplicates\n", j.name, res.Imported, res.Duplicates)
				imported += res.Imported
				duplicates += res.Duplicates
			}
			if len(jobs) > 1 {
				fmt.Fprintf(out, "Total: %d imported, %d duplicates\n", imported, duplicates)
			}
			if imported == 0 {
				return nil
			}
			return s.commit(cmd, fmt.Sprintf("import: %d transactions from %d files", imported, len(jobs)))
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "bank format name (optional when only one is configured)")
	cmd.Flags().StringVar(&accountName, "account-name", "", "bank account name recorded on each transaction")
	cmd.Flags().StringVar(&bankAccount, "bank-account", "", "ledger account the statement belongs to (default from config)")
	return cmd
}

func pickParser(parsers *bank.Registry, format string) (bank.Parser, error) {
	names := parsers.Formats()
	sort.Strings(names)
	if format == "" {
		if len(names) != 1 {
			return nil, fmt.Errorf("choose a bank format with --format (one of %s): %w", strings.Join(names, ", "), errs.ErrInvalid)
		}
		format = names[0]
	}
	p := parsers.Get(format)
	if p == nil {
		return nil, fmt.Errorf("bank format %q (configured: %s): %w", format, strings.Join(names, ", "), errs.ErrNotFound)
	}
	return p, nil
}

func newBankFormatCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank-format",
		Short: "Configure the CSV layouts of your banks' statement exports",
	}
	cmd.AddCommand(newBankFormatAddCommand(opts), newBankFormatListCommand(opts))
	return cmd
}

func newBankFormatAddCommand(opts *rootOptions) *cobra.Command {
	var f model.BankFormat

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or replace a bank CSV format",
		Example: `  smallbiz bank-format add westpac --date-column Date --description-column Narrative \
    --debit-column "Debit Amount" --credit-column "Credit Amount" --date-format %d/%m/%Y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			f.Name = args[0]
			if _, err := bank.NewFormatParser(f); err != nil {
				return err
			}

			formats, err := s.reg.BankFormats()
			if err != nil && !errors.Is(err, errs.ErrNotFound) {
				return err
			}
			kept := formats.Formats[:0]
			for _, existing := range formats.Formats {
				if !strings.EqualFold(existing.Name, f.Name) {
					kept = append(kept, existing)
				}
			}
			formats.Formats = append(kept, f)
			if err := formats.Validate(); err != nil {
				return err
			}
			if err := s.reg.SaveBankFormats(formats); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved bank format %s\n", f.Name)
			return s.commit(cmd, "bank-format: "+f.Name)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.DateColumn, "date-column", "Date", "date column header")
	fl.StringVar(&f.DescriptionColumn, "description-column", "Description", "description column header")
	fl.StringVar(&f.DebitColumn, "debit-column", "", "money-out column header")
	fl.StringVar(&f.CreditColumn, "credit-column", "", "money-in column header")
	fl.StringVar(&f.AmountColumn, "amount-column", "", "signed amount column header (instead of debit/credit)")
	fl.StringVar(&f.BalanceColumn, "balance-column", "", "running balance column header")
	fl.StringVar(&f.DateFormat, "date-format", "%d/%m/%Y", "strftime-style date format")
	return cmd
}

func newBankFormatListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured bank formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			formats, err := s.reg.BankFormats()
			if err != nil && !errors.Is(err, errs.ErrNotFound) {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "NAME\tDATE\tDESCRIPTION\tAMOUNT\tDATE FORMAT")
			for _, f := range formats.Formats {
				amount := f.AmountColumn
				if amount == "" {
					amount = f.DebitColumn + " / " + f.CreditColumn
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Name, f.DateColumn, f.DescriptionColumn, amount, f.DateFormat)
			}
			return tw.Flush()
		},
	}
}
