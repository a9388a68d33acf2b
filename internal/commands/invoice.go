package commands

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
	"github.com/smallbiz-dev/smallbiz/internal/workflow"
)

func newInvoiceCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Record invoice payments and cancellations",
	}
	cmd.AddCommand(
		newInvoiceTransitionCommand(opts, "issue", "Send a draft invoice", workflow.IssueInvoice),
		newInvoicePayCommand(opts),
		newInvoiceTransitionCommand(opts, "cancel", "Cancel an unpaid invoice", workflow.CancelInvoice),
		newInvoiceListCommand(opts),
		newInvoiceShowCommand(opts),
	)
	return cmd
}

func newInvoiceTransitionCommand(opts *rootOptions, verb, short string, apply func(workflow.Store, string, civil.Date) (model.Invoice, error)) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   verb + " <invoice-id>",
		Short: short,
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
			inv, err := apply(s.reg, args[0], day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s is now %s (version %d)\n", inv.InvoiceID, inv.Status(day), inv.Version)
			return s.commit(cmd, fmt.Sprintf("invoice: %s %s", verb, inv.InvoiceID))
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "date of the change, YYYY-MM-DD (default today)")
	return cmd
}

func newInvoicePayCommand(opts *rootOptions) *cobra.Command {
	var amount, reference, on string

	cmd := &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Record payment of an invoice",
		Long:  "Record payment of a sent or overdue invoice. The amount defaults to the invoice total.",
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
			inv, err := s.reg.Invoice(args[0], 0)
			if err != nil {
				return err
			}
			paid := inv.Total()
			if amount != "" {
				if paid, err = parseAmount(amount); err != nil {
					return err
				}
			}
			inv, err = workflow.RecordPayment(s.reg, args[0], paid, reference, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded payment of %s against invoice %s\n", money(paid), inv.InvoiceID)
			return s.commit(cmd, "invoice: pay "+inv.InvoiceID)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount received (default the invoice total)")
	cmd.Flags().StringVar(&reference, "ref", "", "payment reference")
	cmd.Flags().StringVar(&on, "date", "", "payment date, YYYY-MM-DD (default today)")
	return cmd
}

func newInvoiceListCommand(opts *rootOptions) *cobra.Command {
	var filter storage.DocumentFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			asOf := today()
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "INVOICE\tVERSION\tCLIENT\tISSUED\tDUE\tSTATUS\tTOTAL\tDAYS OUT")
			for _, inv := range s.reg.Invoices(filter) {
				days := "-"
				if n, ok := inv.DaysOutstanding(asOf); ok {
					days = fmt.Sprint(n)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					inv.InvoiceID, inv.Version, inv.ClientID, dateOrDash(inv.DateIssued), inv.DateDue,
					inv.Status(asOf), money(inv.Total()), days)
			}
			return tw.Flush()
		},
	}
	addDocumentFilterFlags(cmd, &filter)
	return cmd
}

func newInvoiceShowCommand(opts *rootOptions) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "show <invoice-id>",
		Short: "Show an invoice with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			inv, err := s.reg.Invoice(args[0], version)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Invoice %s v%d for %s (%s)\n", inv.InvoiceID, inv.Version, inv.ClientID, inv.Status(today()))
			fmt.Fprintf(out, "Issued %s, due %s, paid %s\n", dateOrDash(inv.DateIssued), inv.DateDue, dateOrDash(inv.DatePaid))
			writeItems(cmd, inv.LineItems)
			fmt.Fprintf(out, "Subtotal %s  GST %s  Total %s\n", money(inv.Subtotal()), money(inv.GST()), money(inv.Total()))
			if inv.PaymentAmount != nil {
				fmt.Fprintf(out, "Paid %s (ref %s)\n", money(*inv.PaymentAmount), inv.PaymentReference)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "version to show (default latest)")
	return cmd
}
