package commands

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
	"github.com/smallbiz-dev/smallbiz/internal/workflow"
)

func newQuoteCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Create quotes and move them through send, accept and reject",
	}
	cmd.AddCommand(
		newQuoteNewCommand(opts),
		newQuoteTransitionCommand(opts, "send", "Mark a quote as sent", workflow.SendQuote),
		newQuoteAcceptCommand(opts),
		newQuoteTransitionCommand(opts, "reject", "Mark a quote as rejected", workflow.RejectQuote),
		newQuoteListCommand(opts),
		newQuoteShowCommand(opts),
	)
	return cmd
}

// addDocumentFilterFlags registers the list filters shared by quotes, jobs and invoices.
func addDocumentFilterFlags(cmd *cobra.Command, f *storage.DocumentFilter) {
	cmd.Flags().StringVar(&f.FinancialYear, "fy", "", "financial year, e.g. 2025-26")
	cmd.Flags().BoolVar(&f.AllVersions, "all-versions", false, "include superseded versions")
}

func newQuoteNewCommand(opts *rootOptions) *cobra.Command {
	var (
		clientID     string
		itemSpecs    []string
		gstInclusive bool
		validDays    int
		on           string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a draft quote",
		Example: `  smallbiz quote new --client "Acme Pty Ltd" \
    --item "Site survey=1@450" --item "Drafting=6@95.50"`,
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
			items, err := parseItems(itemSpecs, gstInclusive)
			if err != nil {
				return err
			}
			if validDays == 0 {
				validDays = s.cfg.Invoicing.QuoteValidDays
			}
			q, err := workflow.NewQuote(s.reg, clientID, items, validDays, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created quote %s for %s: total %s (GST %s), valid until %s\n",
				q.QuoteID, q.ClientID, money(q.Total()), money(q.GST()), q.DateValidUntil)
			return s.commit(cmd, "quote: new "+q.QuoteID)
		},
	}

	f := cmd.Flags()
	f.StringVar(&clientID, "client", "", "client id (required)")
	_ = cmd.MarkFlagRequired("client")
	f.StringArrayVar(&itemSpecs, "item", nil, `line item as "description=quantity@unit_price" (repeatable)`)
	_ = cmd.MarkFlagRequired("item")
	f.BoolVar(&gstInclusive, "gst-inclusive", false, "unit prices include GST")
	f.IntVar(&validDays, "valid-days", 0, "days the quote stays valid (default from config)")
	f.StringVar(&on, "date", "", "creation date, YYYY-MM-DD (default today)")
	return cmd
}

func newQuoteTransitionCommand(opts *rootOptions, verb, short string, apply func(workflow.Store, string, civil.Date) (model.Quote, error)) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   verb + " <quote-id>",
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
			q, err := apply(s.reg, args[0], day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Quote %s is now %s (version %d)\n", q.QuoteID, q.Status(day), q.Version)
			return s.commit(cmd, fmt.Sprintf("quote: %s %s", verb, q.QuoteID))
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "date of the change, YYYY-MM-DD (default today)")
	return cmd
}

func newQuoteAcceptCommand(opts *rootOptions) *cobra.Command {
	var on, scheduled string

	cmd := &cobra.Command{
		Use:   "accept <quote-id>",
		Short: "Accept a quote and create its job",
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
			sched, err := parseOptionalDate(scheduled)
			if err != nil {
				return err
			}
			job, err := workflow.AcceptQuoteToJob(s.reg, args[0], sched, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accepted quote %s; created job %s\n", args[0], job.JobID)
			return s.commit(cmd, fmt.Sprintf("quote: accept %s as job %s", args[0], job.JobID))
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "acceptance date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&scheduled, "scheduled", "", "scheduled start date for the job, YYYY-MM-DD")
	return cmd
}

func newQuoteListCommand(opts *rootOptions) *cobra.Command {
	var filter storage.DocumentFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			asOf := today()
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "QUOTE\tVERSION\tCLIENT\tCREATED\tVALID UNTIL\tSTATUS\tTOTAL")
			for _, q := range s.reg.Quotes(filter) {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					q.QuoteID, q.Version, q.ClientID, q.DateCreated, q.DateValidUntil, q.Status(asOf), money(q.Total()))
			}
			return tw.Flush()
		},
	}
	addDocumentFilterFlags(cmd, &filter)
	return cmd
}

func newQuoteShowCommand(opts *rootOptions) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "show <quote-id>",
		Short: "Show a quote with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			q, err := s.reg.Quote(args[0], version)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Quote %s v%d for %s (%s)\n", q.QuoteID, q.Version, q.ClientID, q.Status(today()))
			fmt.Fprintf(out, "Created %s, sent %s, valid until %s\n", q.DateCreated, dateOrDash(q.DateSent), q.DateValidUntil)
			writeItems(cmd, q.LineItems)
			fmt.Fprintf(out, "Subtotal %s  GST %s  Total %s\n", money(q.Subtotal()), money(q.GST()), money(q.Total()))
			if q.Notes != "" {
				fmt.Fprintf(out, "Notes: %s\n", q.Notes)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "version to show (default latest)")
	return cmd
}

func writeItems(cmd *cobra.Command, items []model.LineItem) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "DESCRIPTION\tQTY\tUNIT\tGST\tTOTAL")
	for _, li := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", li.Description, li.Quantity, money(li.UnitPrice), money(li.GST()), money(li.Total()))
	}
	_ = tw.Flush()
}
