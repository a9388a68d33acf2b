package commands

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
	"github.com/smallbiz-dev/smallbiz/internal/workflow"
)

func newJobCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Track jobs from accepted quotes through to invoicing",
	}
	cmd.AddCommand(
		newJobTransitionCommand(opts, "start", "Mark a job as started", workflow.StartJob),
		newJobTransitionCommand(opts, "complete", "Mark a job as completed", workflow.CompleteJob),
		newJobInvoiceCommand(opts),
		newJobListCommand(opts),
	)
	return cmd
}

func newJobTransitionCommand(opts *rootOptions, verb, short string, apply func(workflow.Store, string, civil.Date) (model.Job, error)) *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   verb + " <job-id>",
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
			j, err := apply(s.reg, args[0], day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s is now %s\n", j.JobID, j.Status())
			return s.commit(cmd, fmt.Sprintf("job: %s %s", verb, j.JobID))
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "date of the change, YYYY-MM-DD (default today)")
	return cmd
}

func newJobInvoiceCommand(opts *rootOptions) *cobra.Command {
	var (
		itemSpecs    []string
		gstInclusive bool
		dueDays      int
		on           string
	)

	cmd := &cobra.Command{
		Use:   "invoice <job-id>",
		Short: "Invoice a completed job",
		Long: `Issue an invoice for a completed job. Without --item the invoice
copies the line items of the job's quote.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if !cmd.Flags().Changed("due-days") {
				dueDays = s.cfg.Invoicing.DueDays
			}
			inv, err := workflow.CompleteJobToInvoice(s.reg, args[0], items, dueDays, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created invoice %s for job %s: total %s, due %s\n",
				inv.InvoiceID, args[0], money(inv.Total()), inv.DateDue)
			return s.commit(cmd, fmt.Sprintf("job: invoice %s as %s", args[0], inv.InvoiceID))
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&itemSpecs, "item", nil, `line item as "description=quantity@unit_price" (repeatable)`)
	f.BoolVar(&gstInclusive, "gst-inclusive", false, "unit prices include GST")
	f.IntVar(&dueDays, "due-days", 0, "payment terms in days (default from config)")
	f.StringVar(&on, "date", "", "invoice date, YYYY-MM-DD (default today)")
	return cmd
}

func newJobListCommand(opts *rootOptions) *cobra.Command {
	var filter storage.DocumentFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "JOB\tQUOTE\tCLIENT\tACCEPTED\tSCHEDULED\tSTATUS")
			for _, j := range s.reg.Jobs(filter) {
				quote := j.QuoteID
				if quote == "" {
					quote = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					j.JobID, quote, j.ClientID, j.DateAccepted, dateOrDash(j.ScheduledDate), j.Status())
			}
			return tw.Flush()
		},
	}
	addDocumentFilterFlags(cmd, &filter)
	return cmd
}
