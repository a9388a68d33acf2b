package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

func newClientCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(
		newClientAddCommand(opts),
		newClientListCommand(opts),
		newClientShowCommand(opts),
	)
	return cmd
}

func newClientAddCommand(opts *rootOptions) *cobra.Command {
	var c model.Client

	cmd := &cobra.Command{
		Use:   "add <client-id>",
		Short: "Add or replace a client",
		Long:  "Add a client. The client id is the client's business name and is matched case-insensitively.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			c.ClientID = args[0]
			if c.Name == "" {
				c.Name = c.ClientID
			}
			if err := c.Validate(); err != nil {
				return err
			}
			if err := s.reg.SaveClient(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved client %s\n", c.ClientID)
			return s.commit(cmd, "client: "+c.ClientID)
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.Name, "name", "", "display name (defaults to the client id)")
	f.StringVar(&c.Email, "email", "", "email address")
	f.StringVar(&c.Phone, "phone", "", "phone number")
	f.StringVar(&c.ContactPerson, "contact", "", "contact person")
	f.StringVar(&c.ABN, "abn", "", "Australian Business Number")
	f.StringVar(&c.FormattedAddress, "address", "", "physical address")
	f.StringVar(&c.BillingFormattedAddress, "billing-address", "", "billing address, if different")
	f.StringVar(&c.Notes, "notes", "", "free-form notes")
	return cmd
}

func newClientListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "CLIENT\tCONTACT\tEMAIL\tPHONE")
			for _, c := range s.reg.Clients() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ClientID, c.ContactPerson, c.Email, c.Phone)
			}
			return tw.Flush()
		},
	}
}

func newClientShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <client-id>",
		Short: "Show a client with its quotes and invoices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			c, err := s.reg.Client(args[0])
			if err != nil {
				return err
			}
			asOf := today()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Client:   %s\n", c.Name)
			for _, kv := range [][2]string{
				{"Contact", c.ContactPerson},
				{"Email", c.Email},
				{"Phone", c.Phone},
				{"ABN", c.ABN},
				{"Address", c.FormattedAddress},
				{"Billing", c.BillingAddress()},
				{"Notes", c.Notes},
			} {
				if kv[1] != "" {
					fmt.Fprintf(out, "%-9s %s\n", kv[0]+":", kv[1])
				}
			}

			tw := newTable(out)
			for _, q := range s.reg.Quotes(storage.DocumentFilter{}) {
				if strings.EqualFold(q.ClientID, c.ClientID) {
					fmt.Fprintf(tw, "quote\t%s\t%s\t%s\n", q.QuoteID, q.Status(asOf), money(q.Total()))
				}
			}
			for _, inv := range s.reg.Invoices(storage.DocumentFilter{}) {
				if strings.EqualFold(inv.ClientID, c.ClientID) {
					fmt.Fprintf(tw, "invoice\t%s\t%s\t%s\n", inv.InvoiceID, inv.Status(asOf), money(inv.Total()))
				}
			}
			return tw.Flush()
		},
	}
}
