package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/smallbiz-dev/smallbiz/internal/business"
	"github.com/smallbiz-dev/smallbiz/internal/config"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/logger"
	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

// today is replaced in tests.
var today = model.Today

// session is an opened business directory.
type session struct {
	dir string
	cfg *config.Config
	reg *storage.Registry
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	reg, err := storage.Open(o.dataDir, storage.WithLogger(logger.FromContext(cmd.Context())))
	if err != nil {
		return nil, err
	}
	if !reg.SettingsExist() {
		return nil, fmt.Errorf("%s is not a business directory (run smallbiz init first): %w", o.dataDir, errs.ErrNotFound)
	}
	return &session{dir: o.dataDir, cfg: o.cfg, reg: reg}, nil
}

// commit snapshots the directory when git auto-commit is on.
func (s *session) commit(cmd *cobra.Command, message string) error {
	if _, err := business.Snapshot(cmd.Context(), s.dir, s.cfg, message); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// parseDate parses YYYY-MM-DD; empty means today.
func parseDate(s string) (civil.Date, error) {
	if s == "" {
		return today(), nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, errs.ErrInvalid)
	}
	return d, nil
}

func parseOptionalDate(s string) (*civil.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, errs.ErrInvalid)
	}
	return d, nil
}

// parseItem reads "description=quantity@unit_price", e.g. "Site visit=2@150".
func parseItem(s string, gstInclusive bool) (model.LineItem, error) {
	eq := strings.LastIndex(s, "=")
	at := strings.LastIndex(s, "@")
	if eq <= 0 || at < eq {
		return model.LineItem{}, fmt.Errorf("invalid item %q (want description=quantity@price): %w", s, errs.ErrInvalid)
	}
	qty, err := parseAmount(s[eq+1 : at])
	if err != nil {
		return model.LineItem{}, err
	}
	price, err := parseAmount(s[at+1:])
	if err != nil {
		return model.LineItem{}, err
	}
	return model.NewLineItem(strings.TrimSpace(s[:eq]), qty, price, gstInclusive)
}

func parseItems(specs []string, gstInclusive bool) ([]model.LineItem, error) {
	var items []model.LineItem
	for _, s := range specs {
		li, err := parseItem(s, gstInclusive)
		if err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, nil
}

// parseEntry reads "ACCOUNT=amount".
func parseEntry(s string, debit bool) (model.JournalEntry, error) {
	code, amount, ok := strings.Cut(s, "=")
	if !ok || code == "" {
		return model.JournalEntry{}, fmt.Errorf("invalid entry %q (want ACCOUNT=amount): %w", s, errs.ErrInvalid)
	}
	d, err := parseAmount(amount)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if debit {
		return model.Debit(strings.ToUpper(code), d), nil
	}
	return model.Credit(strings.ToUpper(code), d), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func dateOrDash(d *civil.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
