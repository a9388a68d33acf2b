package bank

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

// FormatParser reads CSV files laid out as described by a model.BankFormat.
// Columns are located by header name.
type FormatParser struct {
	format model.BankFormat
	layout string
}

// NewFormatParser validates f and translates its date format.
func NewFormatParser(f model.BankFormat) (*FormatParser, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	layout, err := GoLayout(f.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("bank format %s: %w", f.Name, err)
	}
	return &FormatParser{format: f, layout: layout}, nil
}

func (p *FormatParser) Format() string { return p.format.Name }

// Parse reads the header row, then one BankTransaction per data row.
func (p *FormatParser) Parse(r io.Reader) ([]BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV header: %w", p.format.Name, err)
	}
	cols, err := p.columns(header)
	if err != nil {
		return nil, err
	}

	var txns []BankTransaction
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s CSV: %w", p.format.Name, err)
		}
		if blankRecord(rec) {
			continue
		}
		txn, err := p.parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

type columnIndex struct {
	date, desc, debit, credit, amount, balance int
}

func (p *FormatParser) columns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	lookup := func(name string, required bool) (int, error) {
		if name == "" {
			return -1, nil
		}
		i, ok := pos[strings.ToLower(name)]
		if !ok {
			if required {
				return -1, fmt.Errorf("%s CSV has no %q column: %w", p.format.Name, name, errs.ErrInvalid)
			}
			return -1, nil
		}
		return i, nil
	}

	var c columnIndex
	var err error
	if c.date, err = lookup(p.format.DateColumn, true); err != nil {
		return c, err
	}
	if c.desc, err = lookup(p.format.DescriptionColumn, true); err != nil {
		return c, err
	}
	if c.amount, err = lookup(p.format.AmountColumn, true); err != nil {
		return c, err
	}
	if c.debit, err = lookup(p.format.DebitColumn, true); err != nil {
		return c, err
	}
	if c.credit, err = lookup(p.format.CreditColumn, true); err != nil {
		return c, err
	}
	if c.balance, err = lookup(p.format.BalanceColumn, false); err != nil {
		return c, err
	}
	return c, nil
}

func (p *FormatParser) parseRow(rec []string, c columnIndex) (BankTransaction, error) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	t, err := time.Parse(p.layout, field(c.date))
	if err != nil {
		return BankTransaction{}, fmt.Errorf("parsing date %q: %w", field(c.date), err)
	}
	txn := BankTransaction{
		Date:        civil.DateOf(t),
		Description: field(c.desc),
	}

	if c.amount >= 0 {
		amount, err := parseAmount(field(c.amount))
		if err != nil {
			return BankTransaction{}, err
		}
		if amount.IsNegative() {
			txn.Debit = amount.Neg()
		} else {
			txn.Credit = amount
		}
	} else {
		if txn.Debit, err = parseAmount(field(c.debit)); err != nil {
			return BankTransaction{}, err
		}
		if txn.Credit, err = parseAmount(field(c.credit)); err != nil {
			return BankTransaction{}, err
		}
		// Some banks print withdrawals as negative numbers in the debit column.
		txn.Debit = txn.Debit.Abs()
		txn.Credit = txn.Credit.Abs()
	}

	if s := field(c.balance); c.balance >= 0 && s != "" && !strings.EqualFold(s, "nan") {
		bal, err := parseAmount(s)
		if err != nil {
			return BankTransaction{}, err
		}
		txn.Balance = &bal
	}

	if err := txn.Validate(); err != nil {
		return BankTransaction{}, err
	}
	return txn, nil
}

// parseAmount accepts "1,234.50", "$12.00" and "(12.00)"; blank is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)
	if clean == "" || strings.EqualFold(clean, "nan") {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		neg = true
		clean = clean[1 : len(clean)-1]
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return model.RoundCents(d), nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

var strftimeLayouts = map[byte]string{
	'd': "2",
	'e': "_2",
	'm': "1",
	'Y': "2006",
	'y': "06",
	'b': "Jan",
	'h': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'%': "%",
}

// GoLayout translates a strftime date format such as "%d/%m/%Y" into a
// time layout ("2/1/2006"). Day and month use the unpadded layouts, which
// parse "05/07/2025" and "5/7/2025" alike; "%-d" and "%-m" are accepted
// as synonyms.
func GoLayout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return "", fmt.Errorf("date format %q ends with %%: %w", format, errs.ErrInvalid)
		}
		if format[i] == '-' && i+1 < len(format) {
			i++
			switch format[i] {
			case 'd':
				b.WriteString("2")
				continue
			case 'm':
				b.WriteString("1")
				continue
			}
			return "", fmt.Errorf("date format %q: unsupported directive %%-%c: %w", format, format[i], errs.ErrInvalid)
		}
		layout, ok := strftimeLayouts[format[i]]
		if !ok {
			return "", fmt.Errorf("date format %q: unsupported directive %%%c: %w", format, format[i], errs.ErrInvalid)
		}
		b.WriteString(layout)
	}
	return b.String(), nil
}
