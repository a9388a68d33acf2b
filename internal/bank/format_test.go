package bank

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
)

func TestGoLayout(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"%d/%m/%Y", "2/1/2006"},
		{"%Y-%m-%d", "2006-1-2"},
		{"%d %b %Y", "2 Jan 2006"},
		{"%-d/%-m/%y", "2/1/06"},
		{"%d/%m/%Y %H:%M:%S", "2/1/2006 15:04:05"},
		{"100%%", "100%"},
	}
	for _, tt := range tests {
		got, err := GoLayout(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"%Q", "%d/%m/%", "%-Y"} {
		_, err := GoLayout(bad)
		assert.ErrorIs(t, err, errs.ErrInvalid, bad)
	}
}

func TestFormatParser_DebitCreditColumns(t *testing.T) {
	f, err := os.Open("testdata/westpac.csv")
	require.NoError(t, err)
	defer f.Close()

	txns, err := mustParser(t, westpacFormat).Parse(f)
	require.NoError(t, err)
	require.Len(t, txns, 4)

	assert.Equal(t, date(2025, 11, 3), txns[0].Date)
	assert.Equal(t, "CALTEX STAR MART 1234", txns[0].Description)
	assert.Equal(t, "80.00", txns[0].Debit.StringFixed(2))
	assert.True(t, txns[0].Credit.IsZero())
	require.NotNil(t, txns[0].Balance)
	assert.Equal(t, "1920.00", txns[0].Balance.StringFixed(2))

	assert.Equal(t, "1650.00", txns[2].Credit.StringFixed(2))
	assert.False(t, txns[2].IsDebit())

	assert.True(t, txns[3].Amount().IsZero(), "blank amounts are zero")
}

func TestFormatParser_UnpaddedDates(t *testing.T) {
	csv := "Date,Narrative,Debit Amount,Credit Amount,Balance\n" +
		"5/7/2025,BUNNINGS PERTH,10.00,,\n" +
		"05/07/2025,CALTEX 1234,20.00,,\n" +
		"14/11/2025,TELSTRA,30.00,,\n"

	txns, err := mustParser(t, westpacFormat).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, date(2025, 7, 5), txns[0].Date)
	assert.Equal(t, date(2025, 7, 5), txns[1].Date)
	assert.Equal(t, date(2025, 11, 14), txns[2].Date)
}

func TestFormatParser_SignedAmountColumn(t *testing.T) {
	f, err := os.Open("testdata/commbank.csv")
	require.NoError(t, err)
	defer f.Close()

	txns, err := mustParser(t, commbankFormat).Parse(f)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "12.95", txns[0].Debit.StringFixed(2))
	assert.True(t, txns[0].Credit.IsZero())
	assert.Nil(t, txns[0].Balance)

	assert.Equal(t, "1200.00", txns[1].Credit.StringFixed(2))
	assert.Equal(t, date(2025, 7, 1), txns[1].Date)
}

func TestFormatParser_HeaderLookup(t *testing.T) {
	csv := "\ufeffdescription , DATE,amount\nCoffee,2025-08-01,-4.50\n\n"
	txns, err := mustParser(t, commbankFormat).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee", txns[0].Description)
	assert.Equal(t, "4.50", txns[0].Debit.StringFixed(2))
}

func TestFormatParser_Errors(t *testing.T) {
	p := mustParser(t, commbankFormat)

	_, err := p.Parse(strings.NewReader("Date,Description\n2025-08-01,Coffee\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Amount"`)

	_, err = p.Parse(strings.NewReader("Date,Amount,Description\n01/08/2025,1.00,Coffee\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = p.Parse(strings.NewReader("Date,Amount,Description\n2025-08-01,abc,Coffee\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")

	_, err = p.Parse(strings.NewReader("Date,Amount,Description\n2025-08-01,1.00,\n"))
	assert.ErrorIs(t, err, errs.ErrInvalid)

	txns, err := p.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"":          "0.00",
		"nan":       "0.00",
		"12.5":      "12.50",
		"$1,234.56": "1234.56",
		"(20.00)":   "-20.00",
		"-3.10":     "-3.10",
	}
	for in, want := range tests {
		got, err := parseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.StringFixed(2), in)
	}
}
