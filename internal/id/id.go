package id

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Record ID prefixes.
const (
	QuotePrefix       = "Q"
	JobPrefix         = "J"
	InvoicePrefix     = "INV"
	TransactionPrefix = "TXN"
	ClientPrefix      = "C"
)

// New returns an ID like "Q-20251117-3FA": prefix, the day, and three
// upper-cased characters of a random UUID.
func New(prefix string, day civil.Date) string {
	return fmt.Sprintf("%s-%04d%02d%02d-%s", prefix, day.Year, int(day.Month), day.Day, suffix())
}

func NewQuoteID(day civil.Date) string       { return New(QuotePrefix, day) }
func NewJobID(day civil.Date) string         { return New(JobPrefix, day) }
func NewInvoiceID(day civil.Date) string     { return New(InvoicePrefix, day) }
func NewTransactionID(day civil.Date) string { return New(TransactionPrefix, day) }
func NewClientID(day civil.Date) string      { return New(ClientPrefix, day) }

func suffix() string {
	return strings.ToUpper(uuid.NewString()[:3])
}

const versionSep = "_v"

// FormatVersioned returns the file name for one version of a record:
// "Q-20251117-3FA_v2.json".
func FormatVersioned(recordID string, version int) string {
	return fmt.Sprintf("%s%s%d.json", recordID, versionSep, version)
}

// ParseVersioned splits "Q-20251117-3FA_v2.json" into its id and version.
// The split is at the last "_v" so ids may themselves contain "_v".
func ParseVersioned(name string) (string, int, error) {
	stem, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return "", 0, fmt.Errorf("invalid versioned file name %q: missing .json", name)
	}
	i := strings.LastIndex(stem, versionSep)
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid versioned file name %q: missing %s", name, versionSep)
	}
	version, err := strconv.Atoi(stem[i+len(versionSep):])
	if err != nil {
		return "", 0, fmt.Errorf("invalid version in file name %q: %w", name, err)
	}
	if version < 1 {
		return "", 0, fmt.Errorf("invalid version in file name %q: must be >= 1", name)
	}
	return stem[:i], version, nil
}

var fyDirRE = regexp.MustCompile(`^\d{4}-\d{2}$`)

// IsFinancialYearDir reports whether name looks like "2025-26".
func IsFinancialYearDir(name string) bool {
	return fyDirRE.MatchString(name)
}
