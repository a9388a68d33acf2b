// Package auditlog appends human-readable CSV records of automated changes
// to the business's logs/ directory.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Log file names under logs/.
const (
	ClassificationLog = "classification-log.csv"
	ImportLog         = "import-log.csv"
)

// Entry is one row in an audit log.
type Entry struct {
	Timestamp     time.Time
	Source        string
	Action        string
	TransactionID string
	AccountCode   string
	Details       string
}

// Header is the CSV header shared by every audit log.
const Header = "timestamp,source,action,transaction_id,account_code,details"

const (
	numFields        = 6
	logDir           = "logs"
	colTimestamp     = 0
	colSource        = 1
	colAction        = 2
	colTransactionID = 3
	colAccountCode   = 4
	colDetails       = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colAction] = e.Action
	row[colTransactionID] = e.TransactionID
	row[colAccountCode] = e.AccountCode
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	return Entry{
		Timestamp:     ts,
		Source:        record[colSource],
		Action:        record[colAction],
		TransactionID: record[colTransactionID],
		AccountCode:   record[colAccountCode],
		Details:       record[colDetails],
	}, nil
}

// Path returns the location of the named log inside dataDir.
func Path(dataDir, name string) string {
	return filepath.Join(dataDir, logDir, name)
}

// Append writes entries to logs/<name>, creating the file and header if
// needed. Appending nothing does not touch the file.
func Append(dataDir, name string, entries []Entry) (err error) {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(dataDir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dataDir, name)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from logs/<name>, or nil if the file does not exist.
func Read(dataDir, name string) ([]Entry, error) {
	f, err := os.Open(Path(dataDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	entries, err := readEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return entries, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
