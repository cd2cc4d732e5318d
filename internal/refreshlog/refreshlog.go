// Package refreshlog keeps a CSV audit trail of dashboard refreshes:
// when a snapshot was fetched, from which source, how many records each
// feed returned and whether the refresh failed.
package refreshlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the refresh log.
type Entry struct {
	Timestamp    time.Time
	Source       string // "live" or "fixture"
	Receivables  int
	Payables     int
	Transactions int
	Elapsed      time.Duration
	Error        string // empty on success
}

// Header is the CSV header for refresh-log.csv.
const Header = "timestamp,source,receivables,payables,transactions,elapsed_ms,error"

const (
	numFields = 7
	logDir    = "logs"
	logFile   = "logs/refresh-log.csv"

	colTimestamp    = 0
	colSource       = 1
	colReceivables  = 2
	colPayables     = 3
	colTransactions = 4
	colElapsed      = 5
	colError        = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colReceivables] = strconv.Itoa(e.Receivables)
	row[colPayables] = strconv.Itoa(e.Payables)
	row[colTransactions] = strconv.Itoa(e.Transactions)
	row[colElapsed] = strconv.FormatInt(e.Elapsed.Milliseconds(), 10)
	row[colError] = e.Error
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

	recv, err := strconv.Atoi(record[colReceivables])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing receivables %q: %w", record[colReceivables], err)
	}
	pay, err := strconv.Atoi(record[colPayables])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing payables %q: %w", record[colPayables], err)
	}
	txs, err := strconv.Atoi(record[colTransactions])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing transactions %q: %w", record[colTransactions], err)
	}
	ms, err := strconv.ParseInt(record[colElapsed], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing elapsed_ms %q: %w", record[colElapsed], err)
	}

	return Entry{
		Timestamp:    ts,
		Source:       record[colSource],
		Receivables:  recv,
		Payables:     pay,
		Transactions: txs,
		Elapsed:      time.Duration(ms) * time.Millisecond,
		Error:        record[colError],
	}, nil
}

// Append writes entries to <root>/logs/refresh-log.csv, creating the
// file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening refresh log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

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

	return cw.Error()
}

// Read returns all entries from <root>/logs/refresh-log.csv. Returns an
// empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening refresh log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading refresh log CSV: %w", err)
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
