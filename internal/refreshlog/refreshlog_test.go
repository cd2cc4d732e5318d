package refreshlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(ts time.Time) Entry {
	return Entry{
		Timestamp:    ts,
		Source:       "fixture",
		Receivables:  12,
		Payables:     7,
		Transactions: 30,
		Elapsed:      450 * time.Millisecond,
	}
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, Append(root, []Entry{entry(ts)}))

	data, err := os.ReadFile(filepath.Join(root, "logs", "refresh-log.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Contains(t, lines[1], "2025-03-15T10:00:00Z")
	assert.Contains(t, lines[1], "fixture")
}

func TestAppend_NoDuplicateHeader(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, Append(root, []Entry{entry(ts)}))
	require.NoError(t, Append(root, []Entry{entry(ts.Add(time.Hour))}))

	entries, err := Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestRoundTrip(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	in := entry(ts)
	in.Error = "erp fetch failed"

	require.NoError(t, Append(root, []Entry{in}))

	entries, err := Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, in, entries[0])
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"just", "three", "fields"})
	assert.ErrorContains(t, err, "expected 7 fields")
}

func TestUnmarshalEntry_BadTimestamp(t *testing.T) {
	row := MarshalEntry(entry(time.Now()))
	row[0] = "yesterday"

	_, err := UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")
}
