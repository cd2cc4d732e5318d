// Package fixture loads snapshots from CSV files so the dashboard can
// run without upstream credentials. The file layout mirrors what the
// live clients fetch: receivables.csv, payables.csv, transactions.csv
// and accounts.csv in one directory; missing files mean empty feeds.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/model"
	"github.com/finsight-dev/finsight/internal/snapshot"
)

// Source reads snapshots from a fixture directory.
type Source struct {
	dir string
	now func() time.Time
}

// NewSource creates a Source over dir. now is injected so tests control
// the snapshot timestamp.
func NewSource(dir string, now func() time.Time) *Source {
	if now == nil {
		now = time.Now
	}
	return &Source{dir: dir, now: now}
}

// Fetch loads every fixture file into one snapshot.
func (s *Source) Fetch(_ context.Context) (*snapshot.Snapshot, error) {
	receivables, err := readFile(s.dir, "receivables.csv", ReadObligations)
	if err != nil {
		return nil, err
	}
	payables, err := readFile(s.dir, "payables.csv", ReadObligations)
	if err != nil {
		return nil, err
	}
	transactions, err := readFile(s.dir, "transactions.csv", ReadTransactions)
	if err != nil {
		return nil, err
	}
	accounts, err := readFile(s.dir, "accounts.csv", ReadAccounts)
	if err != nil {
		return nil, err
	}

	cash := model.CashPosition{Total: decimal.Zero, Accounts: accounts}
	for _, acc := range accounts {
		cash.Total = cash.Total.Add(acc.Balance)
	}

	return &snapshot.Snapshot{
		TakenAt:      s.now(),
		Receivables:  receivables,
		Payables:     payables,
		Transactions: transactions,
		Cash:         cash,
	}, nil
}

func readFile[T any](dir, name string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening fixture %s: %w", name, err)
	}
	defer f.Close()

	items, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", name, err)
	}
	return items, nil
}
