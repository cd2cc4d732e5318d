// Package snapshot assembles point-in-time views of the financial data.
// Every dashboard computation runs over one immutable Snapshot; nothing
// downstream performs I/O.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/model"
)

// Dropped counts the records each feed rejected during normalization.
type Dropped struct {
	Receivables  int `json:"receivables"`
	Payables     int `json:"payables"`
	Transactions int `json:"transactions"`
}

// Snapshot is one fetch of everything the dashboard derives from.
type Snapshot struct {
	TakenAt      time.Time
	Receivables  []model.Obligation
	Payables     []model.Obligation
	Transactions []model.BankTransaction
	Cash         model.CashPosition
	Dropped      Dropped
}

// Source produces snapshots. A fetch failure is fatal for the refresh
// that requested it; retries live below this interface, in the API
// transports.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// ERPReader is the slice of the ERP client a Fetcher needs.
type ERPReader interface {
	Receivables(ctx context.Context, from, to time.Time) ([]model.Obligation, int, error)
	Payables(ctx context.Context, from, to time.Time) ([]model.Obligation, int, error)
	CashBalance(ctx context.Context) (model.CashPosition, error)
}

// BankReader is the slice of the bank client a Fetcher needs.
type BankReader interface {
	Statement(ctx context.Context, from, to time.Time) ([]model.BankTransaction, int, error)
}

// Fetcher assembles snapshots from the two upstream clients over a
// symmetric lookback/lookahead window around today.
type Fetcher struct {
	erp          ERPReader
	bank         BankReader
	lookbackDays int
	now          func() time.Time
	log          *zap.Logger
}

// NewFetcher creates a Fetcher. now is injected so tests control today.
func NewFetcher(erp ERPReader, bank BankReader, lookbackDays int, now func() time.Time, log *zap.Logger) *Fetcher {
	if now == nil {
		now = time.Now
	}
	return &Fetcher{erp: erp, bank: bank, lookbackDays: lookbackDays, now: now, log: log}
}

// Fetch pulls obligations, the bank statement and the cash position.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	today := f.now()
	from := today.AddDate(0, 0, -f.lookbackDays)
	to := today.AddDate(0, 0, f.lookbackDays)

	started := time.Now()

	receivables, droppedRecv, err := f.erp.Receivables(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching receivables: %w", err)
	}
	payables, droppedPay, err := f.erp.Payables(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching payables: %w", err)
	}
	cash, err := f.erp.CashBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching cash balance: %w", err)
	}
	transactions, droppedTx, err := f.bank.Statement(ctx, from, today)
	if err != nil {
		return nil, fmt.Errorf("fetching bank statement: %w", err)
	}

	f.log.Info("snapshot fetched",
		zap.Int("receivables", len(receivables)),
		zap.Int("payables", len(payables)),
		zap.Int("transactions", len(transactions)),
		zap.Duration("elapsed", time.Since(started)))

	return &Snapshot{
		TakenAt:      today,
		Receivables:  receivables,
		Payables:     payables,
		Transactions: transactions,
		Cash:         cash,
		Dropped: Dropped{
			Receivables:  droppedRecv,
			Payables:     droppedPay,
			Transactions: droppedTx,
		},
	}, nil
}
