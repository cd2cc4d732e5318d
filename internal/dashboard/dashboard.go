// Package dashboard derives the full dashboard payload from one
// snapshot. The derivation itself is pure; Refresh is the only place
// that touches a Source.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/aging"
	"github.com/finsight-dev/finsight/internal/metrics"
	"github.com/finsight-dev/finsight/internal/model"
	"github.com/finsight-dev/finsight/internal/monthly"
	"github.com/finsight-dev/finsight/internal/projection"
	"github.com/finsight-dev/finsight/internal/reconcile"
	"github.com/finsight-dev/finsight/internal/refreshlog"
	"github.com/finsight-dev/finsight/internal/snapshot"
)

// Options are the computation windows and tolerances, usually taken
// from finsight.yaml.
type Options struct {
	ProjectionDays     int
	BurnRateMonths     int
	HistoryMonths      int
	TopCategories      int
	DateToleranceDays  int
	ValueTolerance     decimal.Decimal
	DelinquencyWarning float64

	// SourceName and LogRoot feed the refresh audit log; an empty
	// LogRoot disables it.
	SourceName string
	LogRoot    string
}

// Payload is everything one dashboard refresh renders.
type Payload struct {
	GeneratedAt time.Time `json:"generated_at"`

	Cash model.CashPosition `json:"cash"`

	ReceivableAging aging.Summary `json:"receivable_aging"`
	PayableAging    aging.Summary `json:"payable_aging"`

	Projection projection.Projection `json:"projection"`

	BurnRate           metrics.BurnRate    `json:"burn_rate"`
	Runway             metrics.Runway      `json:"runway"`
	Delinquency        metrics.Delinquency `json:"delinquency"`
	DelinquencyWarning bool                `json:"delinquency_warning"`
	NetPosition        metrics.NetPosition `json:"net_position"`
	Liquidity          metrics.Liquidity   `json:"liquidity"`

	Monthly  []monthly.Result          `json:"monthly"`
	History  []monthly.HistoryPoint    `json:"history"`
	Expenses []monthly.CategoryExpense `json:"expenses"`

	Reconciliation reconcile.Result `json:"reconciliation"`

	Dropped snapshot.Dropped `json:"dropped"`
}

// Service computes dashboard payloads from a snapshot source.
type Service struct {
	source snapshot.Source
	opts   Options
	log    *zap.Logger
}

// NewService creates a Service.
func NewService(source snapshot.Source, opts Options, log *zap.Logger) *Service {
	return &Service{source: source, opts: opts, log: log}
}

// Refresh fetches a snapshot and derives the payload. A fetch failure
// fails this refresh; nothing is retried here.
func (s *Service) Refresh(ctx context.Context) (*Payload, error) {
	started := time.Now()
	snap, err := s.source.Fetch(ctx)
	s.audit(snap, started, err)
	if err != nil {
		return nil, err
	}
	return Derive(snap, s.opts), nil
}

func (s *Service) audit(snap *snapshot.Snapshot, started time.Time, err error) {
	if s.opts.LogRoot == "" {
		return
	}
	entry := refreshlog.Entry{
		Timestamp: started,
		Source:    s.opts.SourceName,
		Elapsed:   time.Since(started),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Receivables = len(snap.Receivables)
		entry.Payables = len(snap.Payables)
		entry.Transactions = len(snap.Transactions)
	}
	if logErr := refreshlog.Append(s.opts.LogRoot, []refreshlog.Entry{entry}); logErr != nil {
		s.log.Warn("refresh log append failed", zap.Error(logErr))
	}
}

// Derive computes the full payload from one snapshot. It is a pure
// function of the snapshot (including its TakenAt) and the options:
// identical inputs give identical payloads.
func Derive(snap *snapshot.Snapshot, opts Options) *Payload {
	today := snap.TakenAt

	receivableAging := aging.Compute(snap.Receivables, today)
	payableAging := aging.Compute(snap.Payables, today)

	burn := metrics.ComputeBurnRate(snap.Payables, opts.BurnRateMonths, today)
	delinquency := metrics.ComputeDelinquency(snap.Receivables, today)

	warning := false
	if opts.DelinquencyWarning > 0 {
		threshold := decimal.NewFromFloat(opts.DelinquencyWarning * 100)
		warning = delinquency.Rate.GreaterThanOrEqual(threshold)
	}

	return &Payload{
		GeneratedAt:     today,
		Cash:            snap.Cash,
		ReceivableAging: receivableAging,
		PayableAging:    payableAging,
		Projection: projection.Project(
			snap.Cash.Total, snap.Receivables, snap.Payables, opts.ProjectionDays, today),
		BurnRate:           burn,
		Runway:             metrics.ComputeRunway(snap.Cash.Total, burn.MonthlyAverage),
		Delinquency:        delinquency,
		DelinquencyWarning: warning,
		NetPosition:        metrics.ComputeNetPosition(snap.Receivables, snap.Payables),
		Liquidity:          metrics.ComputeLiquidity(snap.Cash.Total, receivableAging, payableAging),
		Monthly:            monthly.ComputeResults(snap.Receivables, snap.Payables, opts.HistoryMonths, today),
		History:            monthly.EstimateHistory(snap.Receivables, snap.Payables, snap.Cash.Total, opts.HistoryMonths, today),
		Expenses:           monthly.ExpenseBreakdown(snap.Payables, opts.TopCategories, today),
		Reconciliation: reconcile.Reconcile(
			snap.Transactions, snap.Receivables, snap.Payables,
			opts.DateToleranceDays, opts.ValueTolerance),
		Dropped: snap.Dropped,
	}
}
