package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/aging"
	"github.com/finsight-dev/finsight/internal/dates"
	"github.com/finsight-dev/finsight/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Runway is how long the current cash lasts at the current burn rate.
type Runway struct {
	Months   decimal.Decimal `json:"months"`
	Infinite bool            `json:"infinite"`
}

// ComputeRunway divides cash by monthly burn. A burn of zero or less
// yields infinite runway; a company with no modeled burn never runs out
// under this model.
func ComputeRunway(cash, monthlyBurn decimal.Decimal) Runway {
	if monthlyBurn.Sign() <= 0 {
		return Runway{Infinite: true}
	}
	months := cash.Div(monthlyBurn)
	if months.Sign() < 0 {
		months = decimal.Zero
	}
	return Runway{Months: months}
}

// Delinquency measures how much of the open receivable book is past due.
type Delinquency struct {
	TotalOpen    decimal.Decimal `json:"total_open"`
	OverdueOpen  decimal.Decimal `json:"overdue_open"`
	Rate         decimal.Decimal `json:"rate"` // percent, 0 when there is nothing open
	OverdueCount int             `json:"overdue_count"`
	TotalCount   int             `json:"total_count"`
}

// ComputeDelinquency scans non-cancelled receivables with a positive
// open amount. An item counts as overdue when its due date is known and
// strictly before today and it is not paid; items with unknown due dates
// stay out of the overdue side.
func ComputeDelinquency(receivables []model.Obligation, today time.Time) Delinquency {
	today = dates.Day(today)
	d := Delinquency{TotalOpen: decimal.Zero, OverdueOpen: decimal.Zero, Rate: decimal.Zero}

	for _, r := range receivables {
		if r.Status == model.StatusCancelled {
			continue
		}
		if r.OpenAmount.Sign() <= 0 {
			continue
		}
		d.TotalOpen = d.TotalOpen.Add(r.OpenAmount)
		d.TotalCount++

		if r.Status == model.StatusPaid || r.DueDate.IsZero() {
			continue
		}
		if dates.Day(r.DueDate).Before(today) {
			d.OverdueOpen = d.OverdueOpen.Add(r.OpenAmount)
			d.OverdueCount++
		}
	}

	if d.TotalOpen.Sign() > 0 {
		d.Rate = d.OverdueOpen.Div(d.TotalOpen).Mul(hundred)
	}
	return d
}

// NetPosition is open receivables minus open payables.
type NetPosition struct {
	ReceivableTotal decimal.Decimal `json:"receivable_total"`
	PayableTotal    decimal.Decimal `json:"payable_total"`
	Net             decimal.Decimal `json:"net"`
}

// ComputeNetPosition sums open amounts on both sides, excluding paid and
// cancelled obligations.
func ComputeNetPosition(receivables, payables []model.Obligation) NetPosition {
	np := NetPosition{ReceivableTotal: decimal.Zero, PayableTotal: decimal.Zero}
	for _, r := range receivables {
		if r.IsOpen() {
			np.ReceivableTotal = np.ReceivableTotal.Add(r.OpenAmount)
		}
	}
	for _, p := range payables {
		if p.IsOpen() {
			np.PayableTotal = np.PayableTotal.Add(p.OpenAmount)
		}
	}
	np.Net = np.ReceivableTotal.Sub(np.PayableTotal)
	return np
}

// Liquidity holds the short-term solvency ratios.
type Liquidity struct {
	QuickRatio     decimal.Decimal `json:"quick_ratio"`
	CurrentRatio   decimal.Decimal `json:"current_ratio"`
	WorkingCapital decimal.Decimal `json:"working_capital"`
}

// ComputeLiquidity derives liquidity ratios from cash and the two aging
// summaries. Ratios with an empty denominator resolve to zero.
func ComputeLiquidity(cash decimal.Decimal, receivableAging, payableAging aging.Summary) Liquidity {
	recvAmounts := receivableAging.Amounts()
	payAmounts := payableAging.Amounts()

	currentAssets := cash.Add(receivableAging.Total)
	shortTermPayables := payAmounts[aging.BucketOverdue].Add(payAmounts[aging.Bucket0To30])

	liq := Liquidity{
		QuickRatio:     decimal.Zero,
		CurrentRatio:   decimal.Zero,
		WorkingCapital: currentAssets.Sub(payableAging.Total),
	}
	if shortTermPayables.Sign() > 0 {
		liq.QuickRatio = cash.Add(recvAmounts[aging.Bucket0To30]).Div(shortTermPayables)
	}
	if payableAging.Total.Sign() > 0 {
		liq.CurrentRatio = currentAssets.Div(payableAging.Total)
	}
	return liq
}
