// Package metrics derives the scalar dashboard indicators: burn rate,
// runway, delinquency, net position and liquidity ratios.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/dates"
	"github.com/finsight-dev/finsight/internal/model"
)

// MonthSpend is one month's paid-payable total.
type MonthSpend struct {
	Month  string          `json:"month"` // "2006-01"
	Amount decimal.Decimal `json:"amount"`
}

// BurnRate is the average monthly cash outflow over the trailing window.
type BurnRate struct {
	MonthlyAverage decimal.Decimal `json:"monthly_average"`
	MonthsUsed     int             `json:"months_used"`
	Breakdown      []MonthSpend    `json:"breakdown"` // months with spend, oldest first
}

// ComputeBurnRate averages paid-payable totals over the trailing months
// window ending at today's month. The current month is excluded as
// incomplete unless it is the only month with any spend. Months with
// zero recorded spend do not enter the average.
func ComputeBurnRate(payables []model.Obligation, months int, today time.Time) BurnRate {
	keys := dates.MonthKeys(today, months)
	spend := make(map[string]decimal.Decimal, len(keys))
	for _, k := range keys {
		spend[k] = decimal.Zero
	}

	for _, p := range payables {
		if p.PaidAmount.Sign() <= 0 {
			continue
		}
		flow := p.FlowDate()
		if flow.IsZero() {
			continue
		}
		k := dates.MonthKey(flow)
		if cur, ok := spend[k]; ok {
			spend[k] = cur.Add(p.PaidAmount)
		}
	}

	currentMonth := dates.MonthKey(today)
	active := activeMonths(keys, spend, currentMonth)
	if len(active) == 0 {
		// Fall back to the current month when it is all we have.
		active = activeMonths(keys, spend, "")
	}

	var breakdown []MonthSpend
	for _, k := range keys {
		if spend[k].Sign() > 0 {
			breakdown = append(breakdown, MonthSpend{Month: k, Amount: spend[k]})
		}
	}

	br := BurnRate{MonthlyAverage: decimal.Zero, MonthsUsed: len(active), Breakdown: breakdown}
	if len(active) == 0 {
		return br
	}

	total := decimal.Zero
	for _, k := range active {
		total = total.Add(spend[k])
	}
	br.MonthlyAverage = total.Div(decimal.NewFromInt(int64(len(active))))
	return br
}

func activeMonths(keys []string, spend map[string]decimal.Decimal, exclude string) []string {
	var active []string
	for _, k := range keys {
		if k == exclude {
			continue
		}
		if spend[k].Sign() > 0 {
			active = append(active, k)
		}
	}
	return active
}
