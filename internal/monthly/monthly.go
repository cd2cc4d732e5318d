// Package monthly aggregates paid flows into calendar months and
// estimates the historical cash balance by unwinding those flows from
// the current balance.
package monthly

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/dates"
	"github.com/finsight-dev/finsight/internal/model"
)

// Result is one month of realized revenue versus expense.
type Result struct {
	Month   string          `json:"month"` // "2006-01"
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// ComputeResults sums paid receivable and payable amounts per calendar
// month over the trailing window ending at today's month, oldest first.
// Flows are keyed by accrual date, falling back to due date.
func ComputeResults(receivables, payables []model.Obligation, months int, today time.Time) []Result {
	keys := dates.MonthKeys(today, months)
	revenue := paidByMonth(receivables)
	expense := paidByMonth(payables)

	results := make([]Result, len(keys))
	for i, k := range keys {
		r := revenue[k]
		e := expense[k]
		results[i] = Result{Month: k, Revenue: r, Expense: e, Net: r.Sub(e)}
	}
	return results
}

// HistoryPoint is one month of the estimated balance history.
type HistoryPoint struct {
	Month   string          `json:"month"`
	Balance decimal.Decimal `json:"balance"`
}

// EstimateHistory walks backward from the current cash balance, reversing
// each month's paid flows, to estimate the balance at the start of prior
// months. It is an estimate, not a ledger: payments that never appear in
// the obligation records are invisible to it. Points are oldest first;
// the last point is today's month at currentCash.
func EstimateHistory(receivables, payables []model.Obligation, currentCash decimal.Decimal, months int, today time.Time) []HistoryPoint {
	keys := dates.MonthKeys(today, months)
	inflow := paidByMonth(receivables)
	outflow := paidByMonth(payables)

	points := make([]HistoryPoint, len(keys))
	balance := currentCash
	for i := len(keys) - 1; i >= 0; i-- {
		if i < len(keys)-1 {
			// balance[this] = balance[next] - inflow[next] + outflow[next]
			next := keys[i+1]
			balance = balance.Sub(inflow[next]).Add(outflow[next])
		}
		points[i] = HistoryPoint{Month: keys[i], Balance: balance}
	}
	return points
}

func paidByMonth(items []model.Obligation) map[string]decimal.Decimal {
	flows := make(map[string]decimal.Decimal)
	for _, item := range items {
		if item.PaidAmount.Sign() <= 0 {
			continue
		}
		flow := item.FlowDate()
		if flow.IsZero() {
			continue
		}
		k := dates.MonthKey(flow)
		flows[k] = flows[k].Add(item.PaidAmount)
	}
	return flows
}

// CategoryExpense is one slice of the current-month expense breakdown.
type CategoryExpense struct {
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// Uncategorized is the bucket for payables without a category.
const Uncategorized = "Uncategorized"

// Other aggregates the categories beyond the top-N cut.
const Other = "Other"

// ExpenseBreakdown totals the current month's payables by category and
// returns the topN largest plus an aggregate remainder. Percentages are
// of the full month, not of the top-N subset.
func ExpenseBreakdown(payables []model.Obligation, topN int, today time.Time) []CategoryExpense {
	month := dates.MonthKey(today)
	totals := make(map[string]decimal.Decimal)

	for _, p := range payables {
		if p.TotalAmount.Sign() <= 0 {
			continue
		}
		if p.DueDate.IsZero() || dates.MonthKey(p.DueDate) != month {
			continue
		}
		name := p.Category
		if name == "" {
			name = Uncategorized
		}
		totals[name] = totals[name].Add(p.TotalAmount)
	}
	if len(totals) == 0 {
		return nil
	}

	names := make([]string, 0, len(totals))
	total := decimal.Zero
	for name, amount := range totals {
		names = append(names, name)
		total = total.Add(amount)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := totals[names[i]], totals[names[j]]
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return names[i] < names[j]
	})

	hundred := decimal.NewFromInt(100)
	percent := func(amount decimal.Decimal) decimal.Decimal {
		if total.Sign() <= 0 {
			return decimal.Zero
		}
		return amount.Div(total).Mul(hundred)
	}

	var out []CategoryExpense
	cut := topN
	if cut > len(names) {
		cut = len(names)
	}
	for _, name := range names[:cut] {
		out = append(out, CategoryExpense{Name: name, Amount: totals[name], Percent: percent(totals[name])})
	}

	rest := decimal.Zero
	for _, name := range names[cut:] {
		rest = rest.Add(totals[name])
	}
	if rest.Sign() > 0 {
		out = append(out, CategoryExpense{Name: Other, Amount: rest, Percent: percent(rest)})
	}
	return out
}
