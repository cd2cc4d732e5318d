// Package reconcile matches bank statement transactions against paid
// ERP obligations.
//
// The matcher is greedy and first-match-wins: transactions are processed
// in statement order, candidates are scanned in their given order, and
// the first candidate within both tolerances is consumed. Each
// transaction and each obligation is consumed at most once. When two
// candidates carry the same amount inside the same date window, which
// one gets consumed depends on input order; for the volumes a statement
// reconciliation sees this is an accepted trade-off over optimal
// assignment, which would change observable match counts.
package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/dates"
	"github.com/finsight-dev/finsight/internal/model"
)

// Status classifies one reconciliation item.
type Status string

const (
	StatusMatched  Status = "MATCHED"
	StatusBankOnly Status = "BANK_ONLY"
	StatusERPOnly  Status = "ERP_ONLY"
)

// Item pairs (or fails to pair) one bank transaction with one obligation.
// Bank is nil on ERP_ONLY items; ERP is nil on BANK_ONLY items.
type Item struct {
	Status Status                 `json:"status"`
	Bank   *model.BankTransaction `json:"bank,omitempty"`
	ERP    *model.Obligation      `json:"erp,omitempty"`
	ERPKey string                 `json:"erp_key,omitempty"` // obligation ID, or a positional key when the ERP omitted one
}

// Result is the full reconciliation report.
type Result struct {
	Items []Item `json:"items"`

	BankTransactions int `json:"bank_transactions"`
	ERPCandidates    int `json:"erp_candidates"`

	Matched  int `json:"matched"`
	BankOnly int `json:"bank_only"`
	ERPOnly  int `json:"erp_only"`

	MatchedAmount  decimal.Decimal `json:"matched_amount"`
	BankOnlyAmount decimal.Decimal `json:"bank_only_amount"`
	ERPOnlyAmount  decimal.Decimal `json:"erp_only_amount"`
}

// MatchRate is the percentage of bank transactions that found a match.
// An empty statement reconciles at 100%: nothing was expected, nothing
// is missing.
func (r Result) MatchRate() decimal.Decimal {
	if r.BankTransactions == 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(int64(r.Matched)).
		Div(decimal.NewFromInt(int64(r.BankTransactions))).
		Mul(decimal.NewFromInt(100))
}

// pool is one side of the ERP candidates with its consumption state.
type pool struct {
	name     string
	items    []model.Obligation
	consumed []bool
}

func newPool(name string, items []model.Obligation) *pool {
	paid := make([]model.Obligation, 0, len(items))
	for _, it := range items {
		if it.Status == model.StatusPaid && it.PaidAmount.Sign() > 0 {
			paid = append(paid, it)
		}
	}
	return &pool{name: name, items: paid, consumed: make([]bool, len(paid))}
}

func (p *pool) key(i int) string {
	if id := p.items[i].ID; id != "" {
		return id
	}
	return fmt.Sprintf("%s[%d]", p.name, i)
}

// Reconcile runs the matcher over a statement. CREDIT transactions match
// against paid receivables, DEBIT transactions against paid payables. A
// candidate matches when its paid amount is within valueTolerance of the
// transaction amount and its settlement date, when resolvable, is within
// toleranceDays of the transaction date.
func Reconcile(transactions []model.BankTransaction, receivables, payables []model.Obligation, toleranceDays int, valueTolerance decimal.Decimal) Result {
	recv := newPool("receivable", receivables)
	pay := newPool("payable", payables)

	result := Result{
		BankTransactions: len(transactions),
		ERPCandidates:    len(recv.items) + len(pay.items),
		MatchedAmount:    decimal.Zero,
		BankOnlyAmount:   decimal.Zero,
		ERPOnlyAmount:    decimal.Zero,
	}

	for ti := range transactions {
		tx := &transactions[ti]
		candidates := pay
		if tx.Direction == model.DirectionCredit {
			candidates = recv
		}

		matched := false
		for i := range candidates.items {
			if candidates.consumed[i] {
				continue
			}
			if !matches(tx, candidates.items[i], toleranceDays, valueTolerance) {
				continue
			}

			candidates.consumed[i] = true
			matched = true
			result.Items = append(result.Items, Item{
				Status: StatusMatched,
				Bank:   tx,
				ERP:    &candidates.items[i],
				ERPKey: candidates.key(i),
			})
			result.Matched++
			result.MatchedAmount = result.MatchedAmount.Add(tx.Amount)
			break
		}

		if !matched {
			result.Items = append(result.Items, Item{Status: StatusBankOnly, Bank: tx})
			result.BankOnly++
			result.BankOnlyAmount = result.BankOnlyAmount.Add(tx.Amount)
		}
	}

	windowMin, windowMax, haveWindow := statementWindow(transactions, toleranceDays)
	for _, p := range []*pool{recv, pay} {
		for i := range p.items {
			if p.consumed[i] {
				continue
			}
			// An obligation settled clearly outside the statement's
			// covered period was never expected on this statement; do
			// not flag it.
			settled := p.items[i].SettlementDate()
			if haveWindow && !settled.IsZero() {
				day := dates.Day(settled)
				if day.Before(windowMin) || day.After(windowMax) {
					continue
				}
			}
			result.Items = append(result.Items, Item{
				Status: StatusERPOnly,
				ERP:    &p.items[i],
				ERPKey: p.key(i),
			})
			result.ERPOnly++
			result.ERPOnlyAmount = result.ERPOnlyAmount.Add(p.items[i].PaidAmount)
		}
	}

	return result
}

func matches(tx *model.BankTransaction, candidate model.Obligation, toleranceDays int, valueTolerance decimal.Decimal) bool {
	if candidate.PaidAmount.Sub(tx.Amount).Abs().GreaterThan(valueTolerance) {
		return false
	}
	settled := candidate.SettlementDate()
	if settled.IsZero() {
		// No resolvable date: the amount alone carries the match.
		return true
	}
	diff := dates.DaysBetween(tx.Date, settled)
	if diff < 0 {
		diff = -diff
	}
	return diff <= toleranceDays
}

// statementWindow returns the date range the statement covers, widened
// by the tolerance on both ends.
func statementWindow(transactions []model.BankTransaction, toleranceDays int) (min, max time.Time, ok bool) {
	if len(transactions) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min = dates.Day(transactions[0].Date)
	max = min
	for _, tx := range transactions[1:] {
		day := dates.Day(tx.Date)
		if day.Before(min) {
			min = day
		}
		if day.After(max) {
			max = day
		}
	}
	return min.AddDate(0, 0, -toleranceDays), max.AddDate(0, 0, toleranceDays), true
}
