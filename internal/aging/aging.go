// Package aging buckets obligations by days until (or past) their due
// date.
package aging

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/dates"
	"github.com/finsight-dev/finsight/internal/model"
)

// Bucket labels a days-to-due range.
type Bucket string

const (
	BucketOverdue Bucket = "OVERDUE"
	Bucket0To30   Bucket = "0-30d"
	Bucket31To60  Bucket = "31-60d"
	Bucket60Plus  Bucket = "60+d"
)

// Order is the display order of buckets, nearest maturity first.
var Order = []Bucket{BucketOverdue, Bucket0To30, Bucket31To60, Bucket60Plus}

// Classify returns the bucket for a due date relative to ref. An unknown
// due date classifies as overdue: a maturity we cannot place is treated
// as already due rather than silently pushed into the future.
func Classify(due, ref time.Time) Bucket {
	if due.IsZero() {
		return BucketOverdue
	}
	diff := dates.DaysBetween(ref, due)
	switch {
	case diff < 0:
		return BucketOverdue
	case diff <= 30:
		return Bucket0To30
	case diff <= 60:
		return Bucket31To60
	default:
		return Bucket60Plus
	}
}

// Line is the aggregate for one bucket.
type Line struct {
	Bucket Bucket          `json:"bucket"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// Summary is the aging of a set of obligations, one line per bucket in
// Order, plus the open total.
type Summary struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// Amounts returns the bucket totals keyed by bucket.
func (s Summary) Amounts() map[Bucket]decimal.Decimal {
	out := make(map[Bucket]decimal.Decimal, len(s.Lines))
	for _, l := range s.Lines {
		out[l.Bucket] = l.Amount
	}
	return out
}

// Compute ages the open obligations in items relative to ref. Paid and
// cancelled obligations, and obligations with no open amount, are
// excluded.
func Compute(items []model.Obligation, ref time.Time) Summary {
	byBucket := make(map[Bucket]*Line, len(Order))
	lines := make([]Line, len(Order))
	for i, b := range Order {
		lines[i] = Line{Bucket: b, Amount: decimal.Zero}
		byBucket[b] = &lines[i]
	}

	total := decimal.Zero
	for _, item := range items {
		if !item.IsOpen() {
			continue
		}
		if item.OpenAmount.Sign() <= 0 {
			continue
		}
		line := byBucket[Classify(item.DueDate, ref)]
		line.Amount = line.Amount.Add(item.OpenAmount)
		line.Count++
		total = total.Add(item.OpenAmount)
	}

	return Summary{Lines: lines, Total: total}
}
