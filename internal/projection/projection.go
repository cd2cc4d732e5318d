// Package projection simulates the cash balance forward, day by day,
// from the open receivables and payables.
package projection

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/dates"
	"github.com/finsight-dev/finsight/internal/model"
)

// Point is one day of the projected balance timeline.
type Point struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// Projection is the day-by-day liquidity forecast. Daily holds
// horizon+1 points starting at day zero (today).
type Projection struct {
	Daily          []Point         `json:"daily"`
	MinBalance     decimal.Decimal `json:"min_balance"`
	MinBalanceDate time.Time       `json:"min_balance_date"`

	// BreachDay is the first day index on which the balance goes
	// negative. It is sticky: a later recovery does not clear it.
	BreachDay int  `json:"breach_day"`
	Breaches  bool `json:"breaches"`

	Balance30 decimal.Decimal `json:"balance_30d"`
	Has30     bool            `json:"has_30d"`
	Balance60 decimal.Decimal `json:"balance_60d"`
	Has60     bool            `json:"has_60d"`
}

// Project walks the balance forward from currentCash over horizonDays
// days starting at today. Open obligations contribute on their due date;
// obligations already overdue are assumed to settle today. Obligations
// with no due date or no open amount are skipped, which understates
// outflow risk for undated payables.
//
// The result is a pure function of the inputs and today: no clock reads,
// no side effects.
func Project(currentCash decimal.Decimal, receivables, payables []model.Obligation, horizonDays int, today time.Time) Projection {
	today = dates.Day(today)
	inflows := flowsByDay(receivables, today)
	outflows := flowsByDay(payables, today)

	balance := currentCash
	proj := Projection{
		Daily:          make([]Point, 0, horizonDays+1),
		MinBalance:     balance,
		MinBalanceDate: today,
	}

	for i := 0; i <= horizonDays; i++ {
		day := today.AddDate(0, 0, i)
		if in, ok := inflows[day]; ok {
			balance = balance.Add(in)
		}
		if out, ok := outflows[day]; ok {
			balance = balance.Sub(out)
		}

		proj.Daily = append(proj.Daily, Point{Date: day, Balance: balance})

		if balance.LessThan(proj.MinBalance) {
			proj.MinBalance = balance
			proj.MinBalanceDate = day
		}
		if balance.Sign() < 0 && !proj.Breaches {
			proj.BreachDay = i
			proj.Breaches = true
		}
		if i == 30 {
			proj.Balance30 = balance
			proj.Has30 = true
		}
		if i == 60 {
			proj.Balance60 = balance
			proj.Has60 = true
		}
	}

	return proj
}

// flowsByDay accumulates open amounts per settlement day. Overdue items
// land on today.
func flowsByDay(items []model.Obligation, today time.Time) map[time.Time]decimal.Decimal {
	flows := make(map[time.Time]decimal.Decimal)
	for _, item := range items {
		if !item.IsOpen() {
			continue
		}
		if item.OpenAmount.Sign() <= 0 {
			continue
		}
		if item.DueDate.IsZero() {
			continue
		}
		day := dates.Day(item.DueDate)
		if day.Before(today) {
			day = today
		}
		flows[day] = flows[day].Add(item.OpenAmount)
	}
	return flows
}
