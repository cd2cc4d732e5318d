package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finsight-dev/finsight/internal/aging"
	"github.com/finsight-dev/finsight/internal/model"
)

func TestComputeRunway(t *testing.T) {
	r := ComputeRunway(dec("10000.00"), dec("2500.00"))
	assert.False(t, r.Infinite)
	assert.True(t, r.Months.Equal(dec("4")))
}

func TestComputeRunway_ZeroBurnIsInfinite(t *testing.T) {
	r := ComputeRunway(dec("10000.00"), decimal.Zero)
	assert.True(t, r.Infinite)
	assert.True(t, r.Months.IsZero())
}

func TestComputeRunway_NegativeCashClampsToZero(t *testing.T) {
	r := ComputeRunway(dec("-500.00"), dec("1000.00"))
	assert.False(t, r.Infinite)
	assert.True(t, r.Months.IsZero())
}

func TestComputeDelinquency(t *testing.T) {
	today := date(2025, 3, 15)
	receivables := []model.Obligation{
		{OpenAmount: dec("100.00"), DueDate: date(2025, 3, 1), Status: model.StatusOpen},
		{OpenAmount: dec("300.00"), DueDate: date(2025, 4, 1), Status: model.StatusOpen},
		{OpenAmount: dec("50.00"), Status: model.StatusOpen}, // unknown due date, not overdue
		{OpenAmount: dec("999.00"), DueDate: date(2025, 3, 1), Status: model.StatusCancelled},
		{OpenAmount: decimal.Zero, DueDate: date(2025, 3, 1), Status: model.StatusOpen},
	}

	d := ComputeDelinquency(receivables, today)

	assert.True(t, d.TotalOpen.Equal(dec("450.00")))
	assert.True(t, d.OverdueOpen.Equal(dec("100.00")))
	assert.Equal(t, 1, d.OverdueCount)
	assert.Equal(t, 3, d.TotalCount)
	expected := dec("100.00").Div(dec("450.00")).Mul(decimal.NewFromInt(100))
	assert.True(t, d.Rate.Equal(expected))
}

func TestComputeDelinquency_DueTodayIsNotOverdue(t *testing.T) {
	today := date(2025, 3, 15)
	receivables := []model.Obligation{
		{OpenAmount: dec("100.00"), DueDate: today, Status: model.StatusOpen},
	}

	d := ComputeDelinquency(receivables, today)

	assert.Equal(t, 0, d.OverdueCount)
	assert.True(t, d.Rate.IsZero())
}

func TestComputeDelinquency_Empty(t *testing.T) {
	d := ComputeDelinquency(nil, date(2025, 3, 15))

	assert.True(t, d.Rate.IsZero())
	assert.Equal(t, 0, d.TotalCount)
}

func TestComputeNetPosition(t *testing.T) {
	receivables := []model.Obligation{
		{OpenAmount: dec("700.00"), Status: model.StatusOpen},
		{OpenAmount: dec("100.00"), Status: model.StatusPaid}, // settled, excluded
	}
	payables := []model.Obligation{
		{OpenAmount: dec("200.00"), Status: model.StatusOpen},
	}

	np := ComputeNetPosition(receivables, payables)

	assert.True(t, np.ReceivableTotal.Equal(dec("700.00")))
	assert.True(t, np.PayableTotal.Equal(dec("200.00")))
	assert.True(t, np.Net.Equal(dec("500.00")))
}

func TestComputeLiquidity(t *testing.T) {
	recv := aging.Compute([]model.Obligation{
		{OpenAmount: dec("1000.00"), DueDate: date(2025, 3, 20), Status: model.StatusOpen},
		{OpenAmount: dec("500.00"), DueDate: date(2025, 6, 1), Status: model.StatusOpen},
	}, date(2025, 3, 15))
	pay := aging.Compute([]model.Obligation{
		{OpenAmount: dec("400.00"), DueDate: date(2025, 3, 1), Status: model.StatusOpen},  // overdue
		{OpenAmount: dec("100.00"), DueDate: date(2025, 3, 25), Status: model.StatusOpen}, // 0-30d
		{OpenAmount: dec("500.00"), DueDate: date(2025, 6, 1), Status: model.StatusOpen},
	}, date(2025, 3, 15))

	liq := ComputeLiquidity(dec("2000.00"), recv, pay)

	// quick = (cash + recv 0-30d) / (pay overdue + pay 0-30d) = 3000/500
	assert.True(t, liq.QuickRatio.Equal(dec("6")))
	// current = (cash + all recv) / all pay = 3500/1000
	assert.True(t, liq.CurrentRatio.Equal(dec("3.5")))
	assert.True(t, liq.WorkingCapital.Equal(dec("2500.00")))
}

func TestComputeLiquidity_ZeroDenominators(t *testing.T) {
	empty := aging.Compute(nil, date(2025, 3, 15))

	liq := ComputeLiquidity(dec("2000.00"), empty, empty)

	assert.True(t, liq.QuickRatio.IsZero())
	assert.True(t, liq.CurrentRatio.IsZero())
	assert.True(t, liq.WorkingCapital.Equal(dec("2000.00")))
}
