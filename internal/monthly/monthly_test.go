package monthly

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-dev/finsight/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func paid(amount string, flow time.Time) model.Obligation {
	return model.Obligation{PaidAmount: dec(amount), AccrualDate: flow, Status: model.StatusPaid}
}

func TestComputeResults(t *testing.T) {
	today := date(2025, 3, 15)
	receivables := []model.Obligation{
		paid("1000.00", date(2025, 2, 10)),
		paid("500.00", date(2025, 3, 1)),
	}
	payables := []model.Obligation{
		paid("300.00", date(2025, 2, 20)),
	}

	results := ComputeResults(receivables, payables, 3, today)

	require.Len(t, results, 3)
	assert.Equal(t, "2025-01", results[0].Month)
	assert.True(t, results[0].Net.IsZero())

	assert.Equal(t, "2025-02", results[1].Month)
	assert.True(t, results[1].Revenue.Equal(dec("1000.00")))
	assert.True(t, results[1].Expense.Equal(dec("300.00")))
	assert.True(t, results[1].Net.Equal(dec("700.00")))

	assert.Equal(t, "2025-03", results[2].Month)
	assert.True(t, results[2].Net.Equal(dec("500.00")))
}

func TestComputeResults_IgnoresUnpaidAndUndated(t *testing.T) {
	today := date(2025, 3, 15)
	receivables := []model.Obligation{
		{OpenAmount: dec("999.00"), DueDate: date(2025, 3, 1), Status: model.StatusOpen},
		{PaidAmount: dec("100.00"), Status: model.StatusPaid}, // no flow date
	}

	results := ComputeResults(receivables, nil, 1, today)

	require.Len(t, results, 1)
	assert.True(t, results[0].Revenue.IsZero())
}

func TestEstimateHistory_ReverseWalk(t *testing.T) {
	today := date(2025, 3, 15)
	receivables := []model.Obligation{
		paid("1000.00", date(2025, 2, 10)),
		paid("500.00", date(2025, 3, 1)),
	}
	payables := []model.Obligation{
		paid("200.00", date(2025, 3, 5)),
	}

	points := EstimateHistory(receivables, payables, dec("5000.00"), 3, today)

	require.Len(t, points, 3)
	assert.Equal(t, "2025-03", points[2].Month)
	assert.True(t, points[2].Balance.Equal(dec("5000.00")))

	// February balance = March minus March inflow plus March outflow.
	assert.Equal(t, "2025-02", points[1].Month)
	assert.True(t, points[1].Balance.Equal(dec("4700.00")))

	// January balance unwinds February's inflow.
	assert.Equal(t, "2025-01", points[0].Month)
	assert.True(t, points[0].Balance.Equal(dec("3700.00")))
}

func TestExpenseBreakdown(t *testing.T) {
	today := date(2025, 3, 15)
	payables := []model.Obligation{
		{TotalAmount: dec("500.00"), Category: "Payroll", DueDate: date(2025, 3, 5)},
		{TotalAmount: dec("300.00"), Category: "Rent", DueDate: date(2025, 3, 10)},
		{TotalAmount: dec("100.00"), Category: "Software", DueDate: date(2025, 3, 12)},
		{TotalAmount: dec("100.00"), Category: "Travel", DueDate: date(2025, 3, 12)},
		{TotalAmount: dec("999.00"), Category: "Payroll", DueDate: date(2025, 2, 5)}, // prior month
	}

	out := ExpenseBreakdown(payables, 2, today)

	require.Len(t, out, 3)
	assert.Equal(t, "Payroll", out[0].Name)
	assert.True(t, out[0].Amount.Equal(dec("500.00")))
	assert.True(t, out[0].Percent.Equal(dec("50")))
	assert.Equal(t, "Rent", out[1].Name)
	assert.Equal(t, Other, out[2].Name)
	assert.True(t, out[2].Amount.Equal(dec("200.00")))
	assert.True(t, out[2].Percent.Equal(dec("20")))
}

func TestExpenseBreakdown_TiesBreakByName(t *testing.T) {
	today := date(2025, 3, 15)
	payables := []model.Obligation{
		{TotalAmount: dec("100.00"), Category: "Zeta", DueDate: date(2025, 3, 5)},
		{TotalAmount: dec("100.00"), Category: "Alpha", DueDate: date(2025, 3, 5)},
	}

	out := ExpenseBreakdown(payables, 5, today)

	require.Len(t, out, 2)
	assert.Equal(t, "Alpha", out[0].Name)
	assert.Equal(t, "Zeta", out[1].Name)
}

func TestExpenseBreakdown_Uncategorized(t *testing.T) {
	today := date(2025, 3, 15)
	payables := []model.Obligation{
		{TotalAmount: dec("50.00"), DueDate: date(2025, 3, 5)},
	}

	out := ExpenseBreakdown(payables, 5, today)

	require.Len(t, out, 1)
	assert.Equal(t, Uncategorized, out[0].Name)
}

func TestExpenseBreakdown_EmptyMonth(t *testing.T) {
	assert.Nil(t, ExpenseBreakdown(nil, 5, date(2025, 3, 15)))
}
