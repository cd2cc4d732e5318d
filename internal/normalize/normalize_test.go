package normalize

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

func TestObligations_FullRecord(t *testing.T) {
	raw := []RawObligation{{
		ID:          "ob-1",
		Status:      "PAID",
		Total:       "1500.50",
		Paid:        "1500.50",
		Unpaid:      "0",
		DueDate:     "2025-03-10T00:00:00Z",
		AccrualDate: "2025-03-01",
		PaymentDate: "2025-03-09",
		Description: "Consulting invoice",
		Party:       RawParty{Name: "Acme Ltda"},
		Categories:  []RawCategory{{Name: "Services"}, {Name: "Extra"}},
	}}

	items, dropped := Obligations(raw)

	require.Len(t, items, 1)
	assert.Equal(t, 0, dropped)
	o := items[0]
	assert.Equal(t, "ob-1", o.ID)
	assert.Equal(t, model.StatusPaid, o.Status)
	assert.True(t, o.TotalAmount.Equal(dec("1500.50")))
	assert.True(t, o.PaidAmount.Equal(dec("1500.50")))
	assert.True(t, o.OpenAmount.IsZero())
	assert.Equal(t, date(2025, 3, 10), o.DueDate)
	assert.Equal(t, date(2025, 3, 1), o.AccrualDate)
	assert.Equal(t, date(2025, 3, 9), o.PaymentDate)
	assert.Equal(t, "Consulting invoice", o.Description)
	assert.Equal(t, "Acme Ltda", o.Counterparty)
	assert.Equal(t, "Services", o.Category, "first category wins")
}

func TestObligations_OpenDerivedFromTotalMinusPaid(t *testing.T) {
	items, _ := Obligations([]RawObligation{{Total: "100.00", Paid: "30.00"}})

	require.Len(t, items, 1)
	assert.True(t, items[0].OpenAmount.Equal(dec("70.00")))
}

func TestObligations_ExplicitUnpaidWins(t *testing.T) {
	items, _ := Obligations([]RawObligation{{Total: "100.00", Paid: "30.00", Unpaid: "65.00"}})

	require.Len(t, items, 1)
	assert.True(t, items[0].OpenAmount.Equal(dec("65.00")))
}

func TestObligations_MissingIDGetsGenerated(t *testing.T) {
	items, _ := Obligations([]RawObligation{{Total: "10.00"}, {Total: "20.00"}})

	require.Len(t, items, 2)
	assert.NotEmpty(t, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestObligations_UnparsableAmountDropsRecord(t *testing.T) {
	raw := []RawObligation{
		{ID: "bad-total", Total: "abc"},
		{ID: "bad-paid", Total: "10.00", Paid: "x"},
		{ID: "ok", Total: "10.00"},
	}

	items, dropped := Obligations(raw)

	require.Len(t, items, 1)
	assert.Equal(t, "ok", items[0].ID)
	assert.Equal(t, 2, dropped)
}

func TestObligations_EmptyAmountsAreZero(t *testing.T) {
	items, dropped := Obligations([]RawObligation{{ID: "blank"}})

	require.Len(t, items, 1)
	assert.Equal(t, 0, dropped)
	assert.True(t, items[0].TotalAmount.IsZero())
}

func TestObligations_BadDateBecomesUnknown(t *testing.T) {
	items, dropped := Obligations([]RawObligation{{ID: "x", Total: "10.00", DueDate: "soon"}})

	require.Len(t, items, 1)
	assert.Equal(t, 0, dropped, "a bad date does not drop the record")
	assert.True(t, items[0].DueDate.IsZero())
}

func TestObligations_StatusMapping(t *testing.T) {
	cases := map[string]model.ObligationStatus{
		"PAID":      model.StatusPaid,
		"paid":      model.StatusPaid,
		"CANCELLED": model.StatusCancelled,
		"CANCELED":  model.StatusCancelled,
		"ACQUITTED": model.StatusOpen,
		"":          model.StatusOpen,
		"PENDING":   model.StatusOpen,
	}
	for in, want := range cases {
		items, _ := Obligations([]RawObligation{{Status: in, Total: "1"}})
		require.Len(t, items, 1, in)
		assert.Equal(t, want, items[0].Status, in)
	}
}

func TestObligations_DescriptionFallbackChain(t *testing.T) {
	items, _ := Obligations([]RawObligation{
		{Total: "1", Description: "desc", Note: "note", Party: RawParty{Name: "party"}},
		{Total: "1", Note: "note", Party: RawParty{Name: "party"}},
		{Total: "1", Party: RawParty{Name: "party"}},
	})

	require.Len(t, items, 3)
	assert.Equal(t, "desc", items[0].Description)
	assert.Equal(t, "note", items[1].Description)
	assert.Equal(t, "party", items[2].Description)
}

func TestTransactions_Directions(t *testing.T) {
	cases := []struct {
		raw  RawTransaction
		want model.Direction
	}{
		{RawTransaction{EntryDate: "2025-03-01", Operation: "C", Amount: "10"}, model.DirectionCredit},
		{RawTransaction{EntryDate: "2025-03-01", Operation: "CREDITO", Amount: "10"}, model.DirectionCredit},
		{RawTransaction{EntryDate: "2025-03-01", Operation: "D", Amount: "10"}, model.DirectionDebit},
		{RawTransaction{EntryDate: "2025-03-01", Operation: "debito", Amount: "10"}, model.DirectionDebit},
		{RawTransaction{EntryDate: "2025-03-01", Type: "DEBIT", Amount: "10"}, model.DirectionDebit},
		// No type at all: the sign decides.
		{RawTransaction{EntryDate: "2025-03-01", Amount: "-10"}, model.DirectionDebit},
		{RawTransaction{EntryDate: "2025-03-01", Amount: "10"}, model.DirectionCredit},
	}
	for i, c := range cases {
		txs, dropped := Transactions([]RawTransaction{c.raw})
		require.Len(t, txs, 1, "case %d", i)
		assert.Equal(t, 0, dropped)
		assert.Equal(t, c.want, txs[0].Direction, "case %d", i)
	}
}

func TestTransactions_AmountIsAbsolute(t *testing.T) {
	txs, _ := Transactions([]RawTransaction{{EntryDate: "2025-03-01", Amount: "-123.45"}})

	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(dec("123.45")))
	assert.Equal(t, model.DirectionDebit, txs[0].Direction)
}

func TestTransactions_DateFallbackAndDrop(t *testing.T) {
	txs, dropped := Transactions([]RawTransaction{
		{MovementDate: "2025-03-02T12:00:00", Amount: "10"},
		{Amount: "10"}, // no date at all
	})

	require.Len(t, txs, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, date(2025, 3, 2), txs[0].Date)
}

func TestTransactions_UnparsableAmountDropped(t *testing.T) {
	txs, dropped := Transactions([]RawTransaction{{EntryDate: "2025-03-01", Amount: "?"}})

	assert.Empty(t, txs)
	assert.Equal(t, 1, dropped)
}

func TestTransactions_DescriptionFallsBackToTitle(t *testing.T) {
	txs, _ := Transactions([]RawTransaction{
		{EntryDate: "2025-03-01", Amount: "10", Title: "PIX RECEBIDO"},
	})

	require.Len(t, txs, 1)
	assert.Equal(t, "PIX RECEBIDO", txs[0].Description)
}
