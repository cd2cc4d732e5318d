// Package normalize converts raw external API payloads into the typed
// entities the rest of the system computes on. All field-name variants,
// fallback chains and sign conventions of the two upstream APIs are
// resolved here, once; records that cannot be normalized are dropped and
// counted instead of leaking ambiguity downstream.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finsight-dev/finsight/internal/model"
)

// RawParty is the counterparty object on an ERP financial event.
type RawParty struct {
	Name string `json:"nome"`
}

// RawCategory is one category tag on an ERP financial event.
type RawCategory struct {
	Name string `json:"nome"`
}

// RawObligation mirrors the ERP financial-event payload for both the
// receivables and payables endpoints.
type RawObligation struct {
	ID          string        `json:"id"`
	Status      string        `json:"status"`
	Total       json.Number   `json:"total"`
	Paid        json.Number   `json:"pago"`
	Unpaid      json.Number   `json:"nao_pago"`
	DueDate     string        `json:"data_vencimento"`
	AccrualDate string        `json:"data_competencia"`
	PaymentDate string        `json:"data_pagamento"`
	Description string        `json:"descricao"`
	Note        string        `json:"observacao"`
	Party       RawParty      `json:"pessoa"`
	Categories  []RawCategory `json:"categorias"`
}

// RawTransaction mirrors one statement entry from the bank API.
type RawTransaction struct {
	EntryDate    string      `json:"dataEntrada"`
	MovementDate string      `json:"dataMovimento"`
	Operation    string      `json:"tipoOperacao"`
	Type         string      `json:"tipo"`
	Description  string      `json:"descricao"`
	Title        string      `json:"titulo"`
	Amount       json.Number `json:"valor"`
	Document     string      `json:"numeroDocumento"`
}

// Obligations normalizes raw ERP events. Records whose total amount is
// unparsable are dropped; the second return is the dropped count. Dates
// that fail to parse come through as zero times, which downstream code
// treats as unknown.
func Obligations(raw []RawObligation) ([]model.Obligation, int) {
	out := make([]model.Obligation, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		o, ok := obligation(r)
		if !ok {
			dropped++
			continue
		}
		out = append(out, o)
	}
	return out, dropped
}

func obligation(r RawObligation) (model.Obligation, bool) {
	total, ok := amount(r.Total)
	if !ok {
		return model.Obligation{}, false
	}
	paid, ok := amount(r.Paid)
	if !ok {
		return model.Obligation{}, false
	}

	open := total.Sub(paid)
	if r.Unpaid != "" {
		open, ok = amount(r.Unpaid)
		if !ok {
			return model.Obligation{}, false
		}
	}

	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}

	return model.Obligation{
		ID:           id,
		Description:  description(r),
		Counterparty: r.Party.Name,
		Category:     category(r.Categories),
		TotalAmount:  total,
		PaidAmount:   paid,
		OpenAmount:   open,
		DueDate:      day(r.DueDate),
		AccrualDate:  day(r.AccrualDate),
		PaymentDate:  day(r.PaymentDate),
		Status:       status(r.Status),
	}, true
}

// Transactions normalizes raw statement entries. Entries without a
// parsable date or amount are dropped and counted.
func Transactions(raw []RawTransaction) ([]model.BankTransaction, int) {
	out := make([]model.BankTransaction, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		tx, ok := transaction(r)
		if !ok {
			dropped++
			continue
		}
		out = append(out, tx)
	}
	return out, dropped
}

func transaction(r RawTransaction) (model.BankTransaction, bool) {
	date := day(r.EntryDate)
	if date.IsZero() {
		date = day(r.MovementDate)
	}
	if date.IsZero() {
		return model.BankTransaction{}, false
	}

	value, ok := amount(r.Amount)
	if !ok {
		return model.BankTransaction{}, false
	}

	desc := r.Description
	if desc == "" {
		desc = r.Title
	}

	return model.BankTransaction{
		Date:        date,
		Direction:   direction(r, value),
		Description: desc,
		Amount:      value.Abs(),
		Reference:   r.Document,
	}, true
}

// direction resolves the bank's operation-type variants, falling back to
// the amount's sign when the type field is missing or unrecognized.
func direction(r RawTransaction, value decimal.Decimal) model.Direction {
	op := strings.ToUpper(r.Operation)
	if op == "" {
		op = strings.ToUpper(r.Type)
	}
	switch op {
	case "C", "CREDITO", "CREDIT":
		return model.DirectionCredit
	case "D", "DEBITO", "DEBIT":
		return model.DirectionDebit
	}
	if value.Sign() < 0 {
		return model.DirectionDebit
	}
	return model.DirectionCredit
}

func status(s string) model.ObligationStatus {
	switch strings.ToUpper(s) {
	case "PAID":
		return model.StatusPaid
	case "CANCELLED", "CANCELED":
		return model.StatusCancelled
	default:
		return model.StatusOpen
	}
}

func description(r RawObligation) string {
	if r.Description != "" {
		return r.Description
	}
	if r.Note != "" {
		return r.Note
	}
	return r.Party.Name
}

func category(cats []RawCategory) string {
	if len(cats) == 0 {
		return ""
	}
	return cats[0].Name
}

// amount parses a JSON number into a decimal. Absent values are zero;
// present but unparsable values fail the record.
func amount(n json.Number) (decimal.Decimal, bool) {
	if n == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// day parses the date prefix of an ISO timestamp ("2006-01-02...") into
// a UTC midnight time. Unparsable input yields the zero time.
func day(s string) time.Time {
	if len(s) < 10 {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return time.Time{}
	}
	return t
}
