package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObligationStatus is the lifecycle state an obligation carries in the ERP.
type ObligationStatus string

const (
	StatusOpen      ObligationStatus = "OPEN"
	StatusPaid      ObligationStatus = "PAID"
	StatusCancelled ObligationStatus = "CANCELLED"
)

// Obligation is a receivable or payable snapshot read from the ERP.
// Obligations are created and mutated only by the ERP; this system treats
// them as immutable value objects. A zero time means the date is unknown.
type Obligation struct {
	ID           string           `json:"id"`
	Description  string           `json:"description"`
	Counterparty string           `json:"counterparty,omitempty"`
	Category     string           `json:"category,omitempty"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	PaidAmount   decimal.Decimal  `json:"paid_amount"`
	OpenAmount   decimal.Decimal  `json:"open_amount"` // TotalAmount - PaidAmount when the ERP omits it
	DueDate      time.Time        `json:"due_date"`
	AccrualDate  time.Time        `json:"accrual_date"`
	PaymentDate  time.Time        `json:"payment_date"`
	Status       ObligationStatus `json:"status"`
}

// IsOpen reports whether the obligation still counts toward aging,
// projection and net position.
func (o Obligation) IsOpen() bool {
	return o.Status != StatusPaid && o.Status != StatusCancelled
}

// FlowDate returns the accrual date, falling back to the due date.
// Monthly aggregation keys on this.
func (o Obligation) FlowDate() time.Time {
	if !o.AccrualDate.IsZero() {
		return o.AccrualDate
	}
	return o.DueDate
}

// SettlementDate returns the best available date for when the obligation
// was settled: payment date, then accrual date, then due date. A zero
// return means no date is resolvable.
func (o Obligation) SettlementDate() time.Time {
	if !o.PaymentDate.IsZero() {
		return o.PaymentDate
	}
	return o.FlowDate()
}
