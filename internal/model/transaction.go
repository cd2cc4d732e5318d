package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a bank statement transaction.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// BankTransaction is one row of the bank statement. Amounts are always
// non-negative; Direction carries the sign.
type BankTransaction struct {
	Date        time.Time       `json:"date"`
	Direction   Direction       `json:"direction"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
}
