package model

import "github.com/shopspring/decimal"

// CashAccount is one financial account with its current balance.
type CashAccount struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type,omitempty"`
	Bank    string          `json:"bank,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// CashPosition is the consolidated cash balance across active accounts.
type CashPosition struct {
	Total    decimal.Decimal `json:"total"`
	Accounts []CashAccount   `json:"accounts"`
}
