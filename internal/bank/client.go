// Package bank reads the balance and statement from the bank's REST
// API.
package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/apiclient"
	"github.com/finsight-dev/finsight/internal/model"
	"github.com/finsight-dev/finsight/internal/normalize"
)

const (
	pathBalance   = "/banking/v2/saldo"
	pathStatement = "/banking/v2/extrato"

	dateFormat = "2006-01-02"

	// The statement endpoint rejects ranges longer than 90 days.
	MaxStatementDays = 90
)

// Balance is the current-account balance breakdown.
type Balance struct {
	Available       decimal.Decimal
	BlockedCheck    decimal.Decimal
	BlockedJudicial decimal.Decimal
	Limit           decimal.Decimal
}

// Client is the high-level bank API client.
type Client struct {
	api *apiclient.Client
	log *zap.Logger
}

// NewClient creates a Client on top of an authenticated transport.
func NewClient(api *apiclient.Client, log *zap.Logger) *Client {
	return &Client{api: api, log: log}
}

type rawBalance struct {
	Available       json.Number `json:"disponivel"`
	BlockedCheck    json.Number `json:"bloqueadoCheque"`
	BlockedJudicial json.Number `json:"bloqueadoJudicial"`
	Limit           json.Number `json:"limite"`
}

// Balance returns the current-account balance.
func (c *Client) Balance(ctx context.Context) (Balance, error) {
	var raw rawBalance
	if err := c.api.GetJSON(ctx, pathBalance, nil, &raw); err != nil {
		return Balance{}, fmt.Errorf("fetching balance: %w", err)
	}
	return Balance{
		Available:       num(raw.Available),
		BlockedCheck:    num(raw.BlockedCheck),
		BlockedJudicial: num(raw.BlockedJudicial),
		Limit:           num(raw.Limit),
	}, nil
}

// Statement returns the normalized statement for [from, to]. Ranges
// wider than MaxStatementDays are clamped to the most recent window.
// The second return is the count of entries dropped by normalization.
func (c *Client) Statement(ctx context.Context, from, to time.Time) ([]model.BankTransaction, int, error) {
	if to.Sub(from) > MaxStatementDays*24*time.Hour {
		from = to.AddDate(0, 0, -MaxStatementDays)
		c.log.Warn("statement range clamped",
			zap.String("from", from.Format(dateFormat)),
			zap.String("to", to.Format(dateFormat)))
	}

	var resp struct {
		Transactions []normalize.RawTransaction `json:"transacoes"`
	}
	params := url.Values{
		"dataInicio": {from.Format(dateFormat)},
		"dataFim":    {to.Format(dateFormat)},
	}
	if err := c.api.GetJSON(ctx, pathStatement, params, &resp); err != nil {
		return nil, 0, fmt.Errorf("fetching statement: %w", err)
	}

	txs, dropped := normalize.Transactions(resp.Transactions)
	if dropped > 0 {
		c.log.Warn("dropped malformed statement entries", zap.Int("dropped", dropped))
	}
	return txs, dropped, nil
}

// num parses a JSON number, treating absent or malformed values as zero.
func num(n json.Number) decimal.Decimal {
	if n == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
