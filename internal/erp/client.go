// Package erp reads financial events and account balances from the
// accounting platform's REST API.
package erp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/apiclient"
	"github.com/finsight-dev/finsight/internal/model"
	"github.com/finsight-dev/finsight/internal/normalize"
)

const (
	pathReceivables = "/financeiro/eventos-financeiros/contas-a-receber/buscar"
	pathPayables    = "/financeiro/eventos-financeiros/contas-a-pagar/buscar"
	pathAccounts    = "/conta-financeira"

	pageSize   = 50
	dateFormat = "2006-01-02"
)

// Client is the high-level ERP API client.
type Client struct {
	api *apiclient.Client
	log *zap.Logger
}

// NewClient creates a Client on top of an authenticated transport.
func NewClient(api *apiclient.Client, log *zap.Logger) *Client {
	return &Client{api: api, log: log}
}

// Receivables returns the normalized receivables due inside [from, to].
// The second return is the count of records dropped by normalization.
func (c *Client) Receivables(ctx context.Context, from, to time.Time) ([]model.Obligation, int, error) {
	return c.obligations(ctx, pathReceivables, from, to)
}

// Payables returns the normalized payables due inside [from, to].
func (c *Client) Payables(ctx context.Context, from, to time.Time) ([]model.Obligation, int, error) {
	return c.obligations(ctx, pathPayables, from, to)
}

func (c *Client) obligations(ctx context.Context, path string, from, to time.Time) ([]model.Obligation, int, error) {
	params := url.Values{
		"data_vencimento_de":  {from.Format(dateFormat)},
		"data_vencimento_ate": {to.Format(dateFormat)},
	}
	raw, err := fetchAll[normalize.RawObligation](ctx, c.api, path, params)
	if err != nil {
		return nil, 0, err
	}

	items, dropped := normalize.Obligations(raw)
	if dropped > 0 {
		c.log.Warn("dropped malformed financial events",
			zap.String("path", path),
			zap.Int("dropped", dropped))
	}
	return items, dropped, nil
}

// rawAccount is the financial-account payload.
type rawAccount struct {
	ID     string `json:"id"`
	Name   string `json:"nome"`
	Type   string `json:"tipo"`
	Bank   string `json:"banco"`
	Active *bool  `json:"ativo"`
}

// rawBalance is the per-account balance payload.
type rawBalance struct {
	Current json.Number `json:"saldo_atual"`
}

// CashBalance returns the consolidated position across active accounts.
// A failed balance read for one account logs a warning and counts as
// zero rather than failing the whole position.
func (c *Client) CashBalance(ctx context.Context) (model.CashPosition, error) {
	accounts, err := fetchAll[rawAccount](ctx, c.api, pathAccounts, nil)
	if err != nil {
		return model.CashPosition{}, fmt.Errorf("listing financial accounts: %w", err)
	}

	pos := model.CashPosition{Total: decimal.Zero}
	for _, acc := range accounts {
		if acc.Active != nil && !*acc.Active {
			continue
		}

		balance := decimal.Zero
		var raw rawBalance
		err := c.api.GetJSON(ctx, pathAccounts+"/"+acc.ID+"/saldo-atual", nil, &raw)
		if err != nil {
			c.log.Warn("account balance unavailable, counting as zero",
				zap.String("account", acc.ID),
				zap.Error(err))
		} else if raw.Current != "" {
			balance, err = decimal.NewFromString(raw.Current.String())
			if err != nil {
				c.log.Warn("unparsable account balance, counting as zero",
					zap.String("account", acc.ID),
					zap.String("value", raw.Current.String()))
				balance = decimal.Zero
			}
		}

		pos.Accounts = append(pos.Accounts, model.CashAccount{
			ID:      acc.ID,
			Name:    acc.Name,
			Type:    acc.Type,
			Bank:    acc.Bank,
			Balance: balance,
		})
		pos.Total = pos.Total.Add(balance)
	}
	return pos, nil
}

// fetchAll walks every page of a paginated endpoint.
func fetchAll[T any](ctx context.Context, api *apiclient.Client, path string, params url.Values) ([]T, error) {
	var all []T
	page := 1
	for {
		q := url.Values{}
		for k, vs := range params {
			q[k] = vs
		}
		q.Set("pagina", strconv.Itoa(page))
		q.Set("tamanho_pagina", strconv.Itoa(pageSize))

		var resp struct {
			Items []T `json:"itens"`
			Total int `json:"itens_totais"`
		}
		if err := api.GetJSON(ctx, path, q, &resp); err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", page, path, err)
		}

		all = append(all, resp.Items...)
		if len(resp.Items) == 0 || len(all) >= resp.Total {
			return all, nil
		}
		page++
	}
}
