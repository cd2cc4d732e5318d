package bank

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finsight-dev/finsight/internal/apiclient"
	"github.com/finsight-dev/finsight/internal/model"
)

type staticTokens struct{}

func (staticTokens) Token(context.Context) (string, error) { return "tok", nil }

func (staticTokens) Invalidate() {}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := apiclient.New(srv.URL, staticTokens{}, 0, 3, time.Millisecond, zap.NewNop())
	return NewClient(api, zap.NewNop())
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestBalance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathBalance, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"disponivel": 4321.09, "bloqueadoCheque": 10.00, "limite": 500}`)
	})
	client := newTestClient(t, mux)

	bal, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, bal.Available.Equal(decimal.NewFromFloat(4321.09)))
	assert.True(t, bal.BlockedCheck.Equal(decimal.NewFromInt(10)))
	assert.True(t, bal.BlockedJudicial.IsZero(), "absent field is zero")
	assert.True(t, bal.Limit.Equal(decimal.NewFromInt(500)))
}

func TestStatement(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathStatement, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-03-01", r.URL.Query().Get("dataInicio"))
		assert.Equal(t, "2025-03-15", r.URL.Query().Get("dataFim"))
		fmt.Fprint(w, `{"transacoes":[
			{"dataEntrada":"2025-03-05","tipoOperacao":"D","valor":"800.00","descricao":"Rent"},
			{"dataEntrada":"2025-03-10","tipoOperacao":"C","valor":"1000.00","titulo":"PIX"},
			{"valor":"5.00"}
		]}`)
	})
	client := newTestClient(t, mux)

	txs, dropped, err := client.Statement(context.Background(), date(2025, 3, 1), date(2025, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, 1, dropped, "undated entry dropped")
	require.Len(t, txs, 2)
	assert.Equal(t, model.DirectionDebit, txs[0].Direction)
	assert.Equal(t, "Rent", txs[0].Description)
	assert.Equal(t, model.DirectionCredit, txs[1].Direction)
	assert.Equal(t, "PIX", txs[1].Description)
}

func TestStatement_ClampsRange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathStatement, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-12-15", r.URL.Query().Get("dataInicio"), "clamped to the last 90 days")
		assert.Equal(t, "2025-03-15", r.URL.Query().Get("dataFim"))
		fmt.Fprint(w, `{"transacoes":[]}`)
	})
	client := newTestClient(t, mux)

	_, _, err := client.Statement(context.Background(), date(2024, 9, 1), date(2025, 3, 15))
	require.NoError(t, err)
}
