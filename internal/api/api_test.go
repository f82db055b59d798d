package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pebacktester/internal/engine"
	"pebacktester/internal/repository"
	"pebacktester/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRunner struct {
	result types.BacktestResult
	err    error
	gotReq engine.BacktestRequest
}

func (m *mockRunner) Run(_ context.Context, req engine.BacktestRequest) (types.BacktestResult, error) {
	m.gotReq = req
	return m.result, m.err
}

func doRequest(t *testing.T, runner *mockRunner, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := NewRouter(runner, decimal.NewFromInt(10_000_000), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/backtest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBacktestHandler_Success(t *testing.T) {
	date := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	runner := &mockRunner{result: types.BacktestResult{
		Trades: []types.Trade{{
			Number:        1,
			Symbol:        "AAPL",
			Kind:          types.TradeKindBuy,
			Date:          date,
			Ratio:         decimal.NewFromInt(8),
			PricePerShare: decimal.NewFromInt(100),
			BalanceAfter:  decimal.Zero,
			Shares:        decimal.NewFromInt(10000),
		}},
		FinalTotalBalance:    decimal.NewFromInt(11_000_000),
		ProfitLossPercentage: decimal.NewFromInt(10),
	}}

	rec := doRequest(t, runner, `{"ruleId":1,"startDate":"2022-01-01","endDate":"2022-02-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Trades []map[string]any `json:"trades"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Trades, 1)
	assert.Equal(t, "Buy", resp.Trades[0]["type"])
	assert.Equal(t, "2022-01-03", resp.Trades[0]["date"])
	assert.Equal(t, "AAPL", resp.Trades[0]["symbol"])

	// The default balance is filled in when the request omits it.
	assert.True(t, runner.gotReq.InitialBalance.Equal(decimal.NewFromInt(10_000_000)))
	assert.Equal(t, 1, runner.gotReq.RuleID)
}

func TestBacktestHandler_EmptyLedgerIsAnArray(t *testing.T) {
	runner := &mockRunner{result: types.BacktestResult{
		FinalTotalBalance:    decimal.NewFromInt(10_000_000),
		ProfitLossPercentage: decimal.Zero,
	}}

	rec := doRequest(t, runner, `{"ruleId":1,"startDate":"2022-01-01","endDate":"2022-02-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trades":[]`)
}

func TestBacktestHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing rule id", `{"startDate":"2022-01-01","endDate":"2022-02-01"}`},
		{"negative rule id", `{"ruleId":-1,"startDate":"2022-01-01","endDate":"2022-02-01"}`},
		{"malformed start date", `{"ruleId":1,"startDate":"01/01/2022","endDate":"2022-02-01"}`},
		{"malformed end date", `{"ruleId":1,"startDate":"2022-01-01","endDate":"soon"}`},
		{"end before start", `{"ruleId":1,"startDate":"2022-02-01","endDate":"2022-01-01"}`},
		{"bad balance", `{"ruleId":1,"startDate":"2022-01-01","endDate":"2022-02-01","initialBalance":"lots"}`},
		{"negative balance", `{"ruleId":1,"startDate":"2022-01-01","endDate":"2022-02-01","initialBalance":"-5"}`},
		{"not json", `ruleId=1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &mockRunner{}, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestBacktestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"rule not found", repository.ErrRuleNotFound, http.StatusNotFound},
		{"empty universe", engine.ErrNoCompanies, http.StatusBadGateway},
		{"directory failure", context.DeadlineExceeded, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{err: tt.err}
			rec := doRequest(t, runner, `{"ruleId":1,"startDate":"2022-01-01","endDate":"2022-02-01"}`)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(&mockRunner{}, decimal.NewFromInt(1), testLogger())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
