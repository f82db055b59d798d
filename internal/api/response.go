package api

import (
	"time"

	"github.com/shopspring/decimal"

	"pebacktester/types"
)

// Wire shapes of the backtest response. Building them from a
// types.BacktestResult is a pure projection: values pass through unchanged.

type TradeResponse struct {
	Number             int             `json:"number"`
	Symbol             string          `json:"symbol"`
	Type               string          `json:"type"`
	Date               string          `json:"date"`
	PERatio            decimal.Decimal `json:"peRatio"`
	PricePerShare      decimal.Decimal `json:"pricePerShare"`
	BankAccountBalance decimal.Decimal `json:"bankAccountBalance"`
	Shares             decimal.Decimal `json:"shares"`
}

type BacktestResponse struct {
	Trades               []TradeResponse `json:"trades"`
	FinalTotalBalance    decimal.Decimal `json:"finalTotalBalance"`
	ProfitLossPercentage decimal.Decimal `json:"profitLossPercentage"`
}

func newBacktestResponse(result types.BacktestResult) BacktestResponse {
	trades := make([]TradeResponse, 0, len(result.Trades))
	for _, t := range result.Trades {
		trades = append(trades, TradeResponse{
			Number:             t.Number,
			Symbol:             t.Symbol,
			Type:               string(t.Kind),
			Date:               t.Date.Format(time.DateOnly),
			PERatio:            t.Ratio,
			PricePerShare:      t.PricePerShare,
			BankAccountBalance: t.BalanceAfter,
			Shares:             t.Shares,
		})
	}
	return BacktestResponse{
		Trades:               trades,
		FinalTotalBalance:    result.FinalTotalBalance,
		ProfitLossPercentage: result.ProfitLossPercentage,
	}
}
