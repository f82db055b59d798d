package types

import (
	"github.com/shopspring/decimal"
)

// BacktestResult is the aggregated outcome of one run: the full trade ledger
// in sequence order plus the portfolio-level totals.
type BacktestResult struct {
	Trades               []Trade         `json:"trades"`
	FinalTotalBalance    decimal.Decimal `json:"finalTotalBalance"`
	ProfitLossPercentage decimal.Decimal `json:"profitLossPercentage"`
}
