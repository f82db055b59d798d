package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeKind string

const (
	TradeKindBuy  TradeKind = "Buy"
	TradeKindSell TradeKind = "Sell"
)

// Trade is one executed buy or sell. Number is monotonic across the whole
// run, not per company; a Trade is never mutated after it is emitted.
type Trade struct {
	Number        int             `json:"number"`
	Symbol        string          `json:"symbol"`
	Kind          TradeKind       `json:"kind"`
	Date          time.Time       `json:"date"`
	Ratio         decimal.Decimal `json:"ratio"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Shares        decimal.Decimal `json:"shares"`
}
