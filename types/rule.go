package types

import (
	"github.com/shopspring/decimal"
)

// Rule holds the thresholds of one trading rule. A buy triggers when the
// valuation ratio drops below BuyLevel, a sell when it rises above SellLevel.
// No ordering between the two levels is guaranteed.
type Rule struct {
	ID        int             `json:"id"`
	BuyLevel  decimal.Decimal `json:"buyLevel"`
	SellLevel decimal.Decimal `json:"sellLevel"`
}
