package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"pebacktester/types"
)

type positionState int

const (
	stateFlat positionState = iota
	stateLong
)

// position is the simulator's working state for one company. It exists only
// for the duration of that company's pass and is discarded afterwards.
type position struct {
	cash   decimal.Decimal
	shares decimal.Decimal
	state  positionState
}

// companyResult carries one company's simulation output back to the
// coordinator. Trade numbers are not assigned yet at this point.
type companyResult struct {
	company    types.Company
	trades     []types.Trade
	endingCash decimal.Decimal
	skipped    bool
}

// simulator runs the buy/sell state machine for single companies. It is
// stateless between runs and safe to share across workers.
type simulator struct {
	data        marketData
	callTimeout time.Duration
	log         *slog.Logger
}

// moneyPlaces is the rounding applied after every cash-affecting computation.
const moneyPlaces = 4

// run walks one company's observation series in ascending date order and
// applies at most one transition per observation:
//
//	Flat -> Long when ratio < buyLevel and cash covers at least one share,
//	Long -> Flat when ratio > sellLevel,
//	hold otherwise.
//
// A position still open after the last observation is force-liquidated at
// the last successfully priced date. An empty series produces zero trades
// and an ending balance equal to the starting cash.
func (s *simulator) run(ctx context.Context, company types.Company, rule types.Rule, series []types.ValuationObservation, startingCash decimal.Decimal) companyResult {
	pos := position{cash: startingCash, shares: decimal.Zero, state: stateFlat}
	var trades []types.Trade

	// Liquidation point: the most recent observation whose price resolved.
	var lastPrice, lastRatio decimal.Decimal
	var lastDate time.Time
	priced := false

	for _, obs := range series {
		price, err := s.lookupPrice(ctx, company.ID, obs.Date)
		if err != nil {
			// A missing price fails this day's decision; it is never
			// substituted with a default value.
			s.log.Debug("price unavailable, skipping decision day",
				"symbol", company.Symbol,
				"date", obs.Date.Format(time.DateOnly),
				"err", err,
			)
			continue
		}
		if !price.IsPositive() {
			s.log.Warn("non-positive price, skipping decision day",
				"symbol", company.Symbol,
				"date", obs.Date.Format(time.DateOnly),
			)
			continue
		}
		lastPrice, lastRatio, lastDate, priced = price, obs.Ratio, obs.Date, true

		switch pos.state {
		case stateFlat:
			if obs.Ratio.LessThan(rule.BuyLevel) && pos.cash.GreaterThanOrEqual(price) {
				shares := pos.cash.Div(price).Floor()
				cost := shares.Mul(price).Round(moneyPlaces)
				pos.cash = pos.cash.Sub(cost)
				pos.shares = shares
				pos.state = stateLong
				trades = append(trades, types.Trade{
					Symbol:        company.Symbol,
					Kind:          types.TradeKindBuy,
					Date:          obs.Date,
					Ratio:         obs.Ratio,
					PricePerShare: price,
					BalanceAfter:  pos.cash,
					Shares:        shares,
				})
			}
		case stateLong:
			if obs.Ratio.GreaterThan(rule.SellLevel) {
				revenue := pos.shares.Mul(price).Round(moneyPlaces)
				sold := pos.shares
				pos.cash = pos.cash.Add(revenue)
				pos.shares = decimal.Zero
				pos.state = stateFlat
				trades = append(trades, types.Trade{
					Symbol:        company.Symbol,
					Kind:          types.TradeKindSell,
					Date:          obs.Date,
					Ratio:         obs.Ratio,
					PricePerShare: price,
					BalanceAfter:  pos.cash,
					Shares:        sold,
				})
			}
		}
	}

	// Any position left open is liquidated at the last priced observation.
	// A Long state implies at least one resolved price, so priced holds.
	if pos.state == stateLong && priced {
		revenue := pos.shares.Mul(lastPrice).Round(moneyPlaces)
		sold := pos.shares
		pos.cash = pos.cash.Add(revenue)
		pos.shares = decimal.Zero
		pos.state = stateFlat
		trades = append(trades, types.Trade{
			Symbol:        company.Symbol,
			Kind:          types.TradeKindSell,
			Date:          lastDate,
			Ratio:         lastRatio,
			PricePerShare: lastPrice,
			BalanceAfter:  pos.cash,
			Shares:        sold,
		})
	}

	return companyResult{
		company:    company,
		trades:     trades,
		endingCash: pos.cash,
	}
}

func (s *simulator) lookupPrice(ctx context.Context, companyID int, date time.Time) (decimal.Decimal, error) {
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	return s.data.GetPrice(ctx, companyID, date)
}
