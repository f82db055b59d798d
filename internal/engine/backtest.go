package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pebacktester/types"
)

// backtester drives one run: it fans the sorted company universe out over a
// bounded worker pool, then folds the per-company results back together in
// universe order so trade numbering and totals are reproducible regardless
// of completion order.
type backtester struct {
	rule           types.Rule
	companies      []types.Company
	data           marketData
	start          time.Time
	end            time.Time
	initialBalance decimal.Decimal
	allocation     decimal.Decimal
	workers        int
	callTimeout    time.Duration
	log            *slog.Logger
	onCompanyDone  func(done, total int)
}

func (b *backtester) run(ctx context.Context) types.BacktestResult {
	workers := b.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(b.companies) {
		workers = len(b.companies)
	}

	sim := &simulator{data: b.data, callTimeout: b.callTimeout, log: b.log}

	type job struct {
		idx     int
		company types.Company
	}
	type outcome struct {
		idx int
		res companyResult
	}

	workCh := make(chan job, len(b.companies))
	resultCh := make(chan outcome, len(b.companies))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range workCh {
				resultCh <- outcome{idx: j.idx, res: b.simulateCompany(ctx, sim, j.company)}
			}
		}()
	}

	for i, company := range b.companies {
		workCh <- job{idx: i, company: company}
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Results land indexed by universe position, never by arrival order.
	results := make([]companyResult, len(b.companies))
	done := 0
	for out := range resultCh {
		results[out.idx] = out.res
		done++
		if b.onCompanyDone != nil {
			b.onCompanyDone(done, len(b.companies))
		}
	}

	return b.aggregate(results)
}

// simulateCompany fetches one company's series and runs the state machine
// over it. A failed fetch skips the company: its untouched allocation still
// counts toward the final balance and the run continues.
func (b *backtester) simulateCompany(ctx context.Context, sim *simulator, company types.Company) companyResult {
	series, err := b.fetchSeries(ctx, company.ID)
	if err != nil {
		b.log.Warn("valuation series unavailable, skipping company",
			"symbol", company.Symbol,
			"err", err,
		)
		return companyResult{company: company, endingCash: b.allocation, skipped: true}
	}
	return sim.run(ctx, company, b.rule, series, b.allocation)
}

func (b *backtester) fetchSeries(ctx context.Context, companyID int) ([]types.ValuationObservation, error) {
	if b.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.callTimeout)
		defer cancel()
	}
	return b.data.GetValuationSeries(ctx, companyID, b.start, b.end)
}

// aggregate assigns global trade numbers in universe order and sums the
// ending balances. Both are pure reductions over the independent results.
func (b *backtester) aggregate(results []companyResult) types.BacktestResult {
	var trades []types.Trade
	total := decimal.Zero
	seq := 0

	for _, res := range results {
		for _, trade := range res.trades {
			seq++
			trade.Number = seq
			trades = append(trades, trade)
		}
		total = total.Add(res.endingCash)
	}

	profitLossPct := decimal.Zero
	if b.initialBalance.IsPositive() {
		profitLossPct = total.Sub(b.initialBalance).
			Div(b.initialBalance).
			Mul(decimal.NewFromInt(100))
	}

	return types.BacktestResult{
		Trades:               trades,
		FinalTotalBalance:    total,
		ProfitLossPercentage: profitLossPct,
	}
}
