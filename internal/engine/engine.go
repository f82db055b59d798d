package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pebacktester/types"
)

// BacktestRequest is the validated input of one run. Dates are inclusive
// day bounds; InitialBalance must be positive.
type BacktestRequest struct {
	RuleID         int
	StartDate      time.Time
	EndDate        time.Time
	InitialBalance decimal.Decimal
}

// SimulationConfig tunes a run without touching its semantics. Workers <= 0
// falls back to the CPU count; CallTimeout bounds each market-data call and
// a timed-out call takes the same skip path as missing data. OnCompanyDone
// is an optional progress hook, called once per completed company.
type SimulationConfig struct {
	Workers       int
	CallTimeout   time.Duration
	OnCompanyDone func(done, total int)
}

type Engine struct {
	rules     ruleStore
	directory companyDirectory
	data      marketData
	config    SimulationConfig
	log       *slog.Logger
}

func NewEngine(rules ruleStore, directory companyDirectory, data marketData, config SimulationConfig, log *slog.Logger) *Engine {
	return &Engine{
		rules:     rules,
		directory: directory,
		data:      data,
		config:    config,
		log:       log,
	}
}

// Run executes one backtest. Rule and directory failures abort before any
// simulation starts; per-company data failures are recovered inside the run.
func (e *Engine) Run(ctx context.Context, req BacktestRequest) (types.BacktestResult, error) {
	rule, err := e.rules.GetRule(ctx, req.RuleID)
	if err != nil {
		return types.BacktestResult{}, err
	}

	companies, err := e.directory.ListCompanies(ctx)
	if err != nil {
		return types.BacktestResult{}, fmt.Errorf("company directory: %w", err)
	}
	if len(companies) == 0 {
		return types.BacktestResult{}, ErrNoCompanies
	}

	// The processing order is an explicit sort key, not whatever order the
	// directory happened to return.
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Symbol != companies[j].Symbol {
			return companies[i].Symbol < companies[j].Symbol
		}
		return companies[i].ID < companies[j].ID
	})

	allocation, err := splitAllocation(req.InitialBalance, len(companies))
	if err != nil {
		return types.BacktestResult{}, err
	}

	e.log.Info("starting backtest",
		"ruleId", rule.ID,
		"companies", len(companies),
		"start", req.StartDate.Format(time.DateOnly),
		"end", req.EndDate.Format(time.DateOnly),
		"allocationPerCompany", allocation.String(),
	)

	bt := &backtester{
		rule:           rule,
		companies:      companies,
		data:           e.data,
		start:          req.StartDate,
		end:            req.EndDate,
		initialBalance: req.InitialBalance,
		allocation:     allocation,
		workers:        e.config.Workers,
		callTimeout:    e.config.CallTimeout,
		log:            e.log,
		onCompanyDone:  e.config.OnCompanyDone,
	}
	result := bt.run(ctx)

	e.log.Info("backtest finished",
		"trades", len(result.Trades),
		"finalTotalBalance", result.FinalTotalBalance.String(),
		"profitLossPct", result.ProfitLossPercentage.String(),
	)
	return result, nil
}
