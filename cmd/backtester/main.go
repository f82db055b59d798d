package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"pebacktester/internal/config"
	"pebacktester/internal/engine"
	"pebacktester/internal/logger"
	"pebacktester/internal/repository"
	"pebacktester/types"
)

func main() {
	ruleID := flag.Int("rule", 1, "rule id to evaluate")
	startDate := flag.String("start", "", "start date (YYYY-MM-DD)")
	endDate := flag.String("end", "", "end date (YYYY-MM-DD)")
	balance := flag.String("balance", "", "total starting capital (defaults to configured value)")
	csvPath := flag.String("csv", "", "optional path to write the trade ledger as CSV")
	workers := flag.Int("workers", 0, "simulation workers (0 = number of CPUs)")
	flag.Parse()

	cfg := config.MustLoad()
	log, sync := logger.New(cfg.Production)
	defer sync()

	start, err := time.Parse(time.DateOnly, *startDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "-start must be formatted YYYY-MM-DD")
		os.Exit(2)
	}
	end, err := time.Parse(time.DateOnly, *endDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "-end must be formatted YYYY-MM-DD")
		os.Exit(2)
	}

	balanceStr := cfg.Simulation.InitialBalance
	if *balance != "" {
		balanceStr = *balance
	}
	initialBalance, err := decimal.NewFromString(balanceStr)
	if err != nil || !initialBalance.IsPositive() {
		fmt.Fprintln(os.Stderr, "-balance must be a positive decimal")
		os.Exit(2)
	}

	db, err := repository.NewDatabase(cfg.Database.URL)
	if err != nil {
		log.Error("connecting to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	var bar *progressbar.ProgressBar
	eng := engine.NewEngine(&db, &db, &db, engine.SimulationConfig{
		Workers:     *workers,
		CallTimeout: cfg.Simulation.CallTimeout,
		OnCompanyDone: func(done, total int) {
			if bar == nil {
				bar = initProgressBar(total)
			}
			bar.Add(1)
		},
	}, log)

	result, err := eng.Run(context.Background(), engine.BacktestRequest{
		RuleID:         *ruleID,
		StartDate:      start,
		EndDate:        end,
		InitialBalance: initialBalance,
	})
	if err != nil {
		log.Error("backtest failed", "err", err)
		os.Exit(1)
	}
	fmt.Println()

	printTrades(result.Trades)
	fmt.Printf("Final total balance:   %s\n", result.FinalTotalBalance)
	fmt.Printf("Profit/loss:           %s%%\n", result.ProfitLossPercentage.Round(2))

	if *csvPath != "" {
		if err := engine.WriteTradesCSVFile(*csvPath, result.Trades); err != nil {
			log.Error("writing trades csv", "path", *csvPath, "err", err)
			os.Exit(1)
		}
		fmt.Printf("Trade ledger written to %s\n", *csvPath)
	}
}

func printTrades(trades []types.Trade) {
	if len(trades) == 0 {
		fmt.Println("No trades executed.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Symbol", "Type", "Date", "PE", "Price", "Balance", "Shares")
	for _, t := range trades {
		table.Append(
			strconv.Itoa(t.Number),
			t.Symbol,
			string(t.Kind),
			t.Date.Format(time.DateOnly),
			t.Ratio.String(),
			t.PricePerShare.String(),
			t.BalanceAfter.String(),
			t.Shares.String(),
		)
	}
	table.Render()
}

func initProgressBar(companies int) *progressbar.ProgressBar {
	return progressbar.NewOptions(companies,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
