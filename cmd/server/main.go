package main

import (
	"os"

	"github.com/shopspring/decimal"

	"pebacktester/internal/api"
	"pebacktester/internal/config"
	"pebacktester/internal/engine"
	"pebacktester/internal/logger"
	"pebacktester/internal/repository"
)

func main() {
	cfg := config.MustLoad()

	log, sync := logger.New(cfg.Production)
	defer sync()

	defaultBalance, err := decimal.NewFromString(cfg.Simulation.InitialBalance)
	if err != nil {
		log.Error("invalid simulation.initial_balance", "value", cfg.Simulation.InitialBalance, "err", err)
		os.Exit(1)
	}

	db, err := repository.NewDatabase(cfg.Database.URL)
	if err != nil {
		log.Error("connecting to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	eng := engine.NewEngine(&db, &db, &db, engine.SimulationConfig{
		Workers:     cfg.Simulation.Workers,
		CallTimeout: cfg.Simulation.CallTimeout,
	}, log)

	router := api.NewRouter(eng, defaultBalance, log)

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		log.Error("http server", "err", err)
		os.Exit(1)
	}
}
