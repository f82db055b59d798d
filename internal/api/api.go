package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pebacktester/internal/engine"
	"pebacktester/internal/repository"
	"pebacktester/types"
)

// HTTP handlers for the backtest endpoints

type backtestRunner interface {
	Run(ctx context.Context, req engine.BacktestRequest) (types.BacktestResult, error)
}

type server struct {
	engine         backtestRunner
	defaultBalance decimal.Decimal
	log            *slog.Logger
}

// NewRouter sets up HTTP endpoints.
func NewRouter(eng backtestRunner, defaultBalance decimal.Decimal, log *slog.Logger) *gin.Engine {
	s := &server{engine: eng, defaultBalance: defaultBalance, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", healthHandler)
	r.POST("/backtest", s.backtestHandler)
	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type backtestRequest struct {
	RuleID         int    `json:"ruleId"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	InitialBalance string `json:"initialBalance"`
}

func (s *server) backtestHandler(c *gin.Context) {
	var body backtestRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := s.validate(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.engine.Run(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRuleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, engine.ErrNoCompanies):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			s.log.Error("backtest failed", "err", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "backtest failed"})
		}
		return
	}

	c.JSON(http.StatusOK, newBacktestResponse(result))
}

// validate turns the loosely-shaped wire request into a fully-typed engine
// request, rejecting anything malformed before a simulation starts.
func (s *server) validate(body backtestRequest) (engine.BacktestRequest, error) {
	if body.RuleID <= 0 {
		return engine.BacktestRequest{}, errors.New("ruleId must be a positive integer")
	}

	start, err := time.Parse(time.DateOnly, body.StartDate)
	if err != nil {
		return engine.BacktestRequest{}, errors.New("startDate must be formatted YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, body.EndDate)
	if err != nil {
		return engine.BacktestRequest{}, errors.New("endDate must be formatted YYYY-MM-DD")
	}
	if end.Before(start) {
		return engine.BacktestRequest{}, errors.New("endDate must not be before startDate")
	}

	balance := s.defaultBalance
	if body.InitialBalance != "" {
		balance, err = decimal.NewFromString(body.InitialBalance)
		if err != nil {
			return engine.BacktestRequest{}, errors.New("initialBalance must be a decimal number")
		}
	}
	if !balance.IsPositive() {
		return engine.BacktestRequest{}, errors.New("initialBalance must be positive")
	}

	return engine.BacktestRequest{
		RuleID:         body.RuleID,
		StartDate:      start,
		EndDate:        end,
		InitialBalance: balance,
	}, nil
}
