package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pebacktester/types"
)

type ruleStore interface {
	GetRule(ctx context.Context, id int) (types.Rule, error)
}

type companyDirectory interface {
	ListCompanies(ctx context.Context) ([]types.Company, error)
}

type marketData interface {
	GetValuationSeries(ctx context.Context, companyID int, start, end time.Time) ([]types.ValuationObservation, error)
	GetPrice(ctx context.Context, companyID int, date time.Time) (decimal.Decimal, error)
}
