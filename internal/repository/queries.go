package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Row and parameter types for the raw queries. Decoding into the typed
// entities of the types package happens in the repository methods, never
// downstream.

type ruleRow struct {
	ID        int32
	BuyLevel  decimal.Decimal
	SellLevel decimal.Decimal
}

type companyRow struct {
	ID     int32
	Symbol string
}

type valuationRow struct {
	Date    time.Time
	PERatio decimal.Decimal
}

type priceRow struct {
	ClosePrice decimal.Decimal
}

type valuationSeriesParams struct {
	CompanyID int32
	StartDate time.Time
	EndDate   time.Time
}

type closingPriceParams struct {
	CompanyID int32
	Date      time.Time
}

const getRuleSQL = `
SELECT id, buy_level, sell_level
FROM rules
WHERE id = $1`

const listCompaniesSQL = `
SELECT id, symbol
FROM companies
ORDER BY symbol, id`

const getValuationSeriesSQL = `
SELECT observed_on, pe_ratio
FROM valuations
WHERE company_id = $1
  AND observed_on >= $2
  AND observed_on <= $3
ORDER BY observed_on`

const getClosingPriceSQL = `
SELECT close_price
FROM daily_prices
WHERE company_id = $1
  AND observed_on = $2`

type queries struct {
	pool *pgxpool.Pool
}

func newQueries(pool *pgxpool.Pool) *queries {
	return &queries{pool: pool}
}

func (q *queries) GetRule(ctx context.Context, id int32) (ruleRow, error) {
	var row ruleRow
	err := q.pool.QueryRow(ctx, getRuleSQL, id).Scan(&row.ID, &row.BuyLevel, &row.SellLevel)
	return row, err
}

func (q *queries) ListCompanies(ctx context.Context) ([]companyRow, error) {
	rows, err := q.pool.Query(ctx, listCompaniesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []companyRow
	for rows.Next() {
		var row companyRow
		if err := rows.Scan(&row.ID, &row.Symbol); err != nil {
			return nil, err
		}
		companies = append(companies, row)
	}
	return companies, rows.Err()
}

func (q *queries) GetValuationSeries(ctx context.Context, arg valuationSeriesParams) ([]valuationRow, error) {
	rows, err := q.pool.Query(ctx, getValuationSeriesSQL, arg.CompanyID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []valuationRow
	for rows.Next() {
		var row valuationRow
		if err := rows.Scan(&row.Date, &row.PERatio); err != nil {
			return nil, err
		}
		series = append(series, row)
	}
	return series, rows.Err()
}

func (q *queries) GetClosingPrice(ctx context.Context, arg closingPriceParams) (priceRow, error) {
	var row priceRow
	err := q.pool.QueryRow(ctx, getClosingPriceSQL, arg.CompanyID, arg.Date).Scan(&row.ClosePrice)
	return row, err
}
