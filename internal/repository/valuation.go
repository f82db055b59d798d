package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pebacktester/types"
)

// GetValuationSeries retrieves a company's daily PE observations inside
// [start, end], ascending by date. An empty series is not an error.
func (db *Database) GetValuationSeries(ctx context.Context, companyID int, start, end time.Time) ([]types.ValuationObservation, error) {
	args := valuationSeriesParams{
		CompanyID: int32(companyID),
		StartDate: start,
		EndDate:   end,
	}
	rows, err := db.valuations.GetValuationSeries(ctx, args)
	if err != nil {
		return nil, err
	}
	return convertValuations(rows, companyID), nil
}

// GetPrice retrieves the closing price of a company on a single date.
// A missing price is reported as ErrPriceNotFound, never as a zero value.
func (db *Database) GetPrice(ctx context.Context, companyID int, date time.Time) (decimal.Decimal, error) {
	args := closingPriceParams{
		CompanyID: int32(companyID),
		Date:      date,
	}
	row, err := db.valuations.GetClosingPrice(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("company %d on %s: %w",
				companyID, date.Format(time.DateOnly), ErrPriceNotFound)
		}
		return decimal.Zero, err
	}
	return row.ClosePrice, nil
}

func convertValuations(rows []valuationRow, companyID int) []types.ValuationObservation {
	var series []types.ValuationObservation
	for _, row := range rows {
		series = append(series, types.ValuationObservation{
			CompanyID: companyID,
			Date:      row.Date,
			Ratio:     row.PERatio,
		})
	}
	return series
}
