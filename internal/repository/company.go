package repository

import (
	"context"
	"fmt"

	"pebacktester/types"
)

// ListCompanies retrieves the full simulation universe, ordered by symbol.
func (db *Database) ListCompanies(ctx context.Context) ([]types.Company, error) {
	rows, err := db.companies.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	companies := make([]types.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, types.Company{
			ID:     int(row.ID),
			Symbol: row.Symbol,
		})
	}
	return companies, nil
}
