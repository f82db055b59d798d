package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pebacktester/types"
)

// GetRule retrieves the thresholds of a rule by its id.
func (db *Database) GetRule(ctx context.Context, id int) (types.Rule, error) {
	row, err := db.rules.GetRule(ctx, int32(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Rule{}, fmt.Errorf("rule %d: %w", id, ErrRuleNotFound)
		}
		return types.Rule{}, err
	}
	return types.Rule{
		ID:        int(row.ID),
		BuyLevel:  row.BuyLevel,
		SellLevel: row.SellLevel,
	}, nil
}
