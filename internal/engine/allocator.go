package engine

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNoCompanies = errors.New("no companies to allocate capital to")

// splitAllocation divides the total starting capital evenly across the
// company universe. The quotient keeps shopspring's full division
// precision; sub-unit starting balances are allowed and must survive the
// run unrounded.
func splitAllocation(total decimal.Decimal, companies int) (decimal.Decimal, error) {
	if companies < 1 {
		return decimal.Zero, ErrNoCompanies
	}
	return total.Div(decimal.NewFromInt(int64(companies))), nil
}
