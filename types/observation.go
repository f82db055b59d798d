package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationObservation is one daily PE-ratio data point for a company.
// Series are consumed in ascending date order, one observation per date.
type ValuationObservation struct {
	CompanyID int             `json:"companyId"`
	Date      time.Time       `json:"date"`
	Ratio     decimal.Decimal `json:"ratio"`
}
