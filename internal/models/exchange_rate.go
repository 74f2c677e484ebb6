package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate mirrors a row of the exchange_rate table.
type ExchangeRate struct {
	RateDate     time.Time       `json:"rateDate"`     // rate_date, part of the unique key
	FromCurrency string          `json:"fromCurrency"` // from_currency
	ToCurrency   string          `json:"toCurrency"`   // to_currency
	Source       string          `json:"source"`       // source, e.g. DAILY
	Rate         decimal.Decimal `json:"rate"`         // numeric(34,10)
	FetchedAt    time.Time       `json:"fetchedAt"`
}
