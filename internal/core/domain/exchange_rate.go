package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceDaily tags rates ingested by the daily job.
const SourceDaily = "DAILY"

// ExchangeRate is the rate for converting one unit of FromCurrency into
// ToCurrency on RateDate, as reported by Source.
// (RateDate, FromCurrency, ToCurrency, Source) is unique.
type ExchangeRate struct {
	RateDate     time.Time       `json:"rateDate"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Source       string          `json:"source"`
	Rate         decimal.Decimal `json:"rate"`
	FetchedAt    time.Time       `json:"fetchedAt"`
}

// DateOnly truncates t to midnight of its calendar day in its own location,
// returned as a UTC date so it compares equal across zones.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
