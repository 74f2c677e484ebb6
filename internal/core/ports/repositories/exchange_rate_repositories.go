package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindRatesByDate returns every rate stored for a date and source, ordered by currency pair.
	FindRatesByDate(ctx context.Context, date time.Time, source string) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// ReplaceRatesForDate deletes the rates stored for a date and source and
	// inserts the given ones in a single transaction.
	ReplaceRatesForDate(ctx context.Context, date time.Time, source string, rates []domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade is the full rate store.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
