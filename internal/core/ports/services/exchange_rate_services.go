package services

import (
	"context"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetRatesForDate returns the daily rates stored for a date.
	GetRatesForDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error)
}

// ExchangeRateIngestSvc defines the daily ingest operation.
type ExchangeRateIngestSvc interface {
	// IngestForDate pulls rates from the upstream sources and replaces the
	// stored rates for the date. It returns the number of rows saved.
	IngestForDate(ctx context.Context, date time.Time) (int, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateIngestSvc
}

// UserRateResponse is an upstream answer passed through unchanged.
type UserRateResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// UserRateSvc proxies the user-defined rates upstream.
type UserRateSvc interface {
	// FetchUserRates calls the upstream with the configured credentials. A
	// non-2xx answer is returned as a response, not an error; errors are
	// reserved for transport failures and missing configuration.
	FetchUserRates(ctx context.Context) (*UserRateResponse, error)
}
