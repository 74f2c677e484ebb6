package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
)

// ExchangeRateResponse is one rate as served to the dashboard.
type ExchangeRateResponse struct {
	Date         string      `json:"date" example:"2024-05-01"`
	FromCurrency string      `json:"from_currency" example:"USD"`
	ToCurrency   string      `json:"to_currency" example:"INR"`
	ExchangeRate json.Number `json:"exchange_rate" swaggertype:"number" example:"83.12"`
}

// DailyRatesResponse wraps the rates of one day in the success envelope.
type DailyRatesResponse struct {
	Status int                    `json:"status" example:"1"`
	Data   []ExchangeRateResponse `json:"data"`
}

// RefreshResponse reports the outcome of an ingest.
type RefreshResponse struct {
	Status int    `json:"status" example:"1"`
	Date   string `json:"date" example:"2024-05-01"`
	Count  int    `json:"count" example:"4"`
}

// ErrorResponse is the failure envelope shared by every rate endpoint.
type ErrorResponse struct {
	Status int    `json:"status" example:"0"`
	Data   any    `json:"data" swaggertype:"object"`
	Err    string `json:"err" example:"Invalid date"`
}

// HealthResponse reports liveness and the server clock in the configured zone.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Time   string `json:"time" example:"2024-05-01T06:40:00+05:30"`
}

// NewErrorResponse builds the failure envelope.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Status: 0, Data: nil, Err: msg}
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		Date:         rate.RateDate.Format(time.DateOnly),
		FromCurrency: rate.FromCurrency,
		ToCurrency:   rate.ToCurrency,
		ExchangeRate: json.Number(rate.Rate.String()),
	}
}

// ToListExchangeRateResponse converts a slice of rates. The result is never nil.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i, rate := range rates {
		responses[i] = ToExchangeRateResponse(rate)
	}
	return responses
}
