package mapping

import (
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	"github.com/SscSPs/fx_rate_dashboard/internal/models"
	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		RateDate:     domain.DateOnly(d.RateDate),
		FromCurrency: d.FromCurrency,
		ToCurrency:   d.ToCurrency,
		Source:       d.Source,
		Rate:         d.Rate,
		FetchedAt:    d.FetchedAt,
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		RateDate:     m.RateDate,
		FromCurrency: m.FromCurrency,
		ToCurrency:   m.ToCurrency,
		Source:       m.Source,
		Rate:         m.Rate,
		FetchedAt:    m.FetchedAt,
	}
}

// ToDomainExchangeRates converts a slice of model rates.
func ToDomainExchangeRates(ms []models.ExchangeRate) []domain.ExchangeRate {
	out := make([]domain.ExchangeRate, len(ms))
	for i, m := range ms {
		out[i] = ToDomainExchangeRate(m)
	}
	return out
}

// ToRateRecord converts a stored rate into the record shape the rate tables consume.
func ToRateRecord(d domain.ExchangeRate) ratetable.RateRecord {
	return ratetable.RateRecord{
		FromCurrency: d.FromCurrency,
		ToCurrency:   d.ToCurrency,
		ExchangeRate: d.Rate,
		RawRate:      d.Rate.String(),
		Date:         d.RateDate.Format(time.DateOnly),
	}
}

// ToRateRecords converts a slice of stored rates.
func ToRateRecords(ds []domain.ExchangeRate) []ratetable.RateRecord {
	out := make([]ratetable.RateRecord, len(ds))
	for i, d := range ds {
		out[i] = ToRateRecord(d)
	}
	return out
}
