package dashboard

import (
	"context"
	"fmt"
	"time"

	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/ratetable"
	"github.com/SscSPs/fx_rate_dashboard/internal/utils/mapping"
)

// Loader fetches the records of one table. The daily loader honours date;
// the user-defined loader ignores it.
type Loader func(ctx context.Context, date time.Time) ([]ratetable.RateRecord, error)

// Loaders holds one Loader per table.
type Loaders struct {
	Daily Loader
	User  Loader
}

func (l Loaders) forTable(id ratetable.TableID) (Loader, error) {
	switch id {
	case ratetable.Daily:
		return l.Daily, nil
	case ratetable.UserDefined:
		return l.User, nil
	default:
		return nil, fmt.Errorf("%w: %q", ratetable.ErrUnknownTable, id)
	}
}

// DailyLoader reads the stored daily rates.
func DailyLoader(svc portssvc.ExchangeRateReaderSvc) Loader {
	return func(ctx context.Context, date time.Time) ([]ratetable.RateRecord, error) {
		rates, err := svc.GetRatesForDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch daily rates: %w", err)
		}
		return mapping.ToRateRecords(rates), nil
	}
}

// UserLoader reads the user-defined rates through the proxy service and
// decodes them leniently.
func UserLoader(svc portssvc.UserRateSvc) Loader {
	return func(ctx context.Context, _ time.Time) ([]ratetable.RateRecord, error) {
		resp, err := svc.FetchUserRates(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user-defined rates: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("failed to fetch user-defined rates (%d)", resp.StatusCode)
		}
		records, err := ratetable.DecodeRecords(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch user-defined rates: %w", err)
		}
		return records, nil
	}
}
