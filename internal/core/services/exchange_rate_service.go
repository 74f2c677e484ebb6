package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/apperrors"
	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/singleflight"
)

// RateFetcher pulls the rates of one upstream feed for a date.
type RateFetcher func(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error)

// exchangeRateService implements the ExchangeRateSvcFacade interface
type exchangeRateService struct {
	BaseService
	rateRepo portsrepo.ExchangeRateRepositoryFacade
	primary  RateFetcher
	fallback RateFetcher
	ingests  singleflight.Group
}

// ExchangeRateOption is a functional option for configuring the exchange rate service
type ExchangeRateOption func(*exchangeRateService)

// WithFallbackFetcher sets the feed used when the primary one yields nothing.
func WithFallbackFetcher(f RateFetcher) ExchangeRateOption {
	return func(s *exchangeRateService) {
		s.fallback = f
	}
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, primary RateFetcher, options ...ExchangeRateOption) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		BaseService: newBaseService("exchange_rate"),
		rateRepo:    rateRepo,
		primary:     primary,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// GetRatesForDate retrieves the daily rates stored for a date.
func (s *exchangeRateService) GetRatesForDate(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	day := domain.DateOnly(date)
	rates, err := s.rateRepo.FindRatesByDate(ctx, day, domain.SourceDaily)
	if err != nil {
		s.LogError(ctx, err, "Failed to read exchange rates", slog.String("date", day.Format(time.DateOnly)))
		return nil, fmt.Errorf("failed to get exchange rates in service: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}

// IngestForDate fetches the day's rates and replaces the stored ones.
// Concurrent calls for the same date share one ingest.
func (s *exchangeRateService) IngestForDate(ctx context.Context, date time.Time) (int, error) {
	day := domain.DateOnly(date)
	key := day.Format(time.DateOnly)

	// Detached: every caller of the same date shares this ingest.
	ingestCtx := context.WithoutCancel(ctx)
	v, err, shared := s.ingests.Do(key, func() (any, error) {
		return s.ingest(ingestCtx, day)
	})
	if shared {
		s.LogDebug(ctx, "Joined running ingest", slog.String("date", key))
	}
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *exchangeRateService) ingest(ctx context.Context, day time.Time) (int, error) {
	dateAttr := slog.String("date", day.Format(time.DateOnly))

	var errs *multierror.Error
	answered := false

	rates, err := s.primary(ctx, day)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("primary feed: %w", err))
		s.LogWarn(ctx, err, "Primary daily fetch failed", dateAttr)
	} else {
		answered = true
		s.LogInfo(ctx, "Primary daily fetch returned rows", dateAttr, slog.Int("rows", len(rates)))
	}

	if len(rates) == 0 && s.fallback != nil {
		s.LogWarn(ctx, nil, "Primary returned 0 rows, trying fallback", dateAttr)
		fb, err := s.fallback(ctx, day)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("fallback feed: %w", err))
			s.LogWarn(ctx, err, "Fallback fetch failed", dateAttr)
		} else {
			answered = true
			rates = fb
			s.LogInfo(ctx, "Fallback produced rows", dateAttr, slog.Int("rows", len(rates)))
		}
	}

	if !answered {
		err := fmt.Errorf("%w: every rate source failed: %w", apperrors.ErrUpstream, errs.ErrorOrNil())
		s.LogError(ctx, err, "Ingest aborted, stored rates left untouched", dateAttr)
		return 0, err
	}

	fresh := normalizeRates(day, rates)
	if err := s.rateRepo.ReplaceRatesForDate(ctx, day, domain.SourceDaily, fresh); err != nil {
		s.LogError(ctx, err, "Failed to replace daily rates", dateAttr)
		return 0, fmt.Errorf("failed to replace daily rates in service: %w", err)
	}

	s.LogInfo(ctx, "Ingest saved rows", dateAttr, slog.Int("rows", len(fresh)))
	return len(fresh), nil
}

// normalizeRates stamps every row with the day and the daily source, upper
// cases the codes and keeps the last rate seen for a pair.
func normalizeRates(day time.Time, rates []domain.ExchangeRate) []domain.ExchangeRate {
	type pair struct{ from, to string }
	index := make(map[pair]int, len(rates))
	out := make([]domain.ExchangeRate, 0, len(rates))
	for _, r := range rates {
		r.RateDate = day
		r.Source = domain.SourceDaily
		r.FromCurrency = strings.ToUpper(strings.TrimSpace(r.FromCurrency))
		r.ToCurrency = strings.ToUpper(strings.TrimSpace(r.ToCurrency))
		if r.FetchedAt.IsZero() {
			r.FetchedAt = time.Now().UTC()
		}
		k := pair{r.FromCurrency, r.ToCurrency}
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}
