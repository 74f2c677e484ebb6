package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FallbackBase is the base currency requested from the fallback feed.
const FallbackBase = "USD"

// FallbackSymbols are the quote currencies requested from the fallback feed.
var FallbackSymbols = []string{"INR", "EUR", "AED", "SAR"}

type latestResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FallbackSource reads an exchangerate.host style "latest" endpoint.
type FallbackSource struct {
	client *Client
	url    string
	now    func() time.Time
}

// NewFallbackSource creates a FallbackSource. url is the latest endpoint
// without query parameters.
func NewFallbackSource(client *Client, url string) *FallbackSource {
	return &FallbackSource{client: client, url: url, now: time.Now}
}

// FetchLatest returns USD to X rows for the fallback symbols, stamped with date.
func (s *FallbackSource) FetchLatest(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	if s.url == "" {
		return nil, ErrNotConfigured
	}

	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parse fallback url: %w", err)
	}
	q := u.Query()
	q.Set("base", FallbackBase)
	q.Set("symbols", strings.Join(FallbackSymbols, ","))
	u.RawQuery = q.Encode()

	body, err := s.client.Get(ctx, u.String(), Credentials{})
	if err != nil {
		return nil, fmt.Errorf("fallback feed: %w", err)
	}

	var resp latestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode fallback feed: %w", err)
	}

	day := domain.DateOnly(date)
	fetchedAt := s.now().UTC()
	out := make([]domain.ExchangeRate, 0, len(FallbackSymbols))
	for _, to := range FallbackSymbols {
		rate, ok := resp.Rates[to]
		if !ok {
			continue
		}
		out = append(out, domain.ExchangeRate{
			RateDate:     day,
			FromCurrency: FallbackBase,
			ToCurrency:   to,
			Source:       domain.SourceDaily,
			Rate:         rate,
			FetchedAt:    fetchedAt,
		})
	}
	return out, nil
}
