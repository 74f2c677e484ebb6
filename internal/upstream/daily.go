package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ErrNotConfigured is returned when a source has no URL.
var ErrNotConfigured = errors.New("upstream url not configured")

type dailyResponse struct {
	Status *int        `json:"status"`
	Data   []dailyRate `json:"data"`
	Err    string      `json:"err"`
}

type dailyRate struct {
	FromCurrency string              `json:"from_currency"`
	ToCurrency   string              `json:"to_currency"`
	ExchangeRate decimal.NullDecimal `json:"exchange_rate"`
	Date         string              `json:"date"`
	CreatedAt    string              `json:"created_at"`
}

// DailySource reads the primary daily feed.
type DailySource struct {
	client *Client
	url    string
	now    func() time.Time
}

// NewDailySource creates a DailySource for the given feed URL.
func NewDailySource(client *Client, url string) *DailySource {
	return &DailySource{client: client, url: url, now: time.Now}
}

// FetchDaily pulls the feed and stamps every usable row with date. Rows
// without both currency codes or without a rate are skipped.
func (s *DailySource) FetchDaily(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
	if s.url == "" {
		return nil, ErrNotConfigured
	}

	body, err := s.client.Get(ctx, s.url, Credentials{})
	if err != nil {
		return nil, fmt.Errorf("daily feed: %w", err)
	}

	var resp dailyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode daily feed: %w", err)
	}

	day := domain.DateOnly(date)
	fetchedAt := s.now().UTC()
	out := make([]domain.ExchangeRate, 0, len(resp.Data))
	for _, r := range resp.Data {
		from := strings.TrimSpace(r.FromCurrency)
		to := strings.TrimSpace(r.ToCurrency)
		if from == "" || to == "" || !r.ExchangeRate.Valid {
			continue
		}
		out = append(out, domain.ExchangeRate{
			RateDate:     day,
			FromCurrency: from,
			ToCurrency:   to,
			Source:       domain.SourceDaily,
			Rate:         r.ExchangeRate.Decimal,
			FetchedAt:    fetchedAt,
		})
	}
	return out, nil
}
