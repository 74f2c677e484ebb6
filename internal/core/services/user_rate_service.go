package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/fx_rate_dashboard/internal/apperrors"
	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/upstream"
)

// UpstreamFetcher performs a raw GET against a rate feed.
type UpstreamFetcher interface {
	Fetch(ctx context.Context, rawURL string, creds upstream.Credentials) (*upstream.Response, error)
}

type userRateService struct {
	BaseService
	fetcher UpstreamFetcher
	url     string
	creds   upstream.Credentials
}

// NewUserRateService creates the proxy for the user-defined rates feed.
func NewUserRateService(fetcher UpstreamFetcher, url, token, orgID string) portssvc.UserRateSvc {
	return &userRateService{
		BaseService: newBaseService("user_rate"),
		fetcher:     fetcher,
		url:         url,
		creds:       upstream.Credentials{BearerToken: token, OrgID: orgID},
	}
}

var _ portssvc.UserRateSvc = (*userRateService)(nil)

func (s *userRateService) FetchUserRates(ctx context.Context) (*portssvc.UserRateResponse, error) {
	if s.url == "" {
		return nil, fmt.Errorf("%w: user rate api is not configured", apperrors.ErrUpstream)
	}

	resp, err := s.fetcher.Fetch(ctx, s.url, s.creds)
	if err != nil {
		s.LogError(ctx, err, "User rate fetch failed")
		return nil, fmt.Errorf("%w: user rate fetch: %w", apperrors.ErrUpstream, err)
	}

	if resp.StatusCode >= 400 {
		s.LogWarn(ctx, nil, "User rate upstream answered with an error status", slog.Int("status", resp.StatusCode))
	}

	return &portssvc.UserRateResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Body:        resp.Body,
	}, nil
}
