package services

import (
	"net/http"

	portsrepo "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/platform/config"
	"github.com/SscSPs/fx_rate_dashboard/internal/upstream"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	client := upstream.NewClient(
		&http.Client{Timeout: cfg.UpstreamTimeout},
		upstream.WithRetries(cfg.UpstreamRetries),
	)

	daily := upstream.NewDailySource(client, cfg.DailyAPI)
	fallback := upstream.NewFallbackSource(client, cfg.FallbackAPI)

	return &portssvc.ServiceContainer{
		ExchangeRate: NewExchangeRateService(
			repos.ExchangeRateRepo,
			daily.FetchDaily,
			WithFallbackFetcher(fallback.FetchLatest),
		),
		UserRate: NewUserRateService(client, cfg.UserAPI, cfg.UserToken, cfg.UserOrgID),
	}
}
