package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	"github.com/SscSPs/fx_rate_dashboard/internal/core/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/platform/config"
	"github.com/SscSPs/fx_rate_dashboard/internal/repositories/database/pgsql"
	"github.com/SscSPs/fx_rate_dashboard/pkg/database"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	var dateStr string
	var migrate bool
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch the daily rates for a date and store them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			date, err := ingestDate(dateStr, time.Now().In(cfg.Location))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
			if err != nil {
				return err
			}
			defer pool.Close()

			if migrate {
				if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, slog.Default()); err != nil {
					return err
				}
			}

			svc := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool)).ExchangeRate
			count, err := svc.IngestForDate(ctx, date)
			if err != nil {
				return fmt.Errorf("ingest for %s failed: %w", date.Format(time.DateOnly), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d rates for %s\n", count, date.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVar(&dateStr, "date", "", "date to ingest as YYYY-MM-DD (default today in FX_TIMEZONE)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations first")
	return cmd
}

// ingestDate parses a YYYY-MM-DD flag value, defaulting to the calendar day of now.
func ingestDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return domain.DateOnly(now), nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", value)
	}
	return d, nil
}
